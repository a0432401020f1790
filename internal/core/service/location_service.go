package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ambulink/dispatch-core/internal/core/domain"
	"github.com/ambulink/dispatch-core/internal/core/ports"
	"github.com/ambulink/dispatch-core/internal/pkg/metrics"
)

// LocationService turns a noisy location source into a single position fix.
type LocationService struct {
	source ports.LocationSource
	policy domain.FixPolicy
	now    func() time.Time
	logger zerolog.Logger
}

// NewLocationService returns a LocationService reading from source.
func NewLocationService(source ports.LocationSource, policy domain.FixPolicy, logger zerolog.Logger) *LocationService {
	return &LocationService{
		source: source,
		policy: policy,
		now:    time.Now,
		logger: logger.With().Str("component", "location").Logger(),
	}
}

// RequestFix takes one sample and, unless it is accurate enough on its own,
// keeps a continuous subscription open until the policy is satisfied. The
// call never outlives policy.Ceiling.
func (s *LocationService) RequestFix(ctx context.Context, opts domain.SampleOptions) (*domain.Fix, error) {
	start := time.Now()
	defer func() { metrics.FixDuration.Observe(time.Since(start).Seconds()) }()

	caller := ctx
	ctx, cancel := context.WithTimeout(ctx, s.policy.Ceiling)
	defer cancel()

	refiner := domain.NewRefiner(s.policy)

	first, err := s.source.GetSample(ctx, opts)
	if err != nil {
		return nil, s.fail(caller, ctx, opts, err)
	}
	if refiner.Offer(first) {
		return s.finish(refiner, opts, "immediate", false)
	}

	// The buffer covers every sample the refiner can still take, so the
	// callback never blocks the source.
	feed := make(chan domain.PositionSample, s.policy.MaxSamples)
	subID, err := s.source.StartContinuous(ctx, opts, func(sample domain.PositionSample) {
		select {
		case feed <- sample:
		default:
		}
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("source_id", opts.SourceID).Msg("continuous sampling unavailable, using first sample")
		if _, fixErr := refiner.Fix(s.now()); fixErr != nil {
			return nil, s.fail(caller, ctx, opts, err)
		}
		return s.finish(refiner, opts, "degraded", true)
	}
	defer s.source.Cancel(subID)

	refinement := time.NewTimer(s.policy.RefinementTimeout)
	defer refinement.Stop()

	for !refiner.Done() {
		select {
		case sample := <-feed:
			refiner.Offer(sample)
		case <-refinement.C:
			s.logger.Debug().Str("source_id", opts.SourceID).Int("samples", refiner.Count()).Msg("refinement timeout")
			return s.finish(refiner, opts, "degraded", true)
		case <-ctx.Done():
			if errors.Is(caller.Err(), context.Canceled) {
				metrics.FixRequestsTotal.WithLabelValues("cancelled").Inc()
				return nil, fmt.Errorf("request fix: %w: %w", domain.ErrOperationCancelled, caller.Err())
			}
			if _, fixErr := refiner.Fix(s.now()); fixErr != nil || !s.policy.AllowDegraded {
				metrics.FixRequestsTotal.WithLabelValues("timed_out").Inc()
				return nil, fmt.Errorf("request fix: %w after %s", domain.ErrTimedOut, s.policy.Ceiling)
			}
			s.logger.Warn().Str("source_id", opts.SourceID).Int("samples", refiner.Count()).Msg("fix ceiling reached, degrading")
			return s.finish(refiner, opts, "degraded", true)
		}
	}
	return s.finish(refiner, opts, "refined", false)
}

func (s *LocationService) finish(refiner *domain.Refiner, opts domain.SampleOptions, outcome string, degraded bool) (*domain.Fix, error) {
	fix, err := refiner.Fix(s.now())
	if err != nil {
		metrics.FixRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("request fix: %w", err)
	}
	fix.Degraded = degraded

	metrics.FixRequestsTotal.WithLabelValues(outcome).Inc()
	metrics.FixAccuracyMeters.Observe(fix.AccuracyMeters)
	metrics.FixSamplesUsed.Observe(float64(fix.SamplesUsed))

	s.logger.Info().
		Str("source_id", opts.SourceID).
		Str("outcome", outcome).
		Float64("accuracy_m", fix.AccuracyMeters).
		Int("samples_used", fix.SamplesUsed).
		Msg("position fix acquired")
	return &fix, nil
}

// fail maps a source failure onto the location error taxonomy.
func (s *LocationService) fail(caller, ctx context.Context, opts domain.SampleOptions, err error) error {
	switch {
	case errors.Is(caller.Err(), context.Canceled):
		metrics.FixRequestsTotal.WithLabelValues("cancelled").Inc()
		return fmt.Errorf("request fix: %w: %w", domain.ErrOperationCancelled, caller.Err())
	case ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded):
		metrics.FixRequestsTotal.WithLabelValues("timed_out").Inc()
		return fmt.Errorf("request fix: %w", domain.ErrTimedOut)
	case domain.IsLocationError(err):
		metrics.FixRequestsTotal.WithLabelValues("error").Inc()
		s.logger.Warn().Err(err).Str("source_id", opts.SourceID).Msg("location source failed")
		return fmt.Errorf("request fix: %w", err)
	default:
		metrics.FixRequestsTotal.WithLabelValues("error").Inc()
		s.logger.Error().Err(err).Str("source_id", opts.SourceID).Msg("location source failed")
		return fmt.Errorf("request fix: %w: %w", domain.ErrSourceUnavailable, err)
	}
}

package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ambulink/dispatch-core/internal/core/domain"
	"github.com/ambulink/dispatch-core/internal/core/ports"
)

const (
	positionChannelPrefix = "location:"
	lastPositionKeyPrefix = "location:last:"
	lastPositionTTL       = 10 * time.Minute
)

// RedisSource reads device positions from Redis. Devices PUBLISH samples on
// location:<source_id> and keep the latest one under location:last:<source_id>.
type RedisSource struct {
	client *redis.Client
	subs   *subscriptions
	now    func() time.Time
	logger zerolog.Logger
}

var _ ports.LocationSource = (*RedisSource)(nil)

// NewRedisSource creates a RedisSource wrapping the given Redis client.
func NewRedisSource(client *redis.Client, logger zerolog.Logger) *RedisSource {
	return &RedisSource{
		client: client,
		subs:   newSubscriptions(),
		now:    time.Now,
		logger: logger.With().Str("component", "redis_location").Logger(),
	}
}

// GetSample returns the cached reading when opts.MaxAge allows it, otherwise
// waits for the next published one.
func (s *RedisSource) GetSample(ctx context.Context, opts domain.SampleOptions) (domain.PositionSample, error) {
	if opts.SourceID == "" {
		return domain.PositionSample{}, fmt.Errorf("%w: source id required", domain.ErrUnsupported)
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	if opts.MaxAge > 0 {
		raw, err := s.client.Get(ctx, lastPositionKeyPrefix+opts.SourceID).Bytes()
		switch {
		case err == nil:
			if sample, decErr := decodeSample(raw, s.now()); decErr == nil && fresh(sample, opts.MaxAge, s.now()) {
				return sample, nil
			}
		case errors.Is(err, redis.Nil):
		default:
			return domain.PositionSample{}, s.translate(ctx, err)
		}
	}

	pubsub := s.client.Subscribe(ctx, positionChannelPrefix+opts.SourceID)
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		return domain.PositionSample{}, s.translate(ctx, err)
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return domain.PositionSample{}, waitErr(ctx.Err())
		case msg, ok := <-ch:
			if !ok {
				return domain.PositionSample{}, fmt.Errorf("%w: subscription closed", domain.ErrSourceUnavailable)
			}
			sample, err := decodeSample([]byte(msg.Payload), s.now())
			if err != nil {
				s.logger.Warn().Err(err).Str("source_id", opts.SourceID).Msg("discarding malformed sample")
				continue
			}
			return sample, nil
		}
	}
}

// StartContinuous forwards every sample published for opts.SourceID until
// Cancel is called or ctx is done.
func (s *RedisSource) StartContinuous(ctx context.Context, opts domain.SampleOptions, onSample func(domain.PositionSample)) (string, error) {
	if opts.SourceID == "" {
		return "", fmt.Errorf("%w: source id required", domain.ErrUnsupported)
	}

	subCtx, stop := context.WithCancel(ctx)
	pubsub := s.client.Subscribe(subCtx, positionChannelPrefix+opts.SourceID)
	if _, err := pubsub.Receive(subCtx); err != nil {
		stop()
		_ = pubsub.Close()
		return "", s.translate(ctx, err)
	}

	id := s.subs.add(stop)
	go func() {
		defer s.subs.cancel(id)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				sample, err := decodeSample([]byte(msg.Payload), s.now())
				if err != nil {
					s.logger.Warn().Err(err).Str("source_id", opts.SourceID).Msg("discarding malformed sample")
					continue
				}
				onSample(sample)
			}
		}
	}()
	return id, nil
}

// Cancel releases a continuous subscription.
func (s *RedisSource) Cancel(subscriptionID string) {
	s.subs.cancel(subscriptionID)
}

// Report stores sample as the latest position of sourceID and publishes it.
// It is the device-side half of the protocol.
func (s *RedisSource) Report(ctx context.Context, sourceID string, sample domain.PositionSample) error {
	payload, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("marshal position sample: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, lastPositionKeyPrefix+sourceID, payload, lastPositionTTL)
		pipe.Publish(ctx, positionChannelPrefix+sourceID, payload)
		return nil
	})
	return err
}

// Close releases every open subscription.
func (s *RedisSource) Close() {
	s.subs.cancelAll()
}

func (s *RedisSource) translate(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return waitErr(ctx.Err())
	}
	return fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
}

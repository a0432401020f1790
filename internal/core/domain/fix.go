package domain

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// FixPolicy parameterises refinement. One canonical policy is configured per
// deployment; see DefaultFixPolicy.
type FixPolicy struct {
	// ImmediateAcceptAccuracyMeters accepts the very first sample when its
	// accuracy radius is at or below this value.
	ImmediateAcceptAccuracyMeters float64
	// TargetAccuracyMeters stops refinement once a sample reaches it.
	TargetAccuracyMeters float64
	// MaxSamples caps the total number of samples read, the first included.
	MaxSamples int
	// RefinementTimeout stops refinement and keeps the best samples so far.
	RefinementTimeout time.Duration
	// Ceiling is the absolute wall-clock limit for a whole acquisition.
	Ceiling time.Duration
	// TopKForAveraging limits the weighted average to the K most accurate samples.
	TopKForAveraging int
	// AllowDegraded returns the best available fix instead of ErrTimedOut when
	// time runs out after at least one sample arrived.
	AllowDegraded bool
}

// DefaultFixPolicy returns the canonical policy: accept at 8 m, refine to 5 m
// over at most 6 samples, average the best 3, give up after 25 s.
func DefaultFixPolicy() FixPolicy {
	return FixPolicy{
		ImmediateAcceptAccuracyMeters: 8,
		TargetAccuracyMeters:          5,
		MaxSamples:                    6,
		RefinementTimeout:             20 * time.Second,
		Ceiling:                       25 * time.Second,
		TopKForAveraging:              3,
		AllowDegraded:                 true,
	}
}

// Validate checks the policy is internally consistent.
func (p FixPolicy) Validate() error {
	switch {
	case p.ImmediateAcceptAccuracyMeters <= 0 || p.TargetAccuracyMeters <= 0:
		return fmt.Errorf("%w: accuracy thresholds must be positive", ErrInvalidInput)
	case p.TargetAccuracyMeters > p.ImmediateAcceptAccuracyMeters:
		return fmt.Errorf("%w: target accuracy %.1fm looser than immediate accept %.1fm",
			ErrInvalidInput, p.TargetAccuracyMeters, p.ImmediateAcceptAccuracyMeters)
	case p.MaxSamples < 1 || p.TopKForAveraging < 1:
		return fmt.Errorf("%w: max samples and top-k must be at least 1", ErrInvalidInput)
	case p.Ceiling <= 0 || p.RefinementTimeout <= 0:
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidInput)
	case p.RefinementTimeout > p.Ceiling:
		return fmt.Errorf("%w: refinement timeout %s exceeds ceiling %s", ErrInvalidInput, p.RefinementTimeout, p.Ceiling)
	}
	return nil
}

// Refiner consumes samples one at a time and decides when sampling is good
// enough. It is not safe for concurrent use.
type Refiner struct {
	policy    FixPolicy
	samples   []PositionSample
	seen      int
	immediate bool
	done      bool
}

// NewRefiner returns a Refiner bound to policy.
func NewRefiner(policy FixPolicy) *Refiner {
	return &Refiner{policy: policy, samples: make([]PositionSample, 0, policy.MaxSamples)}
}

// Offer records a sample and reports whether sampling should stop.
// Invalid samples count against MaxSamples but never reach the average.
func (r *Refiner) Offer(s PositionSample) bool {
	if r.done {
		return true
	}
	r.seen++

	if s.Valid() {
		if r.seen == 1 && s.AccuracyMeters <= r.policy.ImmediateAcceptAccuracyMeters {
			r.samples = append(r.samples, s)
			r.immediate = true
			r.done = true
			return true
		}
		r.samples = append(r.samples, s)
		if s.AccuracyMeters <= r.policy.TargetAccuracyMeters {
			r.done = true
		}
	}
	if r.seen >= r.policy.MaxSamples {
		r.done = true
	}
	return r.done
}

// Done reports whether the refiner has stopped accepting samples.
func (r *Refiner) Done() bool { return r.done }

// Count returns how many samples were offered, valid or not.
func (r *Refiner) Count() int { return r.seen }

// Fix computes the estimate from the samples collected so far.
func (r *Refiner) Fix(now time.Time) (Fix, error) {
	if len(r.samples) == 0 {
		return Fix{}, ErrNoFixAvailable
	}
	if r.immediate {
		s := r.samples[0]
		return Fix{
			Latitude:       s.Latitude,
			Longitude:      s.Longitude,
			AccuracyMeters: s.AccuracyMeters,
			SamplesUsed:    1,
			ProducedAt:     now,
		}, nil
	}
	return weightedFix(topK(r.samples, r.policy.TopKForAveraging), now), nil
}

// Estimate runs the refinement algorithm over samples already collected, in
// arrival order. It performs no I/O.
func Estimate(samples []PositionSample, policy FixPolicy, now time.Time) (Fix, error) {
	r := NewRefiner(policy)
	for _, s := range samples {
		if r.Offer(s) {
			break
		}
	}
	return r.Fix(now)
}

// topK returns the k most accurate samples, keeping arrival order among ties.
func topK(samples []PositionSample, k int) []PositionSample {
	sorted := make([]PositionSample, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AccuracyMeters < sorted[j].AccuracyMeters
	})
	if k > 0 && len(sorted) > k {
		sorted = sorted[:k]
	}
	return sorted
}

// weightedFix averages the samples weighted by 1/accuracy. Longitudes are
// unwrapped around the first sample so fixes near the antimeridian stay put.
func weightedFix(used []PositionSample, now time.Time) Fix {
	lats := make([]float64, len(used))
	lons := make([]float64, len(used))
	weights := make([]float64, len(used))
	best := used[0].AccuracyMeters

	ref := used[0].Longitude
	for i, s := range used {
		lats[i] = s.Latitude
		lon := s.Longitude
		if lon-ref > 180 {
			lon -= 360
		} else if ref-lon > 180 {
			lon += 360
		}
		lons[i] = lon
		weights[i] = 1 / s.AccuracyMeters
		if s.AccuracyMeters < best {
			best = s.AccuracyMeters
		}
	}

	lon := stat.Mean(lons, weights)
	if lon > 180 {
		lon -= 360
	} else if lon < -180 {
		lon += 360
	}

	return Fix{
		Latitude:       stat.Mean(lats, weights),
		Longitude:      lon,
		AccuracyMeters: best,
		SamplesUsed:    len(used),
		ProducedAt:     now,
	}
}

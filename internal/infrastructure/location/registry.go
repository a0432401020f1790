// Package location adapts live telemetry feeds into ports.LocationSource.
package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ambulink/dispatch-core/internal/core/domain"
)

// subscriptions tracks the stop functions of live continuous subscriptions.
type subscriptions struct {
	mu    sync.Mutex
	stops map[string]func()
}

func newSubscriptions() *subscriptions {
	return &subscriptions{stops: make(map[string]func())}
}

func (s *subscriptions) add(stop func()) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.stops[id] = stop
	s.mu.Unlock()
	return id
}

// cancel stops id once; later calls are no-ops.
func (s *subscriptions) cancel(id string) {
	s.mu.Lock()
	stop, ok := s.stops[id]
	delete(s.stops, id)
	s.mu.Unlock()
	if ok {
		stop()
	}
}

func (s *subscriptions) active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stops)
}

func (s *subscriptions) cancelAll() {
	s.mu.Lock()
	stops := s.stops
	s.stops = make(map[string]func())
	s.mu.Unlock()
	for _, stop := range stops {
		stop()
	}
}

// decodeSample parses a JSON PositionSample. Devices that omit captured_at
// get the receive time.
func decodeSample(payload []byte, received time.Time) (domain.PositionSample, error) {
	var s domain.PositionSample
	if err := json.Unmarshal(payload, &s); err != nil {
		return domain.PositionSample{}, fmt.Errorf("decode position sample: %w", err)
	}
	if s.CapturedAt.IsZero() {
		s.CapturedAt = received
	}
	return s, nil
}

// fresh reports whether a cached sample is recent enough for maxAge. A zero
// maxAge never accepts cached readings.
func fresh(s domain.PositionSample, maxAge time.Duration, now time.Time) bool {
	return maxAge > 0 && now.Sub(s.CapturedAt) <= maxAge
}

// waitErr translates a finished wait context into a location error. Caller
// cancellation is passed through untouched.
func waitErr(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrTimedOut, err)
}

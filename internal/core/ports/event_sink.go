package ports

import (
	"context"

	"github.com/ambulink/dispatch-core/internal/core/domain"
)

// EventSink receives committed dispatch events (audit log, pub/sub, ...).
type EventSink interface {
	Name() string
	Write(ctx context.Context, event domain.DispatchEvent) error
}

// EventPublisher hands events to the asynchronous fan-out. Publish never
// blocks on sinks.
type EventPublisher interface {
	Publish(event domain.DispatchEvent)
}

// IdempotencyStore remembers which intake key produced which emergency.
type IdempotencyStore interface {
	// Reserve claims key for emergencyID. When the key is already taken it
	// returns the id stored under it and false.
	Reserve(ctx context.Context, key, emergencyID string) (string, bool, error)
	Release(ctx context.Context, key string) error
}

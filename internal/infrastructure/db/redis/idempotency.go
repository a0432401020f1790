package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ambulink/dispatch-core/internal/core/ports"
)

const idempotencyTTL = 24 * time.Hour

// IdempotencyStore maps intake Idempotency-Keys to emergency ids.
// Key format: idem:emergency:<key>
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// NewIdempotencyStore creates an IdempotencyStore wrapping the given Redis client.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: idempotencyTTL}
}

// Reserve claims key for emergencyID with SET NX. If another request got
// there first, the id it stored is returned with reserved=false.
func (s *IdempotencyStore) Reserve(ctx context.Context, key, emergencyID string) (string, bool, error) {
	ok, err := s.client.SetNX(ctx, s.key(key), emergencyID, s.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("idempotency reserve: %w", err)
	}
	if ok {
		return emergencyID, true, nil
	}

	existing, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		// Expired between SETNX and GET; try once more.
		ok, err = s.client.SetNX(ctx, s.key(key), emergencyID, s.ttl).Result()
		if err != nil {
			return "", false, fmt.Errorf("idempotency reserve: %w", err)
		}
		if ok {
			return emergencyID, true, nil
		}
		existing, err = s.client.Get(ctx, s.key(key)).Result()
	}
	if err != nil {
		return "", false, fmt.Errorf("idempotency lookup: %w", err)
	}
	return existing, false, nil
}

// Release forgets key so a failed intake can be retried.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

func (s *IdempotencyStore) key(k string) string {
	return fmt.Sprintf("idem:emergency:%s", k)
}

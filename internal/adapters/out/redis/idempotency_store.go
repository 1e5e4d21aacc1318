// Package redis remembers idempotency keys of order creation requests.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "idempotent-key:"

	// DefaultTTL is how long a key blocks a repeated request.
	DefaultTTL = 24 * time.Hour
)

// IdempotencyStore reserves keys with SET NX, so two requests racing with the
// same key cannot both win.
type IdempotencyStore struct {
	client goredis.UniversalClient
	ttl    time.Duration
}

func NewIdempotencyStore(client goredis.UniversalClient, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

func (s *IdempotencyStore) Reserve(ctx context.Context, key string) (bool, error) {
	ok, err := s.client.SetNX(ctx, keyPrefix+key, time.Now().UTC().Format(time.RFC3339), s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("reserve idempotency key: %w", err)
	}
	return ok, nil
}

// Release frees a key whose request failed, so the client may retry it.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}

// NoopIdempotencyStore accepts every key. It stands in when no Redis address
// is configured.
type NoopIdempotencyStore struct{}

func (NoopIdempotencyStore) Reserve(context.Context, string) (bool, error) { return true, nil }
func (NoopIdempotencyStore) Release(context.Context, string) error         { return nil }

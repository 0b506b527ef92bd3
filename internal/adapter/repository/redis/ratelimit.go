package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitStore counts requests per client in fixed windows, shared across
// all instances of the service.
type RateLimitStore struct {
	client *redis.Client
	prefix string
}

// NewRateLimitStore creates a new RateLimitStore.
func NewRateLimitStore(client *redis.Client) *RateLimitStore {
	return &RateLimitStore{
		client: client,
		prefix: "ratelimit:",
	}
}

// Incr increments the counter for key in the current window and returns the
// new count. The window TTL is set when the key is first created.
func (s *RateLimitStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	fullKey := s.prefix + key

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.ExpireNX(ctx, fullKey, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}

	return incr.Val(), nil
}

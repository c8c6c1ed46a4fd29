package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/optixtrade/trading-platform/internal/core/domain"
)

// RateLimiter is a fixed-window counter backed by Redis. INCR is atomic
// per key, so a burst of near-simultaneous attempts cannot all observe a
// count below the limit. Shared across replicas, survives restarts.
type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	prefix string
}

// NewRateLimiter creates a limiter allowing limit attempts per key per
// window. The prefix namespaces keys, e.g. "ratelimit:bootstrap".
func NewRateLimiter(client *redis.Client, limit int64, window time.Duration, prefix string) *RateLimiter {
	return &RateLimiter{client: client, limit: limit, window: window, prefix: prefix}
}

// Allow records one attempt for key and reports whether the caller is
// still within the limit. Backend failures surface as
// domain.ErrStoreUnavailable so callers can fail closed.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := fmt.Sprintf("%s:%s", l.prefix, key)

	n, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", domain.ErrStoreUnavailable)
	}
	if n == 1 {
		// First attempt in this window starts the clock.
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return false, fmt.Errorf("rate limit expire: %w", domain.ErrStoreUnavailable)
		}
	}
	return n <= l.limit, nil
}

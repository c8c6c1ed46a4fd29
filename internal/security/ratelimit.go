// Package security holds the session-security components that gate every
// mutation reaching the ledger: the bootstrap rate limiter and the
// pre-shared-key guard around the one-time admin bootstrap.
package security

import (
	"context"
	"sync"
	"time"
)

// Clock returns the current time. Injectable so tests can drive the
// limiter window deterministically.
type Clock func() time.Time

// RateLimiter bounds attempts per caller key over a rolling window.
// Implementations must count atomically per key so a burst of
// near-simultaneous requests cannot all slip under the limit.
type RateLimiter interface {
	// Allow records one attempt for key and reports whether the caller
	// is still within the limit.
	Allow(ctx context.Context, key string) (bool, error)
}

type bucket struct {
	count int
	start time.Time
}

// MemoryLimiter is a fixed-window in-process limiter. Suitable for
// single-instance deployments and tests; production uses the Redis-backed
// limiter so the counter survives restarts and is shared across replicas.
type MemoryLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     Clock
	buckets map[string]*bucket
}

// NewMemoryLimiter creates a limiter allowing limit attempts per key per
// window. A nil clock defaults to time.Now.
func NewMemoryLimiter(limit int, window time.Duration, now Clock) *MemoryLimiter {
	if now == nil {
		now = time.Now
	}
	return &MemoryLimiter{
		limit:   limit,
		window:  window,
		now:     now,
		buckets: make(map[string]*bucket),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok || now.Sub(b.start) >= l.window {
		b = &bucket{start: now}
		l.buckets[key] = b
	}
	b.count++
	return b.count <= l.limit, nil
}

package security

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/optixtrade/trading-platform/internal/core/domain"
)

type erroringLimiter struct{ err error }

func (l erroringLimiter) Allow(context.Context, string) (bool, error) { return false, l.err }

func TestBootstrapGuard_KeyBypassesLimiter(t *testing.T) {
	g := NewBootstrapGuard("topsecret", NewMemoryLimiter(1, time.Minute, nil))

	// Many rapid calls with the correct key never hit the limiter.
	for i := 0; i < 10; i++ {
		if err := g.Authorize(context.Background(), "topsecret", "1.2.3.4"); err != nil {
			t.Fatalf("call %d with valid key rejected: %v", i+1, err)
		}
	}
}

func TestBootstrapGuard_WrongKeyIsRateLimited(t *testing.T) {
	g := NewBootstrapGuard("topsecret", NewMemoryLimiter(2, time.Minute, nil))

	for i := 0; i < 2; i++ {
		if err := g.Authorize(context.Background(), "guess", "1.2.3.4"); err != nil {
			t.Fatalf("attempt %d within limit rejected: %v", i+1, err)
		}
	}
	if err := g.Authorize(context.Background(), "guess", "1.2.3.4"); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestBootstrapGuard_EmptyConfiguredKeyNeverBypasses(t *testing.T) {
	g := NewBootstrapGuard("", NewMemoryLimiter(1, time.Minute, nil))

	if err := g.Authorize(context.Background(), "", "1.2.3.4"); err != nil {
		t.Fatalf("first attempt rejected: %v", err)
	}
	// An empty presented key must count against the limiter, not match
	// the unset pre-shared key.
	if err := g.Authorize(context.Background(), "", "1.2.3.4"); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestBootstrapGuard_FailsClosedOnLimiterError(t *testing.T) {
	storeErr := errors.New("counter unreachable")
	g := NewBootstrapGuard("topsecret", erroringLimiter{err: storeErr})

	err := g.Authorize(context.Background(), "guess", "1.2.3.4")
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected limiter error to surface, got %v", err)
	}

	// The key bypass still works while the counter is down.
	if err := g.Authorize(context.Background(), "topsecret", "1.2.3.4"); err != nil {
		t.Fatalf("valid key rejected during limiter outage: %v", err)
	}
}

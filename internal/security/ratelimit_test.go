package security

import (
	"context"
	"testing"
	"time"
)

// fakeClock advances only when told to.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestMemoryLimiter_EnforcesLimit(t *testing.T) {
	clk := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	l := NewMemoryLimiter(3, time.Minute, clk.Now)

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(context.Background(), "1.2.3.4")
		if err != nil || !ok {
			t.Fatalf("attempt %d: ok=%v err=%v", i+1, ok, err)
		}
	}

	ok, err := l.Allow(context.Background(), "1.2.3.4")
	if err != nil {
		t.Fatalf("Allow returned error: %v", err)
	}
	if ok {
		t.Fatal("4th attempt within the window must be denied")
	}
}

func TestMemoryLimiter_WindowResets(t *testing.T) {
	clk := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	l := NewMemoryLimiter(1, time.Minute, clk.Now)

	if ok, _ := l.Allow(context.Background(), "k"); !ok {
		t.Fatal("first attempt must pass")
	}
	if ok, _ := l.Allow(context.Background(), "k"); ok {
		t.Fatal("second attempt within the window must be denied")
	}

	clk.Advance(time.Minute)
	if ok, _ := l.Allow(context.Background(), "k"); !ok {
		t.Fatal("attempt after window expiry must pass")
	}
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	l := NewMemoryLimiter(1, time.Minute, nil)

	if ok, _ := l.Allow(context.Background(), "a"); !ok {
		t.Fatal("key a must pass")
	}
	if ok, _ := l.Allow(context.Background(), "b"); !ok {
		t.Fatal("key b must not inherit key a's count")
	}
}

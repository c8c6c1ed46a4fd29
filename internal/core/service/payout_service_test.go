package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/optixtrade/trading-platform/internal/core/domain"
	"github.com/optixtrade/trading-platform/internal/core/ports"
	"github.com/optixtrade/trading-platform/internal/infrastructure/db/memory"
)

func newPayoutFixture(t *testing.T, defaultPct int) (*PayoutService, *memory.UserRepository) {
	t.Helper()
	users := memory.NewUserRepository()
	audit := NewAuditService(memory.NewSecurityEventRepository(), zerolog.Nop())
	return NewPayoutService(users, audit, defaultPct, zerolog.Nop()), users
}

func seedUser(t *testing.T, users *memory.UserRepository, id string, role domain.Role) {
	t.Helper()
	now := time.Now().UTC()
	err := users.Create(context.Background(), &domain.User{
		ID:        id,
		Username:  "user_" + id,
		Role:      role,
		KYCStatus: domain.KYCPending,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
}

func TestPayoutService_Resolve_Default(t *testing.T) {
	svc, users := newPayoutFixture(t, 80)
	seedUser(t, users, "u1", domain.RoleTrader)

	pct, err := svc.Resolve(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if pct != 80 {
		t.Fatalf("expected default 80, got %d", pct)
	}
}

func TestPayoutService_Resolve_UnknownUser(t *testing.T) {
	svc, _ := newPayoutFixture(t, 80)

	if _, err := svc.Resolve(context.Background(), "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestPayoutService_SetOverride_Clamps(t *testing.T) {
	cases := []struct {
		pct  string
		want int
	}{
		{"87.6", 88},
		{"10.2", 10},
		{"123", 100},
		{"101", 100},
		{"-5", 0},
	}
	for _, tc := range cases {
		svc, users := newPayoutFixture(t, 80)
		seedUser(t, users, "u1", domain.RoleTrader)

		got, err := svc.SetOverride(context.Background(),
			ports.PayoutOverrideItem{UserID: "u1", Pct: decimal.RequireFromString(tc.pct)}, "admin1", "127.0.0.1")
		if err != nil {
			t.Fatalf("SetOverride(%s) returned error: %v", tc.pct, err)
		}
		if got != tc.want {
			t.Errorf("SetOverride(%s) stored %d, want %d", tc.pct, got, tc.want)
		}

		resolved, err := svc.Resolve(context.Background(), "u1")
		if err != nil {
			t.Fatalf("Resolve returned error: %v", err)
		}
		if resolved != tc.want {
			t.Errorf("Resolve after SetOverride(%s) = %d, want %d", tc.pct, resolved, tc.want)
		}
	}
}

func TestPayoutService_SetOverride_UnknownUser(t *testing.T) {
	svc, _ := newPayoutFixture(t, 80)

	_, err := svc.SetOverride(context.Background(),
		ports.PayoutOverrideItem{UserID: "ghost", Pct: decimal.NewFromInt(50)}, "admin1", "127.0.0.1")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestPayoutService_SetBulkOverrides_IndependentItems(t *testing.T) {
	svc, users := newPayoutFixture(t, 80)
	seedUser(t, users, "u1", domain.RoleTrader)
	seedUser(t, users, "u2", domain.RoleTrader)
	seedUser(t, users, "u3", domain.RoleTrader)

	items := []ports.PayoutOverrideItem{
		{UserID: "u1", Pct: decimal.RequireFromString("10.2")},
		{UserID: "ghost", Pct: decimal.NewFromInt(50)},
		{UserID: "u2", Pct: decimal.NewFromInt(-5)},
		{UserID: "u3", Pct: decimal.NewFromInt(101)},
	}

	outcomes := svc.SetBulkOverrides(context.Background(), items, "admin1", "127.0.0.1")
	if len(outcomes) != len(items) {
		t.Fatalf("expected %d outcomes, got %d", len(items), len(outcomes))
	}

	// Outcomes keep input order; the failed item does not block the rest.
	if !outcomes[0].OK || outcomes[0].PayoutPct != 10 {
		t.Errorf("item 0: got %+v, want ok pct=10", outcomes[0])
	}
	if outcomes[1].OK || outcomes[1].Error == "" {
		t.Errorf("item 1: expected failure for unknown user, got %+v", outcomes[1])
	}
	if !outcomes[2].OK || outcomes[2].PayoutPct != 0 {
		t.Errorf("item 2: got %+v, want ok pct=0", outcomes[2])
	}
	if !outcomes[3].OK || outcomes[3].PayoutPct != 100 {
		t.Errorf("item 3: got %+v, want ok pct=100", outcomes[3])
	}

	for _, tc := range []struct {
		id   string
		want int
	}{{"u1", 10}, {"u2", 0}, {"u3", 100}} {
		pct, err := svc.Resolve(context.Background(), tc.id)
		if err != nil {
			t.Fatalf("Resolve(%s) returned error: %v", tc.id, err)
		}
		if pct != tc.want {
			t.Errorf("Resolve(%s) = %d, want %d", tc.id, pct, tc.want)
		}
	}
}

func TestNewPayoutService_ClampsDefault(t *testing.T) {
	svc, users := newPayoutFixture(t, 150)
	seedUser(t, users, "u1", domain.RoleTrader)

	pct, err := svc.Resolve(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if pct != 100 {
		t.Fatalf("expected clamped default 100, got %d", pct)
	}
}

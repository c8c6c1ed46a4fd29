package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/optixtrade/trading-platform/internal/core/domain"
	"github.com/optixtrade/trading-platform/internal/infrastructure/db/memory"
)

func TestUserService_ChangeRole(t *testing.T) {
	users := memory.NewUserRepository()
	events := memory.NewSecurityEventRepository()
	audit := NewAuditService(events, zerolog.Nop())
	svc := NewUserService(users, audit, zerolog.Nop())

	seedUser(t, users, "u1", domain.RoleTrader)

	user, err := svc.ChangeRole(context.Background(), "u1", domain.RoleCustomerService, "admin1", "127.0.0.1")
	if err != nil {
		t.Fatalf("ChangeRole returned error: %v", err)
	}
	if user.Role != domain.RoleCustomerService {
		t.Fatalf("expected customer_service role, got %s", user.Role)
	}

	// The change lands in the audit trail.
	got, err := audit.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(got) != 1 || got[0].Type != domain.EventRoleChange {
		t.Fatalf("expected one role_change event, got %+v", got)
	}
}

func TestUserService_ChangeRole_RejectsUnknownRole(t *testing.T) {
	users := memory.NewUserRepository()
	svc := NewUserService(users, NewAuditService(memory.NewSecurityEventRepository(), zerolog.Nop()), zerolog.Nop())

	seedUser(t, users, "u1", domain.RoleTrader)

	if _, err := svc.ChangeRole(context.Background(), "u1", "superuser", "admin1", ""); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}

	// The role must be unchanged after the rejection.
	u, err := users.FindByID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if u.Role != domain.RoleTrader {
		t.Fatalf("role mutated by rejected change: %s", u.Role)
	}
}

func TestUserService_ChangeRole_UnknownUser(t *testing.T) {
	svc := NewUserService(memory.NewUserRepository(),
		NewAuditService(memory.NewSecurityEventRepository(), zerolog.Nop()), zerolog.Nop())

	if _, err := svc.ChangeRole(context.Background(), "ghost", domain.RoleAdmin, "admin1", ""); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuditService_ListNewestFirst(t *testing.T) {
	audit := NewAuditService(memory.NewSecurityEventRepository(), zerolog.Nop())
	ctx := context.Background()

	_ = audit.Record(ctx, domain.EventLogin, domain.EventOK, "u1", "", "first")
	_ = audit.Record(ctx, domain.EventDeposit, domain.EventOK, "u1", "", "second")
	_ = audit.Record(ctx, domain.EventWithdrawal, domain.EventOK, "u1", "", "third")

	got, err := audit.List(ctx, 2)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Details != "third" || got[1].Details != "second" {
		t.Fatalf("expected newest first, got %+v", got)
	}
}

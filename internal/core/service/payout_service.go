package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/optixtrade/trading-platform/internal/core/domain"
	"github.com/optixtrade/trading-platform/internal/core/ports"
)

// PayoutService resolves the payout percentage effective for a user.
// Overrides only affect trades placed after the change; placed trades keep
// the snapshot taken at placement.
type PayoutService struct {
	users      ports.UserRepository
	audit      ports.AuditService
	defaultPct int
	log        zerolog.Logger
}

func NewPayoutService(users ports.UserRepository, audit ports.AuditService, defaultPct int, log zerolog.Logger) *PayoutService {
	if defaultPct < 0 {
		defaultPct = 0
	}
	if defaultPct > 100 {
		defaultPct = 100
	}
	return &PayoutService{users: users, audit: audit, defaultPct: defaultPct, log: log}
}

func (s *PayoutService) Resolve(ctx context.Context, userID string) (int, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	if user.PayoutOverridePct != nil {
		return *user.PayoutOverridePct, nil
	}
	return s.defaultPct, nil
}

func (s *PayoutService) SetOverride(ctx context.Context, item ports.PayoutOverrideItem, actorID, ip string) (int, error) {
	clamped := domain.ClampPayoutPct(item.Pct)
	if err := s.users.SetPayoutOverride(ctx, item.UserID, clamped); err != nil {
		return 0, err
	}

	_ = s.audit.Record(ctx, domain.EventPayoutOverride, domain.EventOK, actorID, ip,
		fmt.Sprintf("user=%s pct=%d reason=%s", item.UserID, clamped, item.Reason))

	s.log.Info().Str("user_id", item.UserID).Int("payout_pct", clamped).Msg("payout override set")
	return clamped, nil
}

// SetBulkOverrides applies each item independently and reports per-item
// outcomes in input order. A failed item never blocks the rest.
func (s *PayoutService) SetBulkOverrides(ctx context.Context, items []ports.PayoutOverrideItem, actorID, ip string) []ports.PayoutOverrideOutcome {
	outcomes := make([]ports.PayoutOverrideOutcome, 0, len(items))
	for _, item := range items {
		pct, err := s.SetOverride(ctx, item, actorID, ip)
		out := ports.PayoutOverrideOutcome{UserID: item.UserID, PayoutPct: pct, OK: err == nil}
		if err != nil {
			out.Error = err.Error()
		}
		outcomes = append(outcomes, out)
	}
	return outcomes
}

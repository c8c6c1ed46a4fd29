package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// PayoutOverrideItem is one entry of a single or bulk override request.
type PayoutOverrideItem struct {
	UserID string
	Pct    decimal.Decimal
	Reason string
}

// PayoutOverrideOutcome reports the result of applying one item. Outcomes
// are returned in the same order as the input items.
type PayoutOverrideOutcome struct {
	UserID    string `json:"user_id"`
	PayoutPct int    `json:"payout_pct"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}

// PayoutService resolves and mutates payout percentages. Resolution order:
// per-user override when present, else the global default.
type PayoutService interface {
	Resolve(ctx context.Context, userID string) (int, error)
	// SetOverride clamps pct into [0,100] (round half to nearest) and
	// returns the value actually stored. Out-of-range input never errors.
	SetOverride(ctx context.Context, item PayoutOverrideItem, actorID, ip string) (int, error)
	// SetBulkOverrides applies each item independently; one failure never
	// prevents the others from applying.
	SetBulkOverrides(ctx context.Context, items []PayoutOverrideItem, actorID, ip string) []PayoutOverrideOutcome
}

package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/optixtrade/trading-platform/internal/core/domain"
)

// TradeRepository defines persistence operations for trades.
type TradeRepository interface {
	Create(ctx context.Context, t *domain.Trade) error
	FindByID(ctx context.Context, id string) (*domain.Trade, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Trade, error)

	// Settle atomically transitions the trade from pending to settled,
	// writing result, exit price and settled amount in the same update
	// (compare-and-swap on status). Returns domain.ErrTradeNotFound when
	// the trade does not exist and domain.ErrAlreadySettled when it
	// exists but is no longer pending.
	Settle(ctx context.Context, id string, result domain.TradeResult, exitPrice *decimal.Decimal, settledCents int64, settledAt time.Time) (*domain.Trade, error)

	// ClaimCredit atomically flips the trade's credited flag from false
	// to true. Exactly one caller wins the flip and delivers the payout;
	// everyone else gets domain.ErrAlreadySettled.
	ClaimCredit(ctx context.Context, id string) error

	// ReleaseCredit clears the credited flag after a failed payout
	// delivery so a later settlement retry can claim it again.
	ReleaseCredit(ctx context.Context, id string) error
}

package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/optixtrade/trading-platform/internal/core/domain"
)

// PlaceTradeInput carries everything needed to place a trade. StakeCents
// has already been converted from the decimal USD boundary amount.
type PlaceTradeInput struct {
	UserID      string
	Symbol      string
	Asset       string
	StakeCents  int64
	Direction   domain.Direction
	DurationSec int64
	EntryPrice  decimal.Decimal
}

// SettleTradeInput carries a forced-settlement command. ActorID and IP
// identify the staff member for the audit trail; the settlement contract
// itself is identical regardless of caller.
type SettleTradeInput struct {
	TradeID   string
	Result    domain.TradeResult
	ExitPrice *decimal.Decimal
	ActorID   string
	IP        string
}

// TradeService owns the trade state machine.
type TradeService interface {
	Place(ctx context.Context, in PlaceTradeInput) (*domain.Trade, error)
	Settle(ctx context.Context, in SettleTradeInput) (*domain.Trade, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Trade, error)
}

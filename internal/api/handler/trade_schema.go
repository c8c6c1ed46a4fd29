package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/optixtrade/trading-platform/internal/core/domain"
)

type placeTradeRequest struct {
	Symbol      string          `json:"symbol"      validate:"required"`
	Asset       string          `json:"asset"       validate:"required"`
	Amount      decimal.Decimal `json:"amount"      validate:"required"`
	Direction   string          `json:"direction"   validate:"required,oneof=high low"`
	DurationSec int64           `json:"duration_sec" validate:"required,gt=0"`
	EntryPrice  decimal.Decimal `json:"entry_price" validate:"required"`
}

// tradeResponse is the transport view of a trade. Monetary fields are
// decimal USD; internal cents never cross the boundary.
type tradeResponse struct {
	ID          string           `json:"id"`
	UserID      string           `json:"user_id"`
	Symbol      string           `json:"symbol"`
	Asset       string           `json:"asset"`
	AmountUSD   decimal.Decimal  `json:"amount_usd"`
	Direction   string           `json:"direction"`
	DurationSec int64            `json:"duration_sec"`
	EntryPrice  decimal.Decimal  `json:"entry_price"`
	PayoutPct   int              `json:"payout_pct"`
	Status      string           `json:"status"`
	Result      string           `json:"result,omitempty"`
	ExitPrice   *decimal.Decimal `json:"exit_price,omitempty"`
	SettledUSD  *decimal.Decimal `json:"settled_usd,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	SettledAt   *time.Time       `json:"settled_at,omitempty"`
}

func toTradeResponse(t *domain.Trade) tradeResponse {
	resp := tradeResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Symbol:      t.Symbol,
		Asset:       t.Asset,
		AmountUSD:   domain.USDFromCents(t.StakeCents),
		Direction:   string(t.Direction),
		DurationSec: t.DurationSec,
		EntryPrice:  t.EntryPrice,
		PayoutPct:   t.PayoutPct,
		Status:      string(t.Status),
		Result:      string(t.Result),
		ExitPrice:   t.ExitPrice,
		CreatedAt:   t.CreatedAt,
		SettledAt:   t.SettledAt,
	}
	if t.Status == domain.TradeSettled {
		settled := domain.USDFromCents(t.SettledCents)
		resp.SettledUSD = &settled
	}
	return resp
}

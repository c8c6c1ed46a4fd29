package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the side of a binary trade.
type Direction string

const (
	DirectionHigh Direction = "high"
	DirectionLow  Direction = "low"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionHigh || d == DirectionLow
}

// TradeStatus represents the lifecycle state of a trade. The only
// transition is Pending → Settled; a trade settles exactly once.
type TradeStatus string

const (
	TradePending TradeStatus = "pending"
	TradeSettled TradeStatus = "settled"
)

// TradeResult is the outcome written at settlement.
type TradeResult string

const (
	ResultWin  TradeResult = "win"
	ResultLoss TradeResult = "loss"
)

// Valid reports whether r is a known result.
func (r TradeResult) Valid() bool {
	return r == ResultWin || r == ResultLoss
}

var ErrInvalidTrade = errors.New("invalid trade")
var ErrTradeNotFound = errors.New("trade not found")
var ErrAlreadySettled = errors.New("trade already settled")
var ErrSettlementConflict = errors.New("concurrent settlement conflict")

// Trade is a directional bet placed against a locked-in payout percentage.
//
// Symbol, asset, stake, direction, duration, entry price and PayoutPct are
// immutable once the trade exists. PayoutPct is snapshotted from the payout
// policy at placement time; later policy edits never change a placed
// trade's terms. Result, exit price and settled amount are written exactly
// once, by settlement.
type Trade struct {
	ID          string          `json:"id" bson:"_id"`
	UserID      string          `json:"user_id" bson:"user_id"`
	Symbol      string          `json:"symbol" bson:"symbol"`
	Asset       string          `json:"asset" bson:"asset"`
	StakeCents  int64           `json:"stake_cents" bson:"stake_cents"`
	Direction   Direction       `json:"direction" bson:"direction"`
	DurationSec int64           `json:"duration_sec" bson:"duration_sec"`
	EntryPrice  decimal.Decimal `json:"entry_price" bson:"entry_price"`
	PayoutPct   int             `json:"payout_pct" bson:"payout_pct"`

	Status       TradeStatus      `json:"status" bson:"status"`
	Result       TradeResult      `json:"result,omitempty" bson:"result,omitempty"`
	ExitPrice    *decimal.Decimal `json:"exit_price,omitempty" bson:"exit_price,omitempty"`
	SettledCents int64            `json:"settled_cents" bson:"settled_cents"`

	// Credited records that the settlement payout reached the wallet.
	// Losses settle with it already true; for wins it stays false until
	// the credit lands, so a retry can re-deliver a payout that failed
	// after the status flip.
	Credited bool `json:"credited" bson:"credited"`

	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	SettledAt *time.Time `json:"settled_at,omitempty" bson:"settled_at,omitempty"`
}

// WinSettlementCents is the amount credited on a winning trade: the stake
// plus the floored profit at the trade's locked payout percentage.
// stake=10000, pct=72 → 17200.
func WinSettlementCents(stakeCents int64, payoutPct int) int64 {
	return stakeCents + stakeCents*int64(payoutPct)/100
}

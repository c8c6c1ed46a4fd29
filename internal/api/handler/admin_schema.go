package handler

import "github.com/shopspring/decimal"

type overrideTradeRequest struct {
	TradeID   string           `json:"trade_id"  validate:"required"`
	Result    string           `json:"result"    validate:"required,oneof=win loss"`
	ExitPrice *decimal.Decimal `json:"exit_price"`
}

type payoutOverrideRequest struct {
	UserID    string          `json:"user_id"    validate:"required"`
	PayoutPct decimal.Decimal `json:"payout_pct"`
	Reason    string          `json:"reason"`
}

type payoutOverrideResponse struct {
	UserID    string `json:"user_id"`
	PayoutPct int    `json:"payout_pct"`
}

type bulkPayoutRequest struct {
	Items []payoutOverrideRequest `json:"items" validate:"required,min=1,dive"`
}

type changeRoleRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Role   string `json:"role"    validate:"required"`
}

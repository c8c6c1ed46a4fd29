package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/optixtrade/trading-platform/internal/api/metrics"
	"github.com/optixtrade/trading-platform/internal/core/domain"
	"github.com/optixtrade/trading-platform/internal/core/ports"
)

type walletMutationRequest struct {
	Asset  string          `json:"asset"  validate:"required"`
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

type walletResponse struct {
	Asset      string          `json:"asset"`
	BalanceUSD decimal.Decimal `json:"balance_usd"`
}

// WalletHandler exposes the caller's balances plus deposit/withdraw.
type WalletHandler struct {
	service ports.WalletService
}

func NewWalletHandler(service ports.WalletService) *WalletHandler {
	return &WalletHandler{service: service}
}

// List handles GET /wallets — the caller's balances per asset.
//
// @Summary      List own wallet balances
// @Tags         wallets
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  walletResponse
// @Router       /wallets [get]
func (h *WalletHandler) List(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}

	wallets, err := h.service.Balances(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	resp := make([]walletResponse, 0, len(wallets))
	for _, w := range wallets {
		resp = append(resp, walletResponse{Asset: w.Asset, BalanceUSD: domain.USDFromCents(w.BalanceCents)})
	}
	return c.JSON(http.StatusOK, resp)
}

type transactionResponse struct {
	ID        string          `json:"id"`
	Asset     string          `json:"asset"`
	Type      string          `json:"type"`
	AmountUSD decimal.Decimal `json:"amount_usd"`
	Reference string          `json:"reference,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Transactions handles GET /wallets/transactions — the caller's ledger
// trail, optionally filtered with ?asset=.
//
// @Summary      List own wallet transactions
// @Tags         wallets
// @Produce      json
// @Security     BearerAuth
// @Param        asset  query    string  false  "Filter by asset"
// @Success      200    {array}  transactionResponse
// @Router       /wallets/transactions [get]
func (h *WalletHandler) Transactions(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}

	txs, err := h.service.Transactions(c.Request().Context(), userID, c.QueryParam("asset"))
	if err != nil {
		return err
	}

	resp := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		resp = append(resp, transactionResponse{
			ID:        tx.ID,
			Asset:     tx.Asset,
			Type:      string(tx.Type),
			AmountUSD: domain.USDFromCents(tx.AmountCents),
			Reference: tx.Reference,
			CreatedAt: tx.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// Deposit handles POST /wallets/deposit.
//
// @Summary      Deposit funds
// @Tags         wallets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      walletMutationRequest  true  "Deposit (decimal USD)"
// @Success      200   {object}  walletResponse
// @Failure      400   {object}  errorResponse
// @Router       /wallets/deposit [post]
func (h *WalletHandler) Deposit(c echo.Context) error {
	balance, req, err := h.mutate(c, h.service.Deposit)
	if err != nil {
		return err
	}
	metrics.WalletDepositsTotal.Inc()
	return c.JSON(http.StatusOK, walletResponse{Asset: req.Asset, BalanceUSD: domain.USDFromCents(balance)})
}

// Withdraw handles POST /wallets/withdraw.
//
// @Summary      Withdraw funds
// @Tags         wallets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      walletMutationRequest  true  "Withdrawal (decimal USD)"
// @Success      200   {object}  walletResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /wallets/withdraw [post]
func (h *WalletHandler) Withdraw(c echo.Context) error {
	balance, req, err := h.mutate(c, h.service.Withdraw)
	if err != nil {
		return err
	}
	metrics.WalletWithdrawalsTotal.Inc()
	return c.JSON(http.StatusOK, walletResponse{Asset: req.Asset, BalanceUSD: domain.USDFromCents(balance)})
}

type walletOp func(ctx context.Context, userID, asset string, cents int64, ip string) (int64, error)

func (h *WalletHandler) mutate(c echo.Context, op walletOp) (int64, *walletMutationRequest, error) {
	userID, _, err := ctxUser(c)
	if err != nil {
		return 0, nil, err
	}

	req := new(walletMutationRequest)
	if err := c.Bind(req); err != nil {
		return 0, nil, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return 0, nil, err
	}

	cents := domain.CentsFromUSD(req.Amount)
	balance, err := op(c.Request().Context(), userID, req.Asset, cents, c.RealIP())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientFunds):
			metrics.LedgerRejectionsTotal.WithLabelValues("insufficient_funds").Inc()
		case errors.Is(err, domain.ErrInvalidAmount):
			metrics.LedgerRejectionsTotal.WithLabelValues("invalid_amount").Inc()
		}
		return 0, nil, err
	}
	return balance, req, nil
}

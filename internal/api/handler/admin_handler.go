package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/optixtrade/trading-platform/internal/api/metrics"
	"github.com/optixtrade/trading-platform/internal/core/domain"
	"github.com/optixtrade/trading-platform/internal/core/ports"
)

// AdminHandler handles staff operations: forced settlement, payout policy
// and role changes. Authorization happened in middleware before any of
// these run.
type AdminHandler struct {
	trades ports.TradeService
	payout ports.PayoutService
	users  ports.UserService
}

func NewAdminHandler(trades ports.TradeService, payout ports.PayoutService, users ports.UserService) *AdminHandler {
	return &AdminHandler{trades: trades, payout: payout, users: users}
}

// OverrideTrade handles POST /admin/trades/override — forces a trade's
// outcome and settles it.
//
// @Summary      Force-settle a trade
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      overrideTradeRequest  true  "Settlement command"
// @Success      200   {object}  tradeResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /admin/trades/override [post]
func (h *AdminHandler) OverrideTrade(c echo.Context) error {
	actorID, _, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req overrideTradeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	trade, err := h.trades.Settle(c.Request().Context(), ports.SettleTradeInput{
		TradeID:   req.TradeID,
		Result:    domain.TradeResult(req.Result),
		ExitPrice: req.ExitPrice,
		ActorID:   actorID,
		IP:        c.RealIP(),
	})
	if err != nil {
		return err
	}

	metrics.TradesSettledTotal.WithLabelValues(string(trade.Result)).Inc()
	return c.JSON(http.StatusOK, toTradeResponse(trade))
}

// SetPayout handles POST /admin/users/payout — sets one user's payout
// override and returns the clamped value actually stored.
//
// @Summary      Set a user's payout override
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      payoutOverrideRequest  true  "Override (clamped into [0,100])"
// @Success      200   {object}  payoutOverrideResponse
// @Failure      404   {object}  errorResponse
// @Router       /admin/users/payout [post]
func (h *AdminHandler) SetPayout(c echo.Context) error {
	actorID, _, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req payoutOverrideRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pct, err := h.payout.SetOverride(c.Request().Context(), ports.PayoutOverrideItem{
		UserID: req.UserID,
		Pct:    req.PayoutPct,
		Reason: req.Reason,
	}, actorID, c.RealIP())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, payoutOverrideResponse{UserID: req.UserID, PayoutPct: pct})
}

// SetPayoutBulk handles POST /admin/users/payout/bulk — applies each item
// independently and reports per-item outcomes in input order.
//
// @Summary      Bulk-set payout overrides
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      bulkPayoutRequest  true  "Override items"
// @Success      200   {array}   ports.PayoutOverrideOutcome
// @Router       /admin/users/payout/bulk [post]
func (h *AdminHandler) SetPayoutBulk(c echo.Context) error {
	actorID, _, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req bulkPayoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	items := make([]ports.PayoutOverrideItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, ports.PayoutOverrideItem{UserID: it.UserID, Pct: it.PayoutPct, Reason: it.Reason})
	}

	outcomes := h.payout.SetBulkOverrides(c.Request().Context(), items, actorID, c.RealIP())
	return c.JSON(http.StatusOK, outcomes)
}

// SetRole handles POST /admin/users/role.
//
// @Summary      Change a user's role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changeRoleRequest  true  "New role"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /admin/users/role [post]
func (h *AdminHandler) SetRole(c echo.Context) error {
	actorID, _, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req changeRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.users.ChangeRole(c.Request().Context(), req.UserID, domain.Role(req.Role), actorID, c.RealIP())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

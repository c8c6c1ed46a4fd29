package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/optixtrade/trading-platform/internal/api/metrics"
	"github.com/optixtrade/trading-platform/internal/core/domain"
	"github.com/optixtrade/trading-platform/internal/core/ports"
)

// TradeHandler handles trade placement and listing for the caller.
type TradeHandler struct {
	service ports.TradeService
}

func NewTradeHandler(service ports.TradeService) *TradeHandler {
	return &TradeHandler{service: service}
}

// Place handles POST /trades.
//
// @Summary      Place a trade
// @Tags         trades
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      placeTradeRequest  true  "Trade details (amount in decimal USD)"
// @Success      201   {object}  tradeResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /trades [post]
func (h *TradeHandler) Place(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req placeTradeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	trade, err := h.service.Place(c.Request().Context(), ports.PlaceTradeInput{
		UserID:      userID,
		Symbol:      req.Symbol,
		Asset:       req.Asset,
		StakeCents:  domain.CentsFromUSD(req.Amount),
		Direction:   domain.Direction(req.Direction),
		DurationSec: req.DurationSec,
		EntryPrice:  req.EntryPrice,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientFunds) {
			metrics.LedgerRejectionsTotal.WithLabelValues("insufficient_funds").Inc()
		}
		return err
	}

	metrics.TradesPlacedTotal.WithLabelValues(string(trade.Direction)).Inc()
	return c.JSON(http.StatusCreated, toTradeResponse(trade))
}

// List handles GET /trades — the caller's own trades, newest first.
//
// @Summary      List own trades
// @Tags         trades
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  tradeResponse
// @Router       /trades [get]
func (h *TradeHandler) List(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}

	trades, err := h.service.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	resp := make([]tradeResponse, 0, len(trades))
	for _, t := range trades {
		resp = append(resp, toTradeResponse(t))
	}
	return c.JSON(http.StatusOK, resp)
}

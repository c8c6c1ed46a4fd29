package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/optixtrade/trading-platform/internal/core/domain"
	"github.com/optixtrade/trading-platform/internal/core/ports"
)

const (
	defaultEventLimit = 100
	maxEventLimit     = 1000
)

type securityEventResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	ActorID   string    `json:"actor_id,omitempty"`
	IP        string    `json:"ip,omitempty"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SecurityHandler exposes the append-only security event log to staff.
type SecurityHandler struct {
	audit ports.AuditService
}

func NewSecurityHandler(audit ports.AuditService) *SecurityHandler {
	return &SecurityHandler{audit: audit}
}

// Events handles GET /security/events, newest first.
//
// @Summary      List security events
// @Tags         security
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Max events to return (default 100, cap 1000)"
// @Success      200    {array}   securityEventResponse
// @Failure      403    {object}  errorResponse
// @Router       /security/events [get]
func (h *SecurityHandler) Events(c echo.Context) error {
	limit := int64(defaultEventLimit)
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}
	if limit > maxEventLimit {
		limit = maxEventLimit
	}

	events, err := h.audit.List(c.Request().Context(), limit)
	if err != nil {
		return err
	}

	resp := make([]securityEventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, toSecurityEventResponse(e))
	}
	return c.JSON(http.StatusOK, resp)
}

func toSecurityEventResponse(e domain.SecurityEvent) securityEventResponse {
	return securityEventResponse{
		ID:        e.ID,
		Type:      string(e.Type),
		Status:    string(e.Status),
		ActorID:   e.ActorID,
		IP:        e.IP,
		Details:   e.Details,
		CreatedAt: e.CreatedAt,
	}
}

package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/optixtrade/trading-platform/internal/api/metrics"
	"github.com/optixtrade/trading-platform/internal/core/domain"
	"github.com/optixtrade/trading-platform/internal/core/ports"
	"github.com/optixtrade/trading-platform/internal/security"
)

// bootstrapKeyHeader carries the pre-shared secret that bypasses the
// bootstrap rate limiter.
const bootstrapKeyHeader = "X-Bootstrap-Key"

type AuthHandler struct {
	authService ports.AuthService
	guard       *security.BootstrapGuard
	audit       ports.AuditService
}

func NewAuthHandler(authService ports.AuthService, guard *security.BootstrapGuard, audit ports.AuditService) *AuthHandler {
	return &AuthHandler{authService: authService, guard: guard, audit: audit}
}

// Register creates a new trader account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, token, err := h.authService.Register(c.Request().Context(), req.Username, req.Password, req.Email, c.RealIP())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{Token: token, User: user})
}

// Login authenticates a user and returns a bearer token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Username, req.Password, c.RealIP())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}

// Bootstrap creates the first admin account. Callers without the correct
// pre-shared key burn rate-limited attempts; with it, the limiter is
// bypassed and the call stays idempotent once an admin exists.
//
// @Summary      Bootstrap the first admin
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        X-Bootstrap-Key  header    string            false  "Pre-shared bootstrap key (bypasses rate limiting)"
// @Param        body             body      bootstrapRequest  true   "Admin credentials"
// @Success      200   {object}  bootstrapResponse
// @Success      201   {object}  bootstrapResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /admin/bootstrap [post]
func (h *AuthHandler) Bootstrap(c echo.Context) error {
	ctx := c.Request().Context()
	ip := c.RealIP()

	if err := h.guard.Authorize(ctx, c.Request().Header.Get(bootstrapKeyHeader), ip); err != nil {
		if errors.Is(err, domain.ErrRateLimited) {
			metrics.BootstrapAttemptsTotal.WithLabelValues("rate_limited").Inc()
			_ = h.audit.Record(ctx, domain.EventBootstrapDenied, domain.EventDenied, "", ip, "rate limited")
		}
		return err
	}

	var req bootstrapRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.BootstrapAttemptsTotal.WithLabelValues("invalid").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, created, err := h.authService.Bootstrap(ctx, req.Username, req.Password, ip)
	if err != nil {
		metrics.BootstrapAttemptsTotal.WithLabelValues("invalid").Inc()
		return err
	}

	if !created {
		metrics.BootstrapAttemptsTotal.WithLabelValues("exists").Inc()
		return c.JSON(http.StatusOK, bootstrapResponse{Status: "exists"})
	}

	metrics.BootstrapAttemptsTotal.WithLabelValues("created").Inc()
	return c.JSON(http.StatusCreated, bootstrapResponse{Status: "created", User: user})
}

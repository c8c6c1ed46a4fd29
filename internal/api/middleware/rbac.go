package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/optixtrade/trading-platform/internal/core/domain"
)

// Require enforces that the caller's role grants the given capability.
// The check runs before the handler, so an unauthorized caller is
// rejected before any ledger or policy mutation is attempted.
func Require(cap domain.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roleStr, _ := c.Get("role").(string)
			role := domain.Role(roleStr)
			if !role.Valid() || !role.Can(cap) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

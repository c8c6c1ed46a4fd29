package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type csrfResponse struct {
	Token string `json:"token"`
}

// CSRFHandler handles GET /csrf. The route runs behind the CSRF
// middleware, which sets the double-submit cookie on the response; the
// body echoes the same token so browser clients can copy it into the
// X-CSRF-Token header on mutating requests.
type CSRFHandler struct{}

func NewCSRFHandler() *CSRFHandler {
	return &CSRFHandler{}
}

// Token handles GET /csrf.
//
// @Summary      Issue a CSRF token
// @Tags         security
// @Produce      json
// @Success      200  {object}  csrfResponse
// @Router       /csrf [get]
func (h *CSRFHandler) Token(c echo.Context) error {
	token, _ := c.Get("csrf").(string)
	return c.JSON(http.StatusOK, csrfResponse{Token: token})
}

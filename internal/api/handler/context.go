package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kata/sweetshop/internal/api/middleware"
	"github.com/kata/sweetshop/internal/core/domain"
)

// currentUser returns the caller injected by the Authenticate middleware.
// A missing user means the route was mounted without it; reject with 401.
func currentUser(c echo.Context) (*domain.User, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	return user, nil
}

// bindAndValidate decodes the request into req and runs the registered validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	return c.Validate(req)
}

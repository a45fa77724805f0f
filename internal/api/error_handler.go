package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/kata/sweetshop/internal/api/response"
	"github.com/kata/sweetshop/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders the standard envelope with success=false.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg, fields := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = response.Error(c, code, msg, fields)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string, []domain.FieldError) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, "Validation failed", verr.Fields
	}

	// Echo's own errors (bind failures, 404 from router, middleware rejections).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			logUnhandled(log, c, err)
		}
		return he.Code, fmt.Sprintf("%v", he.Message), nil
	}

	switch {
	case errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest, "Invalid ID format", nil
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusBadRequest, "Insufficient stock", nil
	case errors.Is(err, domain.ErrInvalidQuantity):
		return http.StatusBadRequest, "Quantity must be a positive number", nil
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusBadRequest, "Email already registered", nil
	case errors.Is(err, domain.ErrImageTooLarge):
		return http.StatusBadRequest, "File too large", nil
	case errors.Is(err, domain.ErrUnsupportedImage):
		return http.StatusBadRequest, "Only image uploads are allowed", nil
	case errors.Is(err, domain.ErrImageMissing):
		return http.StatusBadRequest, "No file uploaded", nil
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password", nil
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "Invalid token", nil
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "Admin access required", nil
	case errors.Is(err, domain.ErrSweetNotFound):
		return http.StatusNotFound, "Sweet not found", nil
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "User not found", nil
	}

	// Unexpected error: log the real cause, return a generic message.
	logUnhandled(log, c, err)
	return http.StatusInternalServerError, "Internal server error", nil
}

func logUnhandled(log zerolog.Logger, c echo.Context, err error) {
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")
}

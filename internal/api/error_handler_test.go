package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kata/sweetshop/internal/api/response"
	"github.com/kata/sweetshop/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"not found", fmt.Errorf("get sweet: %w", domain.ErrSweetNotFound), http.StatusNotFound, "Sweet not found"},
		{"invalid id", domain.ErrInvalidID, http.StatusBadRequest, "Invalid ID format"},
		{"insufficient", fmt.Errorf("purchase: %w", domain.ErrInsufficientStock), http.StatusBadRequest, "Insufficient stock"},
		{"bad quantity", domain.ErrInvalidQuantity, http.StatusBadRequest, "Quantity must be a positive number"},
		{"duplicate email", domain.ErrUserExists, http.StatusBadRequest, "Email already registered"},
		{"bad credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "Admin access required"},
		{"echo error", echo.NewHTTPError(http.StatusUnauthorized, "Access denied. No token provided."), http.StatusUnauthorized, "Access denied. No token provided."},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/sweets", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			NewHTTPErrorHandler(zerolog.Nop())(tt.err, c)

			require.Equal(t, tt.code, rec.Code)
			var body response.Envelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.msg, body.Message)
		})
	}
}

func TestHTTPErrorHandler_ValidationFields(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/sweets", nil)
	rec := httptest.NewRecorder()

	verr := &domain.ValidationError{}
	verr.Add("name", "Name is required")
	verr.Add("price", "Price must be a positive number")
	NewHTTPErrorHandler(zerolog.Nop())(verr, e.NewContext(req, rec))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Errors, 2)
	assert.Equal(t, "price", body.Errors[1].Field)
}

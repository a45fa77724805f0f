// Package response renders the JSON envelope shared by every endpoint:
//
//	{"success": bool, "message": "...", "data": ..., "errors": [...], "count": n}
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kata/sweetshop/internal/core/domain"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Count   *int                `json:"count,omitempty"`
	Data    any                 `json:"data,omitempty"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
}

// OK writes a 200 envelope.
func OK(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// Created writes a 201 envelope.
func Created(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

// List writes a 200 envelope with the number of items in count.
func List[T any](c echo.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	return c.JSON(http.StatusOK, Envelope{Success: true, Count: &n, Data: items})
}

// Error writes a failure envelope.
func Error(c echo.Context, code int, message string, fields []domain.FieldError) error {
	return c.JSON(code, Envelope{Success: false, Message: message, Errors: fields})
}

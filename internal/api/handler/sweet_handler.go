package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kata/sweetshop/internal/api/metrics"
	"github.com/kata/sweetshop/internal/api/response"
	"github.com/kata/sweetshop/internal/core/domain"
	"github.com/kata/sweetshop/internal/core/ports"
)

// SweetHandler handles HTTP requests for inventory operations.
type SweetHandler struct {
	service ports.InventoryService
}

func NewSweetHandler(service ports.InventoryService) *SweetHandler {
	return &SweetHandler{service: service}
}

// Create godoc
// @Summary      Create a sweet
// @Tags         sweets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createSweetRequest  true  "Sweet"
// @Success      201   {object}  response.Envelope{data=domain.Sweet}
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /sweets [post]
func (h *SweetHandler) Create(c echo.Context) error {
	var req createSweetRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	sweet, err := h.service.Create(c.Request().Context(), req.toInput())
	if err != nil {
		return err
	}
	return response.Created(c, "Sweet created successfully", sweet)
}

// List godoc
// @Summary      List sweets, newest first
// @Tags         sweets
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  response.Envelope{data=[]domain.Sweet}
// @Failure      401   {object}  errorResponse
// @Router       /sweets [get]
func (h *SweetHandler) List(c echo.Context) error {
	sweets, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return response.List(c, sweets)
}

// Search godoc
// @Summary      Search sweets
// @Description  All supplied criteria must match. Name is a case-insensitive substring.
// @Tags         sweets
// @Produce      json
// @Security     BearerAuth
// @Param        name      query  string  false  "Name substring"
// @Param        category  query  string  false  "Exact category"
// @Param        minPrice  query  number  false  "Minimum price (inclusive)"
// @Param        maxPrice  query  number  false  "Maximum price (inclusive)"
// @Success      200   {object}  response.Envelope{data=[]domain.Sweet}
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /sweets/search [get]
func (h *SweetHandler) Search(c echo.Context) error {
	in := ports.SearchInput{
		Name:     c.QueryParam("name"),
		Category: c.QueryParam("category"),
	}

	verr := &domain.ValidationError{}
	in.MinPrice = parsePriceParam(c, "minPrice", verr)
	in.MaxPrice = parsePriceParam(c, "maxPrice", verr)
	if err := verr.OrNil(); err != nil {
		return err
	}

	sweets, err := h.service.Search(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return response.List(c, sweets)
}

func parsePriceParam(c echo.Context, name string, verr *domain.ValidationError) *float64 {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		verr.Add(name, name+" must be a number")
		return nil
	}
	return &v
}

// Get godoc
// @Summary      Get a sweet
// @Tags         sweets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Sweet ID"
// @Success      200  {object}  response.Envelope{data=domain.Sweet}
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /sweets/{id} [get]
func (h *SweetHandler) Get(c echo.Context) error {
	sweet, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return response.OK(c, "", sweet)
}

// Update godoc
// @Summary      Update a sweet
// @Description  Only the fields present in the body are changed.
// @Tags         sweets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Sweet ID"
// @Param        body  body      updateSweetRequest  true  "Fields to change"
// @Success      200   {object}  response.Envelope{data=domain.Sweet}
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /sweets/{id} [put]
func (h *SweetHandler) Update(c echo.Context) error {
	var req updateSweetRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	sweet, err := h.service.Update(c.Request().Context(), c.Param("id"), req.toPatch())
	if err != nil {
		return err
	}
	return response.OK(c, "Sweet updated successfully", sweet)
}

// Delete godoc
// @Summary      Delete a sweet
// @Tags         sweets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Sweet ID"
// @Success      200  {object}  response.Envelope
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /sweets/{id} [delete]
func (h *SweetHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return response.OK(c, "Sweet deleted successfully", nil)
}

// Purchase godoc
// @Summary      Purchase a sweet
// @Description  Quantity defaults to 1 when missing or not positive.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string        true   "Sweet ID"
// @Param        body  body      stockRequest  false  "Quantity"
// @Success      200   {object}  response.Envelope{data=domain.Sweet}
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /sweets/{id}/purchase [post]
func (h *SweetHandler) Purchase(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	// A missing body or quantity buys the default single unit.
	var req stockRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return domain.NewValidationError("quantity", "Quantity must be a whole number")
		}
	}

	sweet, err := h.service.Purchase(c.Request().Context(), ports.StockInput{
		SweetID:  c.Param("id"),
		Quantity: req.Quantity,
		ActorID:  user.ID,
	})
	metrics.PurchasesTotal.WithLabelValues(stockResult(err)).Inc()
	if err != nil {
		return err
	}

	sold := req.Quantity
	if sold <= 0 {
		sold = 1
	}
	metrics.UnitsSoldTotal.Add(float64(sold))
	return response.OK(c, "Purchase successful", sweet)
}

// Restock godoc
// @Summary      Restock a sweet
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string        true  "Sweet ID"
// @Param        body  body      stockRequest  true  "Quantity to add (> 0)"
// @Success      200   {object}  response.Envelope{data=domain.Sweet}
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /sweets/{id}/restock [post]
func (h *SweetHandler) Restock(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req stockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Quantity must be a positive number")
	}

	sweet, err := h.service.Restock(c.Request().Context(), ports.StockInput{
		SweetID:  c.Param("id"),
		Quantity: req.Quantity,
		ActorID:  user.ID,
	})
	metrics.RestocksTotal.WithLabelValues(stockResult(err)).Inc()
	if err != nil {
		return err
	}
	return response.OK(c, "Restock successful", sweet)
}

// Movements godoc
// @Summary      Stock movement history
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true   "Sweet ID"
// @Param        limit  query     int     false  "Maximum entries (default 50)"
// @Success      200    {object}  response.Envelope{data=[]domain.StockMovement}
// @Failure      403    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Router       /sweets/{id}/movements [get]
func (h *SweetHandler) Movements(c echo.Context) error {
	var limit int
	if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil {
		return domain.NewValidationError("limit", "limit must be an integer")
	}

	list, err := h.service.Movements(c.Request().Context(), c.Param("id"), limit)
	if err != nil {
		return err
	}
	return response.List(c, list)
}

func stockResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, domain.ErrSweetNotFound), errors.Is(err, domain.ErrInvalidID):
		return "not_found"
	default:
		return "error"
	}
}

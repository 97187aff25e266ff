package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/mubark555/pastry-opus-biz/internal/inventory"
	"github.com/mubark555/pastry-opus-biz/pkg/logger"
)

// RecordMovement handles POST /api/inventory/movements
func (h *Handler) RecordMovement(c echo.Context) error {
	var req inventory.MovementRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	mv, err := h.inventory.RecordMovement(logger.RequestContext(c), actorOf(c), req)
	if err != nil {
		return respondError(c, err, "Failed to record movement")
	}
	return c.JSON(http.StatusCreated, mv)
}

// ListMovements handles GET /api/inventory/movements?product_id=p1
func (h *Handler) ListMovements(c echo.Context) error {
	movements, err := h.inventory.ListMovements(logger.RequestContext(c), actorOf(c), c.QueryParam("product_id"))
	if err != nil {
		return respondError(c, err, "Failed to retrieve movements")
	}
	return c.JSON(http.StatusOK, movements)
}

// LowStock handles GET /api/inventory/low-stock?threshold=20
func (h *Handler) LowStock(c echo.Context) error {
	threshold, ok := intParam(c, "threshold")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "threshold must be an integer"})
	}
	products, err := h.inventory.LowStock(logger.RequestContext(c), actorOf(c), threshold)
	if err != nil {
		return respondError(c, err, "Failed to retrieve low stock")
	}
	return c.JSON(http.StatusOK, products)
}

// ListAudit handles GET /api/audit?limit=50
func (h *Handler) ListAudit(c echo.Context) error {
	limit, ok := intParam(c, "limit")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "limit must be an integer"})
	}
	entries, err := h.audit.List(logger.RequestContext(c), actorOf(c), limit)
	if err != nil {
		return respondError(c, err, "Failed to retrieve audit trail")
	}
	return c.JSON(http.StatusOK, entries)
}

// intParam reads an optional integer query parameter; absent means 0
func intParam(c echo.Context, name string) (int, bool) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	return v, err == nil
}

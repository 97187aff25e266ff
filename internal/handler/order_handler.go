package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mubark555/pastry-opus-biz/internal/model"
	"github.com/mubark555/pastry-opus-biz/internal/order"
	"github.com/mubark555/pastry-opus-biz/internal/repository"
	"github.com/mubark555/pastry-opus-biz/pkg/logger"
	"go.uber.org/zap"
)

type quoteRequest struct {
	ClientID string              `json:"client_id"`
	Items    []order.LineRequest `json:"items"`
}

// Quote handles POST /api/quotes: prices the lines and previews the credit decision
func (h *Handler) Quote(c echo.Context) error {
	var req quoteRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	preview, err := h.orders.Preview(logger.RequestContext(c), actorOf(c), req.ClientID, req.Items)
	if err != nil {
		return respondError(c, err, "Failed to price quote")
	}
	return c.JSON(http.StatusOK, preview)
}

// CreateOrder handles POST /api/orders. A credit decline answers 422 with the reason.
func (h *Handler) CreateOrder(c echo.Context) error {
	log := logger.FromEcho(c)

	var req order.CreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	actor := actorOf(c)
	if actor.ScopedToClient() && req.ClientID == "" {
		req.ClientID = actor.ClientID
	}

	result, err := h.orders.Create(logger.RequestContext(c), actor, req)
	if err != nil {
		return respondError(c, err, "Failed to create order")
	}
	if !result.Decision.Admitted {
		log.Info("Order declined",
			zap.String("client_id", req.ClientID),
			zap.String("reason", string(result.Decision.Reason)))
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":            result.Decision.Message(),
			"reason":           result.Decision.Reason,
			"remaining_credit": result.Decision.RemainingCredit,
		})
	}
	return c.JSON(http.StatusCreated, result.Order)
}

// ListOrders handles GET /api/orders?client_id=&status=new,approved&delivery_type=&q=
func (h *Handler) ListOrders(c echo.Context) error {
	filter := repository.OrderFilter{
		ClientID:     c.QueryParam("client_id"),
		DeliveryType: model.DeliveryType(c.QueryParam("delivery_type")),
		Search:       c.QueryParam("q"),
	}
	if raw := c.QueryParam("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			filter.Statuses = append(filter.Statuses, model.OrderStatus(strings.TrimSpace(s)))
		}
	}

	orders, err := h.orders.List(logger.RequestContext(c), actorOf(c), filter)
	if err != nil {
		return respondError(c, err, "Failed to retrieve orders")
	}
	return c.JSON(http.StatusOK, orders)
}

// GetOrder handles GET /api/orders/:id
func (h *Handler) GetOrder(c echo.Context) error {
	o, err := h.orders.Get(logger.RequestContext(c), actorOf(c), c.Param("id"))
	if err != nil {
		return respondError(c, err, "Failed to retrieve order")
	}
	return c.JSON(http.StatusOK, o)
}

// AdvanceOrder handles POST /api/orders/:id/advance
func (h *Handler) AdvanceOrder(c echo.Context) error {
	o, err := h.orders.Advance(logger.RequestContext(c), actorOf(c), c.Param("id"))
	if err != nil {
		return respondError(c, err, "Failed to advance order")
	}
	return c.JSON(http.StatusOK, o)
}

// UpdateOrderStatus handles PUT /api/orders/:id/status with {"status": "cancelled"}
func (h *Handler) UpdateOrderStatus(c echo.Context) error {
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	o, err := h.orders.UpdateStatus(logger.RequestContext(c), actorOf(c), c.Param("id"), model.OrderStatus(req.Status))
	if err != nil {
		return respondError(c, err, "Failed to update order status")
	}
	return c.JSON(http.StatusOK, o)
}

type assignRequest struct {
	DriverID string `json:"driver_id"`
}

// AssignDriver handles PUT /api/orders/:id/driver
func (h *Handler) AssignDriver(c echo.Context) error {
	var req assignRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	o, err := h.orders.AssignDriver(logger.RequestContext(c), actorOf(c), c.Param("id"), req.DriverID)
	if err != nil {
		return respondError(c, err, "Failed to assign driver")
	}
	return c.JSON(http.StatusOK, o)
}

// KitchenBoard handles GET /api/boards/kitchen?date=YYYY-MM-DD
func (h *Handler) KitchenBoard(c echo.Context) error {
	board, err := h.orders.KitchenBoard(logger.RequestContext(c), actorOf(c), c.QueryParam("date"))
	if err != nil {
		return respondError(c, err, "Failed to build kitchen board")
	}
	return c.JSON(http.StatusOK, board)
}

// DeliveryBoard handles GET /api/boards/delivery
func (h *Handler) DeliveryBoard(c echo.Context) error {
	board, err := h.orders.DeliveryBoard(logger.RequestContext(c), actorOf(c))
	if err != nil {
		return respondError(c, err, "Failed to build delivery board")
	}
	return c.JSON(http.StatusOK, board)
}

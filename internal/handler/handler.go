// Package handler exposes the services over HTTP.
package handler

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/labstack/echo/v4"
	"github.com/mubark555/pastry-opus-biz/internal/access"
	"github.com/mubark555/pastry-opus-biz/internal/apperror"
	"github.com/mubark555/pastry-opus-biz/internal/audit"
	"github.com/mubark555/pastry-opus-biz/internal/catalog"
	"github.com/mubark555/pastry-opus-biz/internal/finance"
	"github.com/mubark555/pastry-opus-biz/internal/inventory"
	"github.com/mubark555/pastry-opus-biz/internal/middleware"
	"github.com/mubark555/pastry-opus-biz/internal/order"
	"github.com/mubark555/pastry-opus-biz/internal/repository"
	"github.com/mubark555/pastry-opus-biz/pkg/logger"
	"github.com/mubark555/pastry-opus-biz/prometheus"
	"go.uber.org/zap"
)

// Handler holds the services behind the HTTP routes
type Handler struct {
	store     repository.Store
	catalog   *catalog.Service
	orders    *order.Service
	finance   *finance.Service
	inventory *inventory.Service
	audit     *audit.Service
}

// Services bundles the dependencies of New
type Services struct {
	Store     repository.Store
	Catalog   *catalog.Service
	Orders    *order.Service
	Finance   *finance.Service
	Inventory *inventory.Service
	Audit     *audit.Service
}

// New creates a handler over the given services
func New(s Services) *Handler {
	return &Handler{
		store:     s.Store,
		catalog:   s.Catalog,
		orders:    s.Orders,
		finance:   s.Finance,
		inventory: s.Inventory,
		audit:     s.Audit,
	}
}

// Register mounts /health and the authenticated /api routes on e
func (h *Handler) Register(e *echo.Echo, auth echo.MiddlewareFunc, metrics *prometheus.Metrics) {
	e.GET("/health", h.HealthCheck)

	can := func(c access.Capability) echo.MiddlewareFunc {
		return middleware.RequireCapability(c, metrics)
	}
	api := e.Group("/api", auth)

	api.GET("/products", h.ListProducts, can(access.CatalogView))
	api.GET("/products/:id", h.GetProduct, can(access.CatalogView))
	api.POST("/products", h.CreateProduct, can(access.CatalogManage))
	api.PUT("/products/:id", h.UpdateProduct, can(access.CatalogManage))
	api.DELETE("/products/:id", h.DeactivateProduct, can(access.CatalogManage))

	// client users read their own account, so the service checks scope
	api.GET("/clients", h.ListClients, can(access.ClientView))
	api.GET("/clients/:id", h.GetClient)
	api.POST("/clients", h.CreateClient, can(access.ClientManage))
	api.PUT("/clients/:id", h.UpdateClient, can(access.ClientManage))
	api.PUT("/clients/:id/status", h.SetClientStatus, can(access.ClientManage))
	api.DELETE("/clients/:id", h.DeleteClient, can(access.ClientManage))
	api.GET("/clients/:id/account", h.GetAccount)

	api.GET("/pricing", h.ListRules, can(access.PricingView))
	api.GET("/pricing/:id", h.GetRule, can(access.PricingView))
	api.PUT("/pricing", h.UpsertRule, can(access.PricingManage))
	api.DELETE("/pricing/:id", h.DeleteRule, can(access.PricingManage))

	api.POST("/quotes", h.Quote, can(access.PriceQuote))

	api.GET("/orders", h.ListOrders, can(access.OrderView))
	api.GET("/orders/:id", h.GetOrder, can(access.OrderView))
	api.POST("/orders", h.CreateOrder, can(access.OrderCreate))
	// per-target capabilities are checked by the order service
	api.POST("/orders/:id/advance", h.AdvanceOrder, can(access.OrderView))
	api.PUT("/orders/:id/status", h.UpdateOrderStatus, can(access.OrderView))
	api.PUT("/orders/:id/driver", h.AssignDriver, can(access.DeliveryAssign))

	api.GET("/boards/kitchen", h.KitchenBoard, can(access.OrderView))
	api.GET("/boards/delivery", h.DeliveryBoard, can(access.DriverView))

	api.GET("/drivers", h.ListDrivers, can(access.DriverView))
	api.GET("/drivers/:id", h.GetDriver, can(access.DriverView))
	api.POST("/drivers", h.CreateDriver, can(access.DriverManage))
	api.PUT("/drivers/:id", h.UpdateDriver, can(access.DriverManage))
	api.DELETE("/drivers/:id", h.DeleteDriver, can(access.DriverManage))

	api.GET("/payments", h.ListPayments, can(access.FinanceView))
	api.POST("/payments", h.RecordPayment, can(access.PaymentRecord))
	api.GET("/finance/summary", h.FinanceSummary, can(access.FinanceView))

	api.GET("/inventory/movements", h.ListMovements, can(access.InventoryView))
	api.POST("/inventory/movements", h.RecordMovement, can(access.InventoryRecord))
	api.GET("/inventory/low-stock", h.LowStock, can(access.InventoryView))

	api.GET("/audit", h.ListAudit, can(access.AuditView))
}

func actorOf(c echo.Context) access.Actor {
	actor, _ := middleware.ActorFrom(c)
	return actor
}

// respondError maps service errors onto status codes; anything unrecognised is a 500
func respondError(c echo.Context, err error, failure string) error {
	log := logger.FromEcho(c)

	switch {
	case apperror.IsNotFound(err):
		log.Info("Resource not found", zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case apperror.IsValidation(err):
		log.Info("Invalid request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, apperror.ErrForbidden):
		log.Warn("Forbidden", zap.Error(err))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, apperror.ErrInvalidTransition), errors.Is(err, apperror.ErrInsufficientStock):
		log.Info("Conflict", zap.Error(err))
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}

	log.Error(failure, zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": failure})
}

func badRequest(c echo.Context, err error) error {
	logger.FromEcho(c).Warn("Invalid request data", zap.Error(err))
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
}

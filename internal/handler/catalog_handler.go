package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/mubark555/pastry-opus-biz/internal/catalog"
	"github.com/mubark555/pastry-opus-biz/internal/model"
	"github.com/mubark555/pastry-opus-biz/internal/repository"
	"github.com/mubark555/pastry-opus-biz/pkg/logger"
	"go.uber.org/zap"
)

// ListProducts handles GET /api/products?active=true&category=Baklava
func (h *Handler) ListProducts(c echo.Context) error {
	log := logger.FromEcho(c)

	filter := repository.ProductFilter{Category: c.QueryParam("category")}
	if active := c.QueryParam("active"); active != "" {
		v, err := strconv.ParseBool(active)
		if err != nil {
			log.Warn("Invalid active parameter", zap.String("value", active))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "active must be true or false"})
		}
		filter.ActiveOnly = v
	}

	products, err := h.catalog.ListProducts(logger.RequestContext(c), actorOf(c), filter)
	if err != nil {
		return respondError(c, err, "Failed to retrieve products")
	}
	log.Info("Products retrieved successfully", zap.Int("count", len(products)))
	return c.JSON(http.StatusOK, products)
}

// GetProduct handles GET /api/products/:id
func (h *Handler) GetProduct(c echo.Context) error {
	p, err := h.catalog.GetProduct(logger.RequestContext(c), actorOf(c), c.Param("id"))
	if err != nil {
		return respondError(c, err, "Failed to retrieve product")
	}
	return c.JSON(http.StatusOK, p)
}

// CreateProduct handles POST /api/products
func (h *Handler) CreateProduct(c echo.Context) error {
	var req catalog.ProductInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	p, err := h.catalog.CreateProduct(logger.RequestContext(c), actorOf(c), req)
	if err != nil {
		return respondError(c, err, "Failed to create product")
	}
	return c.JSON(http.StatusCreated, p)
}

// UpdateProduct handles PUT /api/products/:id
func (h *Handler) UpdateProduct(c echo.Context) error {
	var req catalog.ProductInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	p, err := h.catalog.UpdateProduct(logger.RequestContext(c), actorOf(c), c.Param("id"), req)
	if err != nil {
		return respondError(c, err, "Failed to update product")
	}
	return c.JSON(http.StatusOK, p)
}

// DeactivateProduct handles DELETE /api/products/:id. The product is kept, only deactivated.
func (h *Handler) DeactivateProduct(c echo.Context) error {
	p, err := h.catalog.DeactivateProduct(logger.RequestContext(c), actorOf(c), c.Param("id"))
	if err != nil {
		return respondError(c, err, "Failed to deactivate product")
	}
	return c.JSON(http.StatusOK, p)
}

// ListClients handles GET /api/clients
func (h *Handler) ListClients(c echo.Context) error {
	clients, err := h.catalog.ListClients(logger.RequestContext(c), actorOf(c))
	if err != nil {
		return respondError(c, err, "Failed to retrieve clients")
	}
	return c.JSON(http.StatusOK, clients)
}

// GetClient handles GET /api/clients/:id
func (h *Handler) GetClient(c echo.Context) error {
	client, err := h.catalog.GetClient(logger.RequestContext(c), actorOf(c), c.Param("id"))
	if err != nil {
		return respondError(c, err, "Failed to retrieve client")
	}
	return c.JSON(http.StatusOK, client)
}

// CreateClient handles POST /api/clients
func (h *Handler) CreateClient(c echo.Context) error {
	var req catalog.ClientInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	client, err := h.catalog.CreateClient(logger.RequestContext(c), actorOf(c), req)
	if err != nil {
		return respondError(c, err, "Failed to create client")
	}
	return c.JSON(http.StatusCreated, client)
}

// UpdateClient handles PUT /api/clients/:id
func (h *Handler) UpdateClient(c echo.Context) error {
	var req catalog.ClientInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	client, err := h.catalog.UpdateClient(logger.RequestContext(c), actorOf(c), c.Param("id"), req)
	if err != nil {
		return respondError(c, err, "Failed to update client")
	}
	return c.JSON(http.StatusOK, client)
}

type statusRequest struct {
	Status string `json:"status"`
}

// SetClientStatus handles PUT /api/clients/:id/status with {"status": "suspended"}
func (h *Handler) SetClientStatus(c echo.Context) error {
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	client, err := h.catalog.SetClientStatus(logger.RequestContext(c), actorOf(c), c.Param("id"), model.AccountStatus(req.Status))
	if err != nil {
		return respondError(c, err, "Failed to change client status")
	}
	return c.JSON(http.StatusOK, client)
}

// DeleteClient handles DELETE /api/clients/:id
func (h *Handler) DeleteClient(c echo.Context) error {
	if err := h.catalog.DeleteClient(logger.RequestContext(c), actorOf(c), c.Param("id")); err != nil {
		return respondError(c, err, "Failed to delete client")
	}
	return c.NoContent(http.StatusNoContent)
}

// ListRules handles GET /api/pricing?client_id=c1
func (h *Handler) ListRules(c echo.Context) error {
	rules, err := h.catalog.ListRules(logger.RequestContext(c), actorOf(c), c.QueryParam("client_id"))
	if err != nil {
		return respondError(c, err, "Failed to retrieve pricing rules")
	}
	return c.JSON(http.StatusOK, rules)
}

// GetRule handles GET /api/pricing/:id
func (h *Handler) GetRule(c echo.Context) error {
	rule, err := h.catalog.GetRule(logger.RequestContext(c), actorOf(c), c.Param("id"))
	if err != nil {
		return respondError(c, err, "Failed to retrieve pricing rule")
	}
	return c.JSON(http.StatusOK, rule)
}

// UpsertRule handles PUT /api/pricing; the (client, product) pair identifies the rule
func (h *Handler) UpsertRule(c echo.Context) error {
	var req catalog.RuleInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	rule, err := h.catalog.UpsertRule(logger.RequestContext(c), actorOf(c), req)
	if err != nil {
		return respondError(c, err, "Failed to save pricing rule")
	}
	return c.JSON(http.StatusOK, rule)
}

// DeleteRule handles DELETE /api/pricing/:id
func (h *Handler) DeleteRule(c echo.Context) error {
	if err := h.catalog.DeleteRule(logger.RequestContext(c), actorOf(c), c.Param("id")); err != nil {
		return respondError(c, err, "Failed to delete pricing rule")
	}
	return c.NoContent(http.StatusNoContent)
}

// ListDrivers handles GET /api/drivers
func (h *Handler) ListDrivers(c echo.Context) error {
	drivers, err := h.catalog.ListDrivers(logger.RequestContext(c), actorOf(c))
	if err != nil {
		return respondError(c, err, "Failed to retrieve drivers")
	}
	return c.JSON(http.StatusOK, drivers)
}

// GetDriver handles GET /api/drivers/:id
func (h *Handler) GetDriver(c echo.Context) error {
	d, err := h.catalog.GetDriver(logger.RequestContext(c), actorOf(c), c.Param("id"))
	if err != nil {
		return respondError(c, err, "Failed to retrieve driver")
	}
	return c.JSON(http.StatusOK, d)
}

// CreateDriver handles POST /api/drivers
func (h *Handler) CreateDriver(c echo.Context) error {
	var req catalog.DriverInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	d, err := h.catalog.CreateDriver(logger.RequestContext(c), actorOf(c), req)
	if err != nil {
		return respondError(c, err, "Failed to create driver")
	}
	return c.JSON(http.StatusCreated, d)
}

// UpdateDriver handles PUT /api/drivers/:id
func (h *Handler) UpdateDriver(c echo.Context) error {
	var req catalog.DriverInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	d, err := h.catalog.UpdateDriver(logger.RequestContext(c), actorOf(c), c.Param("id"), req)
	if err != nil {
		return respondError(c, err, "Failed to update driver")
	}
	return c.JSON(http.StatusOK, d)
}

// DeleteDriver handles DELETE /api/drivers/:id
func (h *Handler) DeleteDriver(c echo.Context) error {
	if err := h.catalog.DeleteDriver(logger.RequestContext(c), actorOf(c), c.Param("id")); err != nil {
		return respondError(c, err, "Failed to delete driver")
	}
	return c.NoContent(http.StatusNoContent)
}

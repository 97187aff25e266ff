package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mubark555/pastry-opus-biz/pkg/logger"
	"go.uber.org/zap"
)

// HealthCheck reports liveness; ?check=db also pings the store
func (h *Handler) HealthCheck(c echo.Context) error {
	response := map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}

	if c.QueryParam("check") == "db" {
		if err := h.store.Ping(c.Request().Context()); err != nil {
			logger.FromEcho(c).Error("Database ping error", zap.Error(err))
			response["status"] = "error"
			response["db_status"] = "error"
			response["db_error"] = "Failed to ping database"
			return c.JSON(http.StatusInternalServerError, response)
		}
		response["db_status"] = "ok"
	}

	return c.JSON(http.StatusOK, response)
}

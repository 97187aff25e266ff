package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mubark555/pastry-opus-biz/internal/finance"
	"github.com/mubark555/pastry-opus-biz/pkg/logger"
)

// RecordPayment handles POST /api/payments
func (h *Handler) RecordPayment(c echo.Context) error {
	var req finance.PaymentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}
	p, err := h.finance.RecordPayment(logger.RequestContext(c), actorOf(c), req)
	if err != nil {
		return respondError(c, err, "Failed to record payment")
	}
	return c.JSON(http.StatusCreated, p)
}

// ListPayments handles GET /api/payments?client_id=c1
func (h *Handler) ListPayments(c echo.Context) error {
	payments, err := h.finance.ListPayments(logger.RequestContext(c), actorOf(c), c.QueryParam("client_id"))
	if err != nil {
		return respondError(c, err, "Failed to retrieve payments")
	}
	return c.JSON(http.StatusOK, payments)
}

// FinanceSummary handles GET /api/finance/summary
func (h *Handler) FinanceSummary(c echo.Context) error {
	sum, err := h.finance.Summary(logger.RequestContext(c), actorOf(c))
	if err != nil {
		return respondError(c, err, "Failed to build finance summary")
	}
	return c.JSON(http.StatusOK, sum)
}

// GetAccount handles GET /api/clients/:id/account
func (h *Handler) GetAccount(c echo.Context) error {
	acct, err := h.finance.Account(logger.RequestContext(c), actorOf(c), c.Param("id"))
	if err != nil {
		return respondError(c, err, "Failed to retrieve account")
	}
	return c.JSON(http.StatusOK, acct)
}

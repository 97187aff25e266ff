// Package order prices, admits and moves orders through the kitchen and delivery workflow.
package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/mubark555/pastry-opus-biz/internal/access"
	"github.com/mubark555/pastry-opus-biz/internal/apperror"
	"github.com/mubark555/pastry-opus-biz/internal/audit"
	"github.com/mubark555/pastry-opus-biz/internal/credit"
	"github.com/mubark555/pastry-opus-biz/internal/model"
	"github.com/mubark555/pastry-opus-biz/internal/pricing"
	"github.com/mubark555/pastry-opus-biz/internal/repository"
	"github.com/mubark555/pastry-opus-biz/pkg/logger"
	"github.com/mubark555/pastry-opus-biz/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LineRequest is one requested product and quantity
type LineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CreateRequest is an order submission
type CreateRequest struct {
	ClientID      string             `json:"client_id"`
	Items         []LineRequest      `json:"items"`
	DeliveryType  model.DeliveryType `json:"delivery_type"`
	RequestedDate string             `json:"requested_date"`
	RequestedTime string             `json:"requested_time"`
	Notes         string             `json:"notes"`
}

// CreateResult carries the gate decision; Order is nil when the order was declined
type CreateResult struct {
	Order    *model.Order    `json:"order,omitempty"`
	Decision credit.Decision `json:"decision"`
}

// Preview is a priced order that has not been submitted
type Preview struct {
	ClientID string           `json:"client_id"`
	Lines    []*pricing.Quote `json:"lines"`
	Total    decimal.Decimal  `json:"total"`
	Decision credit.Decision  `json:"decision"`
}

// Service owns order creation and status changes
type Service struct {
	store    repository.Store
	resolver *pricing.Resolver
	metrics  *prometheus.Metrics
	now      func() time.Time
}

// NewService creates the order service
func NewService(store repository.Store, resolver *pricing.Resolver, metrics *prometheus.Metrics) *Service {
	return &Service{
		store:    store,
		resolver: resolver,
		metrics:  metrics,
		now:      time.Now,
	}
}

func validateCreate(req *CreateRequest) error {
	if req.ClientID == "" {
		return apperror.Invalid("client_id is required")
	}
	if len(req.Items) == 0 {
		return apperror.Invalid("an order needs at least one item")
	}
	if !req.DeliveryType.Valid() {
		return apperror.Invalid("delivery_type must be pickup or delivery")
	}
	if req.RequestedDate != "" {
		if _, err := time.Parse("2006-01-02", req.RequestedDate); err != nil {
			return apperror.Invalid("requested_date must be YYYY-MM-DD")
		}
	}
	if req.RequestedTime != "" {
		if _, err := time.Parse("15:04", req.RequestedTime); err != nil {
			return apperror.Invalid("requested_time must be HH:MM")
		}
	}
	return nil
}

func loadClient(ctx context.Context, tx repository.Store, clientID string, lock bool) (*model.Client, error) {
	get := tx.Clients().Get
	if lock {
		get = tx.Clients().GetForUpdate
	}
	c, err := get(ctx, clientID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errors.Wrapf(apperror.ErrClientNotFound, "client %s", clientID)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load client %s", clientID)
	}
	return c, nil
}

// priceLines validates each line against the catalog and resolves its price
func (s *Service) priceLines(ctx context.Context, tx repository.Store, clientID string, lines []LineRequest) ([]*pricing.Quote, []model.OrderItem, decimal.Decimal, error) {
	resolver := s.resolver.WithStore(tx)
	quotes := make([]*pricing.Quote, 0, len(lines))
	items := make([]model.OrderItem, 0, len(lines))
	total := decimal.Zero

	for i, line := range lines {
		product, err := tx.Products().Get(ctx, line.ProductID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, decimal.Zero, errors.Wrapf(apperror.ErrProductNotFound, "line %d: product %s", i+1, line.ProductID)
		}
		if err != nil {
			return nil, nil, decimal.Zero, errors.Wrapf(err, "line %d: load product", i+1)
		}
		if !product.IsActive {
			return nil, nil, decimal.Zero, apperror.Invalid("line %d: %s is not available for ordering", i+1, product.Name)
		}
		minQty := product.MinOrderQuantity
		if minQty < 1 {
			minQty = 1
		}
		if line.Quantity < minQty {
			return nil, nil, decimal.Zero, apperror.Invalid("line %d: %s requires at least %d units, got %d", i+1, product.Name, minQty, line.Quantity)
		}

		q, err := resolver.Quote(ctx, clientID, product.ID, line.Quantity)
		if err != nil {
			return nil, nil, decimal.Zero, errors.Wrapf(err, "line %d", i+1)
		}
		quotes = append(quotes, q)
		items = append(items, model.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   q.UnitPrice,
			Total:       q.LineTotal,
		})
		total = total.Add(q.LineTotal)
	}
	return quotes, items, total, nil
}

// Preview prices the lines and runs the credit gate without creating anything
func (s *Service) Preview(ctx context.Context, actor access.Actor, clientID string, lines []LineRequest) (*Preview, error) {
	if err := actor.Require(access.PriceQuote); err != nil {
		return nil, err
	}
	if err := actor.RequireClient(clientID); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, apperror.Invalid("at least one line is required")
	}

	c, err := loadClient(ctx, s.store, clientID, false)
	if err != nil {
		return nil, err
	}
	quotes, _, total, err := s.priceLines(ctx, s.store, clientID, lines)
	if err != nil {
		return nil, err
	}
	return &Preview{
		ClientID: clientID,
		Lines:    quotes,
		Total:    total,
		Decision: credit.AdmitOrder(c, total),
	}, nil
}

// Create prices the order, applies the credit gate and, on admission, stores the
// order in status new and adds its total to the client's outstanding balance.
// The client row stays locked from the balance read to the balance write.
// A decline is reported in the result, not as an error.
func (s *Service) Create(ctx context.Context, actor access.Actor, req CreateRequest) (*CreateResult, error) {
	log := logger.FromContext(ctx)

	if err := actor.Require(access.OrderCreate); err != nil {
		return nil, err
	}
	if err := actor.RequireClient(req.ClientID); err != nil {
		return nil, err
	}
	if err := validateCreate(&req); err != nil {
		return nil, err
	}

	result := &CreateResult{}
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		c, err := loadClient(ctx, tx, req.ClientID, true)
		if err != nil {
			return err
		}

		_, items, total, err := s.priceLines(ctx, tx, c.ID, req.Items)
		if err != nil {
			return err
		}

		result.Decision = credit.AdmitOrder(c, total)
		if !result.Decision.Admitted {
			return nil
		}

		now := s.now()
		o := &model.Order{
			ID:            uuid.NewString(),
			OrderNumber:   newOrderNumber(now),
			ClientID:      c.ID,
			ClientName:    c.CompanyName,
			Items:         items,
			DeliveryType:  req.DeliveryType,
			RequestedDate: req.RequestedDate,
			RequestedTime: req.RequestedTime,
			Notes:         strings.TrimSpace(req.Notes),
			Status:        model.StatusNew,
			TotalAmount:   total,
			CreatedAt:     now,
		}
		if err := tx.Orders().Upsert(ctx, o); err != nil {
			return errors.Wrap(err, "save order")
		}

		c.OutstandingBalance = c.OutstandingBalance.Add(total)
		if err := tx.Clients().Upsert(ctx, c); err != nil {
			return errors.Wrap(err, "update outstanding balance")
		}

		if err := audit.Record(ctx, tx, actor, audit.ActionCreate, audit.EntityOrder, o.ID,
			"order %s for %s, total %s", o.OrderNumber, c.CompanyName, total.StringFixed(2)); err != nil {
			return err
		}
		result.Order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordCreditDecision(result.Decision.Outcome())
	if result.Order == nil {
		log.Info("Order declined by credit gate",
			zap.String("client_id", req.ClientID),
			zap.String("reason", string(result.Decision.Reason)),
			zap.String("remaining_credit", result.Decision.RemainingCredit.String()))
		return result, nil
	}

	s.metrics.RecordOrderCreated()
	log.Info("Order created",
		zap.String("order_id", result.Order.ID),
		zap.String("order_number", result.Order.OrderNumber),
		zap.String("client_id", result.Order.ClientID),
		zap.String("total", result.Order.TotalAmount.String()))
	return result, nil
}

func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix)
}

func loadOrder(ctx context.Context, tx repository.Store, id string) (*model.Order, error) {
	o, err := tx.Orders().Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errors.Wrapf(apperror.ErrOrderNotFound, "order %s", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load order %s", id)
	}
	return o, nil
}

// Advance moves the order one step along the forward chain
func (s *Service) Advance(ctx context.Context, actor access.Actor, id string) (*model.Order, error) {
	o, err := loadOrder(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	next, ok := NextStatusFor(o)
	if !ok {
		return nil, errors.Wrapf(apperror.ErrInvalidTransition, "order %s is %s and cannot advance", o.OrderNumber, o.Status)
	}
	return s.UpdateStatus(ctx, actor, id, next)
}

// UpdateStatus moves the order to status to, cancellation included. Dispatch marks the
// assigned driver unavailable; delivery or cancellation afterwards frees the driver again.
// Cancelling does not touch the outstanding balance.
func (s *Service) UpdateStatus(ctx context.Context, actor access.Actor, id string, to model.OrderStatus) (*model.Order, error) {
	var (
		updated *model.Order
		from    model.OrderStatus
	)
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		o, err := loadOrder(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := ValidateTransition(o, to); err != nil {
			return err
		}
		if err := requireTransition(actor, o, to); err != nil {
			return err
		}

		from = o.Status
		if o.DriverID != nil {
			switch {
			case to == model.StatusOutForDelivery:
				if err := setDriverAvailability(ctx, tx, *o.DriverID, false); err != nil {
					return err
				}
			case from == model.StatusOutForDelivery:
				if err := setDriverAvailability(ctx, tx, *o.DriverID, true); err != nil {
					return err
				}
			}
		}

		o.Status = to
		if err := tx.Orders().Upsert(ctx, o); err != nil {
			return errors.Wrapf(err, "save order %s", o.ID)
		}
		if err := audit.Record(ctx, tx, actor, audit.ActionStatusChange, audit.EntityOrder, o.ID,
			"order %s: %s -> %s", o.OrderNumber, from, to); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordOrderTransition(string(from), string(to))
	logger.FromContext(ctx).Info("Order status updated",
		zap.String("order_id", updated.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)))
	return updated, nil
}

func setDriverAvailability(ctx context.Context, tx repository.Store, driverID string, available bool) error {
	d, err := tx.Drivers().Get(ctx, driverID)
	if errors.Is(err, repository.ErrNotFound) {
		// the driver record was removed; nothing to release
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "load driver %s", driverID)
	}
	d.IsAvailable = available
	return errors.Wrapf(tx.Drivers().Upsert(ctx, d), "save driver %s", driverID)
}

// AssignDriver attaches an available driver to a ready delivery order
func (s *Service) AssignDriver(ctx context.Context, actor access.Actor, id, driverID string) (*model.Order, error) {
	if err := actor.Require(access.DeliveryAssign); err != nil {
		return nil, err
	}

	var updated *model.Order
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		o, err := loadOrder(ctx, tx, id)
		if err != nil {
			return err
		}
		if o.Status != model.StatusReady {
			return errors.Wrapf(apperror.ErrInvalidTransition, "drivers can only be assigned to ready orders, order %s is %s", o.OrderNumber, o.Status)
		}
		if o.DeliveryType != model.DeliveryDelivery {
			return apperror.Invalid("order %s is a pickup order", o.OrderNumber)
		}

		d, err := tx.Drivers().Get(ctx, driverID)
		if errors.Is(err, repository.ErrNotFound) {
			return errors.Wrapf(apperror.ErrDriverNotFound, "driver %s", driverID)
		}
		if err != nil {
			return errors.Wrapf(err, "load driver %s", driverID)
		}
		if !d.IsAvailable {
			return apperror.Invalid("driver %s is not available", d.Name)
		}

		o.DriverID = &d.ID
		if err := tx.Orders().Upsert(ctx, o); err != nil {
			return errors.Wrapf(err, "save order %s", o.ID)
		}
		if err := audit.Record(ctx, tx, actor, audit.ActionAssign, audit.EntityOrder, o.ID,
			"order %s assigned to %s", o.OrderNumber, d.Name); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Driver assigned",
		zap.String("order_id", updated.ID),
		zap.String("driver_id", driverID))
	return updated, nil
}

// Get returns one order; client users only see their own
func (s *Service) Get(ctx context.Context, actor access.Actor, id string) (*model.Order, error) {
	if err := actor.Require(access.OrderView); err != nil {
		return nil, err
	}
	o, err := loadOrder(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if err := actor.RequireClient(o.ClientID); err != nil {
		return nil, err
	}
	return o, nil
}

// List returns orders newest first; client users are limited to their own account
func (s *Service) List(ctx context.Context, actor access.Actor, filter repository.OrderFilter) ([]model.Order, error) {
	if err := actor.Require(access.OrderView); err != nil {
		return nil, err
	}
	if actor.ScopedToClient() {
		filter.ClientID = actor.ClientID
	}
	for _, st := range filter.Statuses {
		if !st.Valid() {
			return nil, apperror.Invalid("unknown order status %q", st)
		}
	}
	if filter.DeliveryType != "" && !filter.DeliveryType.Valid() {
		return nil, apperror.Invalid("unknown delivery type %q", filter.DeliveryType)
	}
	orders, err := s.store.Orders().List(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return orders, nil
}

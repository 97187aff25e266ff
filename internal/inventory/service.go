// Package inventory keeps product stock and its movement ledger in step.
package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/mubark555/pastry-opus-biz/internal/access"
	"github.com/mubark555/pastry-opus-biz/internal/apperror"
	"github.com/mubark555/pastry-opus-biz/internal/audit"
	"github.com/mubark555/pastry-opus-biz/internal/model"
	"github.com/mubark555/pastry-opus-biz/internal/repository"
	"github.com/mubark555/pastry-opus-biz/pkg/logger"
	"github.com/mubark555/pastry-opus-biz/prometheus"
	"go.uber.org/zap"
)

// MovementRequest describes stock entering or leaving
type MovementRequest struct {
	ProductID string                  `json:"product_id"`
	Direction model.MovementDirection `json:"type"`
	Quantity  int                     `json:"quantity"`
	Reason    string                  `json:"reason"`
	Date      string                  `json:"date"`
}

// Service records stock movements
type Service struct {
	store     repository.Store
	metrics   *prometheus.Metrics
	threshold int
	now       func() time.Time
}

// NewService creates the inventory service. threshold is the default low-stock level.
func NewService(store repository.Store, metrics *prometheus.Metrics, threshold int) *Service {
	return &Service{store: store, metrics: metrics, threshold: threshold, now: time.Now}
}

// RecordMovement appends a ledger entry and applies it to the product's stock in one transaction
func (s *Service) RecordMovement(ctx context.Context, actor access.Actor, req MovementRequest) (*model.InventoryMovement, error) {
	if err := actor.Require(access.InventoryRecord); err != nil {
		return nil, err
	}
	if req.ProductID == "" {
		return nil, apperror.Invalid("product_id is required")
	}
	if !req.Direction.Valid() {
		return nil, apperror.Invalid("type must be in or out")
	}
	if req.Quantity <= 0 {
		return nil, apperror.Invalid("quantity must be positive")
	}
	if req.Quantity > model.MaxStock {
		return nil, apperror.Invalid("quantity must not exceed %d", model.MaxStock)
	}
	if req.Date == "" {
		req.Date = s.now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return nil, apperror.Invalid("date must be YYYY-MM-DD")
	}

	var mv *model.InventoryMovement
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		p, err := tx.Products().GetForUpdate(ctx, req.ProductID)
		if errors.Is(err, repository.ErrNotFound) {
			return errors.Wrapf(apperror.ErrProductNotFound, "product %s", req.ProductID)
		}
		if err != nil {
			return errors.Wrapf(err, "load product %s", req.ProductID)
		}

		if req.Direction == model.MovementIn && req.Quantity > model.MaxStock-p.Stock {
			return apperror.Invalid("%s has %d, adding %d would exceed the stock limit of %d", p.Name, p.Stock, req.Quantity, model.MaxStock)
		}
		stock := p.Stock + req.Quantity
		if req.Direction == model.MovementOut {
			if req.Quantity > p.Stock {
				return errors.Wrapf(apperror.ErrInsufficientStock, "%s has %d, requested %d", p.Name, p.Stock, req.Quantity)
			}
			stock = p.Stock - req.Quantity
		}
		p.Stock = stock
		if err := tx.Products().Upsert(ctx, p); err != nil {
			return errors.Wrap(err, "update stock")
		}

		mv = &model.InventoryMovement{
			ID:          uuid.NewString(),
			ProductID:   p.ID,
			ProductName: p.Name,
			Direction:   req.Direction,
			Quantity:    req.Quantity,
			Reason:      strings.TrimSpace(req.Reason),
			Date:        req.Date,
			StockAfter:  stock,
		}
		if err := tx.Inventory().Append(ctx, mv); err != nil {
			return errors.Wrap(err, "append movement")
		}
		return audit.Record(ctx, tx, actor, audit.ActionMovement, audit.EntityMovement, mv.ID,
			"%s %d %s, stock now %d", req.Direction, req.Quantity, p.Name, stock)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordInventoryMovement(string(mv.Direction), mv.ProductID, mv.StockAfter)
	logger.FromContext(ctx).Info("Stock movement recorded",
		zap.String("product_id", mv.ProductID),
		zap.String("direction", string(mv.Direction)),
		zap.Int("quantity", mv.Quantity),
		zap.Int("stock_after", mv.StockAfter))
	return mv, nil
}

// ListMovements returns ledger entries newest first, for one product or all when productID is empty
func (s *Service) ListMovements(ctx context.Context, actor access.Actor, productID string) ([]model.InventoryMovement, error) {
	if err := actor.Require(access.InventoryView); err != nil {
		return nil, err
	}
	movements, err := s.store.Inventory().List(ctx, productID)
	if err != nil {
		return nil, errors.Wrap(err, "list movements")
	}
	return movements, nil
}

// LowStock returns active products whose stock is below threshold, or the
// configured level when threshold is not positive
func (s *Service) LowStock(ctx context.Context, actor access.Actor, threshold int) ([]model.Product, error) {
	if err := actor.Require(access.InventoryView); err != nil {
		return nil, err
	}
	if threshold <= 0 {
		threshold = s.threshold
	}
	products, err := s.store.Products().List(ctx, repository.ProductFilter{ActiveOnly: true})
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	low := []model.Product{}
	for _, p := range products {
		if p.Stock < threshold {
			low = append(low, p)
		}
	}
	return low, nil
}

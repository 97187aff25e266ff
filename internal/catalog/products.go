package catalog

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/mubark555/pastry-opus-biz/internal/access"
	"github.com/mubark555/pastry-opus-biz/internal/apperror"
	"github.com/mubark555/pastry-opus-biz/internal/audit"
	"github.com/mubark555/pastry-opus-biz/internal/model"
	"github.com/mubark555/pastry-opus-biz/internal/repository"
	"github.com/mubark555/pastry-opus-biz/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductInput carries the editable product fields. Stock is only read on
// create, as opening stock; afterwards it moves through the inventory ledger.
type ProductInput struct {
	Name             string          `json:"name"`
	Category         string          `json:"category"`
	UnitType         model.UnitType  `json:"unit_type"`
	BasePrice        decimal.Decimal `json:"base_price"`
	CostPrice        decimal.Decimal `json:"cost_price"`
	PreparationTime  int             `json:"preparation_time"`
	ShelfLife        int             `json:"shelf_life"`
	MinOrderQuantity int             `json:"min_order_quantity"`
	IsActive         *bool           `json:"is_active"`
	Stock            int             `json:"stock"`
}

func (in *ProductInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if in.Name == "" {
		return apperror.Invalid("name is required")
	}
	if !in.UnitType.Valid() {
		return apperror.Invalid("unit_type must be piece, tray or carton")
	}
	if in.BasePrice.IsNegative() || in.CostPrice.IsNegative() {
		return apperror.Invalid("prices must not be negative")
	}
	if in.MinOrderQuantity == 0 {
		in.MinOrderQuantity = 1
	}
	if in.MinOrderQuantity < 1 {
		return apperror.Invalid("min_order_quantity must be at least 1")
	}
	if in.PreparationTime < 0 || in.ShelfLife < 0 {
		return apperror.Invalid("preparation_time and shelf_life must not be negative")
	}
	if in.Stock < 0 || in.Stock > model.MaxStock {
		return apperror.Invalid("stock must be between 0 and %d", model.MaxStock)
	}
	return nil
}

func (in *ProductInput) apply(p *model.Product) {
	p.Name = in.Name
	p.Category = in.Category
	p.UnitType = in.UnitType
	p.BasePrice = in.BasePrice
	p.CostPrice = in.CostPrice
	p.PreparationTime = in.PreparationTime
	p.ShelfLife = in.ShelfLife
	p.MinOrderQuantity = in.MinOrderQuantity
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
}

// CreateProduct adds a product. Opening stock is booked as an inbound movement.
func (s *Service) CreateProduct(ctx context.Context, actor access.Actor, in ProductInput) (*model.Product, error) {
	if err := actor.Require(access.CatalogManage); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	p := &model.Product{ID: uuid.NewString(), IsActive: true, Stock: in.Stock}
	in.apply(p)
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		if err := tx.Products().Upsert(ctx, p); err != nil {
			return errors.Wrap(err, "save product")
		}
		if p.Stock > 0 {
			mv := &model.InventoryMovement{
				ID:          uuid.NewString(),
				ProductID:   p.ID,
				ProductName: p.Name,
				Direction:   model.MovementIn,
				Quantity:    p.Stock,
				Reason:      "Opening stock",
				Date:        s.now().Format("2006-01-02"),
				StockAfter:  p.Stock,
			}
			if err := tx.Inventory().Append(ctx, mv); err != nil {
				return errors.Wrap(err, "book opening stock")
			}
		}
		return audit.Record(ctx, tx, actor, audit.ActionCreate, audit.EntityProduct, p.ID, "created product %s", p.Name)
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Product created", zap.String("product_id", p.ID), zap.String("name", p.Name))
	return p, nil
}

// UpdateProduct changes the editable fields. Stock is left untouched.
func (s *Service) UpdateProduct(ctx context.Context, actor access.Actor, id string, in ProductInput) (*model.Product, error) {
	if err := actor.Require(access.CatalogManage); err != nil {
		return nil, err
	}
	in.Stock = 0
	if err := in.validate(); err != nil {
		return nil, err
	}

	var p *model.Product
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		var err error
		if p, err = getProduct(ctx, tx, id); err != nil {
			return err
		}
		in.apply(p)
		if err := tx.Products().Upsert(ctx, p); err != nil {
			return errors.Wrap(err, "save product")
		}
		return audit.Record(ctx, tx, actor, audit.ActionUpdate, audit.EntityProduct, p.ID, "updated product %s", p.Name)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// DeactivateProduct hides a product from new orders. Products are never
// hard-deleted because past orders reference them.
func (s *Service) DeactivateProduct(ctx context.Context, actor access.Actor, id string) (*model.Product, error) {
	if err := actor.Require(access.CatalogManage); err != nil {
		return nil, err
	}

	var p *model.Product
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		var err error
		if p, err = getProduct(ctx, tx, id); err != nil {
			return err
		}
		if !p.IsActive {
			return nil
		}
		p.IsActive = false
		if err := tx.Products().Upsert(ctx, p); err != nil {
			return errors.Wrap(err, "save product")
		}
		return audit.Record(ctx, tx, actor, audit.ActionUpdate, audit.EntityProduct, p.ID, "deactivated product %s", p.Name)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetProduct returns one product; client users only see active ones
func (s *Service) GetProduct(ctx context.Context, actor access.Actor, id string) (*model.Product, error) {
	if err := actor.Require(access.CatalogView); err != nil {
		return nil, err
	}
	p, err := getProduct(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if actor.ScopedToClient() && !p.IsActive {
		return nil, errors.Wrapf(apperror.ErrProductNotFound, "product %s", id)
	}
	return p, nil
}

// ListProducts lists the catalog. Client users always get the active products only.
func (s *Service) ListProducts(ctx context.Context, actor access.Actor, filter repository.ProductFilter) ([]model.Product, error) {
	if err := actor.Require(access.CatalogView); err != nil {
		return nil, err
	}
	if actor.ScopedToClient() {
		filter.ActiveOnly = true
	}
	products, err := s.store.Products().List(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return products, nil
}

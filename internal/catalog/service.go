// Package catalog manages the master data: products, clients, their pricing rules and drivers.
package catalog

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mubark555/pastry-opus-biz/internal/apperror"
	"github.com/mubark555/pastry-opus-biz/internal/model"
	"github.com/mubark555/pastry-opus-biz/internal/repository"
)

// Service handles master data changes
type Service struct {
	store repository.Store
	now   func() time.Time
}

// NewService creates the catalog service
func NewService(store repository.Store) *Service {
	return &Service{store: store, now: time.Now}
}

func notFound(err error, sentinel error, kind, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return errors.Wrapf(sentinel, "%s %s", kind, id)
	}
	return errors.Wrapf(err, "load %s %s", kind, id)
}

func getProduct(ctx context.Context, tx repository.Store, id string) (*model.Product, error) {
	p, err := tx.Products().Get(ctx, id)
	if err != nil {
		return nil, notFound(err, apperror.ErrProductNotFound, "product", id)
	}
	return p, nil
}

func getClient(ctx context.Context, tx repository.Store, id string) (*model.Client, error) {
	c, err := tx.Clients().Get(ctx, id)
	if err != nil {
		return nil, notFound(err, apperror.ErrClientNotFound, "client", id)
	}
	return c, nil
}

func getDriver(ctx context.Context, tx repository.Store, id string) (*model.Driver, error) {
	d, err := tx.Drivers().Get(ctx, id)
	if err != nil {
		return nil, notFound(err, apperror.ErrDriverNotFound, "driver", id)
	}
	return d, nil
}

func getRule(ctx context.Context, tx repository.Store, id string) (*model.ClientProductPricing, error) {
	r, err := tx.Pricing().Get(ctx, id)
	if err != nil {
		return nil, notFound(err, apperror.ErrPricingRuleNotFound, "pricing rule", id)
	}
	return r, nil
}

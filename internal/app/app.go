// Package app wires configuration, storage and services for the binaries.
package app

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/mubark555/pastry-opus-biz/internal/audit"
	"github.com/mubark555/pastry-opus-biz/internal/catalog"
	"github.com/mubark555/pastry-opus-biz/internal/finance"
	"github.com/mubark555/pastry-opus-biz/internal/handler"
	"github.com/mubark555/pastry-opus-biz/internal/inventory"
	"github.com/mubark555/pastry-opus-biz/internal/order"
	"github.com/mubark555/pastry-opus-biz/internal/pricing"
	"github.com/mubark555/pastry-opus-biz/internal/repository"
	"github.com/mubark555/pastry-opus-biz/internal/repository/demo"
	"github.com/mubark555/pastry-opus-biz/internal/repository/gormstore"
	"github.com/mubark555/pastry-opus-biz/internal/repository/memory"
	"github.com/mubark555/pastry-opus-biz/pkg/config"
	"github.com/mubark555/pastry-opus-biz/pkg/database"
	"github.com/mubark555/pastry-opus-biz/pkg/logger"
	"github.com/mubark555/pastry-opus-biz/prometheus"
	"go.uber.org/zap"
)

// OpenStore returns the backend selected by STORE_DRIVER. Postgres is migrated
// before use. Demo data is loaded when STORE_SEED_DEMO is set, and always for memory.
func OpenStore(ctx context.Context, cfg *config.Config, metrics *prometheus.Metrics) (repository.Store, error) {
	log := logger.GetLogger()

	var store repository.Store
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		store = memory.New()
	case config.StoreDriverPostgres:
		conn, err := database.InitDB(&cfg.DB)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(conn); err != nil {
			return nil, err
		}
		store = gormstore.New(conn, metrics)
	default:
		return nil, errors.Newf("unknown store driver %q", cfg.Store.Driver)
	}

	if cfg.Store.SeedDemo || cfg.Store.Driver == config.StoreDriverMemory {
		if err := demo.Load(ctx, store); err != nil {
			return nil, errors.Wrap(err, "load demo data")
		}
		log.Info("Demo data loaded", zap.String("store_driver", cfg.Store.Driver))
	}
	return store, nil
}

// Services builds every service over store
func Services(cfg *config.Config, store repository.Store, metrics *prometheus.Metrics) handler.Services {
	return handler.Services{
		Store:     store,
		Catalog:   catalog.NewService(store),
		Orders:    order.NewService(store, pricing.NewResolver(store, metrics), metrics),
		Finance:   finance.NewService(store, metrics, cfg.Credit.NearLimitRatio),
		Inventory: inventory.NewService(store, metrics, cfg.Inventory.LowStockThreshold),
		Audit:     audit.NewService(store),
	}
}

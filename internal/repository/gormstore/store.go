// Package gormstore implements repository.Store on Postgres through gorm.
package gormstore

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mubark555/pastry-opus-biz/internal/repository"
	"github.com/mubark555/pastry-opus-biz/prometheus"
	"gorm.io/gorm"
)

// Store wraps a gorm handle. Inside Atomic the handle is the open transaction.
type Store struct {
	db      *gorm.DB
	metrics *prometheus.Metrics
}

// New creates a store over db; metrics may be nil
func New(db *gorm.DB, metrics *prometheus.Metrics) *Store {
	return &Store{db: db, metrics: metrics}
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (s *Store) track(op string) func() {
	done := s.metrics.TrackDBOperation(op)
	start := time.Now()
	return func() { done(start) }
}

// Atomic runs fn inside a database transaction; nested calls use savepoints
func (s *Store) Atomic(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, metrics: s.metrics})
	})
}

// Ping checks the connection
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "get database object")
	}
	return errors.Wrap(sqlDB.PingContext(ctx), "ping database")
}

func (s *Store) Products() repository.ProductRepository { return productRepo{s} }
func (s *Store) Clients() repository.ClientRepository { return clientRepo{s} }
func (s *Store) Pricing() repository.PricingRepository { return pricingRepo{s} }
func (s *Store) Orders() repository.OrderRepository { return orderRepo{s} }
func (s *Store) Drivers() repository.DriverRepository { return driverRepo{s} }
func (s *Store) Payments() repository.PaymentRepository { return paymentRepo{s} }
func (s *Store) Inventory() repository.InventoryRepository { return inventoryRepo{s} }
func (s *Store) Audit() repository.AuditRepository { return auditRepo{s} }

// translate maps gorm's not-found onto the repository sentinel and adds context to the rest
func translate(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.WithStack(repository.ErrNotFound)
	}
	return errors.Wrapf(err, format, args...)
}

// affected turns a delete that matched nothing into ErrNotFound
func affected(res *gorm.DB, format string, args ...interface{}) error {
	if res.Error != nil {
		return errors.Wrapf(res.Error, format, args...)
	}
	if res.RowsAffected == 0 {
		return errors.WithStack(repository.ErrNotFound)
	}
	return nil
}

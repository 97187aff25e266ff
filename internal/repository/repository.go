// Package repository declares the storage contracts the services depend on.
package repository

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/mubark555/pastry-opus-biz/internal/model"
)

// ErrNotFound is returned by Get-style lookups for unknown ids
var ErrNotFound = errors.New("record not found")

// ProductFilter narrows product listings
type ProductFilter struct {
	ActiveOnly bool
	Category   string
}

// OrderFilter narrows order listings. Search matches order number or client name, case-insensitively.
type OrderFilter struct {
	ClientID     string
	Statuses     []model.OrderStatus
	DeliveryType model.DeliveryType
	Search       string
}

// ProductRepository stores catalog products
type ProductRepository interface {
	Get(ctx context.Context, id string) (*model.Product, error)
	// GetForUpdate holds the product row until the surrounding Atomic ends
	GetForUpdate(ctx context.Context, id string) (*model.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]model.Product, error)
	Upsert(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id string) error
}

// ClientRepository stores client accounts
type ClientRepository interface {
	Get(ctx context.Context, id string) (*model.Client, error)
	// GetForUpdate reads the client and, inside Store.Atomic, holds it against
	// concurrent writers until the transaction ends.
	GetForUpdate(ctx context.Context, id string) (*model.Client, error)
	List(ctx context.Context) ([]model.Client, error)
	Upsert(ctx context.Context, c *model.Client) error
	Delete(ctx context.Context, id string) error
}

// PricingRepository stores client-specific pricing rules
type PricingRepository interface {
	Get(ctx context.Context, id string) (*model.ClientProductPricing, error)
	// Find returns the rule for the exact pair, or ErrNotFound
	Find(ctx context.Context, clientID, productID string) (*model.ClientProductPricing, error)
	List(ctx context.Context, clientID string) ([]model.ClientProductPricing, error)
	// Upsert replaces any existing rule for the same (client, product) pair
	Upsert(ctx context.Context, rule *model.ClientProductPricing) error
	Delete(ctx context.Context, id string) error
}

// OrderRepository stores orders with their items
type OrderRepository interface {
	Get(ctx context.Context, id string) (*model.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]model.Order, error)
	Upsert(ctx context.Context, o *model.Order) error
	Delete(ctx context.Context, id string) error
}

// DriverRepository stores delivery drivers
type DriverRepository interface {
	Get(ctx context.Context, id string) (*model.Driver, error)
	List(ctx context.Context) ([]model.Driver, error)
	Upsert(ctx context.Context, d *model.Driver) error
	Delete(ctx context.Context, id string) error
}

// PaymentRepository stores recorded payments
type PaymentRepository interface {
	Get(ctx context.Context, id string) (*model.Payment, error)
	List(ctx context.Context, clientID string) ([]model.Payment, error)
	Upsert(ctx context.Context, p *model.Payment) error
	Delete(ctx context.Context, id string) error
}

// InventoryRepository is the append-only stock ledger
type InventoryRepository interface {
	Append(ctx context.Context, m *model.InventoryMovement) error
	List(ctx context.Context, productID string) ([]model.InventoryMovement, error)
}

// AuditRepository is the append-only audit trail
type AuditRepository interface {
	Append(ctx context.Context, entry *model.AuditLog) error
	List(ctx context.Context, limit int) ([]model.AuditLog, error)
}

// Store aggregates the repositories of one backend
type Store interface {
	Products() ProductRepository
	Clients() ClientRepository
	Pricing() PricingRepository
	Orders() OrderRepository
	Drivers() DriverRepository
	Payments() PaymentRepository
	Inventory() InventoryRepository
	Audit() AuditRepository

	// Atomic runs fn against a store bound to one transaction. Writes made
	// through tx commit together when fn returns nil and are discarded otherwise.
	Atomic(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}

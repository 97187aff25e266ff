// Package memory is an in-process repository.Store used for demo mode and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mubark555/pastry-opus-biz/internal/model"
	"github.com/mubark555/pastry-opus-biz/internal/repository"
)

var errMissingID = errors.New("id is required")

type tables struct {
	products  map[string]model.Product
	clients   map[string]model.Client
	pricing   map[string]model.ClientProductPricing
	orders    map[string]model.Order
	drivers   map[string]model.Driver
	payments  map[string]model.Payment
	movements []model.InventoryMovement
	audit     []model.AuditLog
}

func newTables() *tables {
	return &tables{
		products: map[string]model.Product{},
		clients:  map[string]model.Client{},
		pricing:  map[string]model.ClientProductPricing{},
		orders:   map[string]model.Order{},
		drivers:  map[string]model.Driver{},
		payments: map[string]model.Payment{},
	}
}

func (t *tables) clone() *tables {
	c := newTables()
	for k, v := range t.products {
		c.products[k] = v
	}
	for k, v := range t.clients {
		c.clients[k] = v
	}
	for k, v := range t.pricing {
		c.pricing[k] = clonePricing(v)
	}
	for k, v := range t.orders {
		c.orders[k] = cloneOrder(v)
	}
	for k, v := range t.drivers {
		c.drivers[k] = v
	}
	for k, v := range t.payments {
		c.payments[k] = v
	}
	c.movements = append([]model.InventoryMovement(nil), t.movements...)
	c.audit = append([]model.AuditLog(nil), t.audit...)
	return c
}

type engine struct {
	// txMu serializes writers; Atomic holds it from the copy to the swap
	txMu sync.Mutex
	mu   sync.RWMutex
	data *tables
	now  func() time.Time
}

// Store implements repository.Store in memory. Values are copied on the way
// in and out so callers never share state with the store.
type Store struct {
	eng *engine
	// tx is the private working copy of an open Atomic call; nil outside one
	tx *tables
}

// New creates an empty store
func New() *Store {
	return &Store{eng: &engine{data: newTables(), now: time.Now}}
}

// SetClock overrides the timestamp source
func (s *Store) SetClock(now func() time.Time) {
	s.eng.now = now
}

func (s *Store) read(fn func(t *tables)) {
	if s.tx != nil {
		fn(s.tx)
		return
	}
	s.eng.mu.RLock()
	defer s.eng.mu.RUnlock()
	fn(s.eng.data)
}

func (s *Store) write(fn func(t *tables) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	s.eng.txMu.Lock()
	defer s.eng.txMu.Unlock()
	s.eng.mu.Lock()
	defer s.eng.mu.Unlock()
	return fn(s.eng.data)
}

// Atomic runs fn against a private copy of the tables with all writers excluded.
// The copy replaces the committed tables only when fn succeeds, so readers
// outside the call never see its writes early.
func (s *Store) Atomic(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.tx != nil {
		// nested calls behave like savepoints
		inner := s.tx.clone()
		if err := fn(&Store{eng: s.eng, tx: inner}); err != nil {
			return err
		}
		*s.tx = *inner
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.eng.txMu.Lock()
	defer s.eng.txMu.Unlock()

	s.eng.mu.RLock()
	working := s.eng.data.clone()
	s.eng.mu.RUnlock()

	if err := fn(&Store{eng: s.eng, tx: working}); err != nil {
		return err
	}

	s.eng.mu.Lock()
	s.eng.data = working
	s.eng.mu.Unlock()
	return nil
}

// Ping always succeeds
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Products() repository.ProductRepository { return productRepo{s} }
func (s *Store) Clients() repository.ClientRepository { return clientRepo{s} }
func (s *Store) Pricing() repository.PricingRepository { return pricingRepo{s} }
func (s *Store) Orders() repository.OrderRepository { return orderRepo{s} }
func (s *Store) Drivers() repository.DriverRepository { return driverRepo{s} }
func (s *Store) Payments() repository.PaymentRepository { return paymentRepo{s} }
func (s *Store) Inventory() repository.InventoryRepository { return inventoryRepo{s} }
func (s *Store) Audit() repository.AuditRepository { return auditRepo{s} }

func clonePricing(p model.ClientProductPricing) model.ClientProductPricing {
	if p.FixedPrice != nil {
		fp := *p.FixedPrice
		p.FixedPrice = &fp
	}
	if p.Tiers != nil {
		tiers := make([]model.PricingTier, len(p.Tiers))
		for i, t := range p.Tiers {
			if t.MaxQty != nil {
				mq := *t.MaxQty
				t.MaxQty = &mq
			}
			tiers[i] = t
		}
		p.Tiers = tiers
	}
	p.Client, p.Product = nil, nil
	return p
}

func cloneOrder(o model.Order) model.Order {
	if o.Items != nil {
		items := make([]model.OrderItem, len(o.Items))
		copy(items, o.Items)
		for i := range items {
			items[i].Product = nil
		}
		o.Items = items
	}
	if o.DriverID != nil {
		id := *o.DriverID
		o.DriverID = &id
	}
	o.Client, o.Driver = nil, nil
	return o
}

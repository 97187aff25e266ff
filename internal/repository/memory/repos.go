package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/mubark555/pastry-opus-biz/internal/model"
	"github.com/mubark555/pastry-opus-biz/internal/repository"
)

type productRepo struct{ s *Store }

func (r productRepo) Get(ctx context.Context, id string) (*model.Product, error) {
	var (
		p  model.Product
		ok bool
	)
	r.s.read(func(t *tables) { p, ok = t.products[id] })
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r productRepo) GetForUpdate(ctx context.Context, id string) (*model.Product, error) {
	return r.Get(ctx, id)
}

func (r productRepo) List(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error) {
	out := []model.Product{}
	r.s.read(func(t *tables) {
		for _, p := range t.products {
			if filter.ActiveOnly && !p.IsActive {
				continue
			}
			if filter.Category != "" && p.Category != filter.Category {
				continue
			}
			out = append(out, p)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r productRepo) Upsert(ctx context.Context, p *model.Product) error {
	if p.ID == "" {
		return errMissingID
	}
	return r.s.write(func(t *tables) error {
		now := r.s.eng.now()
		if old, ok := t.products[p.ID]; ok {
			p.CreatedAt = old.CreatedAt
		} else if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		p.UpdatedAt = now
		t.products[p.ID] = *p
		return nil
	})
}

func (r productRepo) Delete(ctx context.Context, id string) error {
	return r.s.write(func(t *tables) error {
		if _, ok := t.products[id]; !ok {
			return repository.ErrNotFound
		}
		delete(t.products, id)
		return nil
	})
}

type clientRepo struct{ s *Store }

func (r clientRepo) Get(ctx context.Context, id string) (*model.Client, error) {
	var (
		c  model.Client
		ok bool
	)
	r.s.read(func(t *tables) { c, ok = t.clients[id] })
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

// GetForUpdate needs no extra locking: Atomic already excludes every other writer
func (r clientRepo) GetForUpdate(ctx context.Context, id string) (*model.Client, error) {
	return r.Get(ctx, id)
}

func (r clientRepo) List(ctx context.Context) ([]model.Client, error) {
	out := []model.Client{}
	r.s.read(func(t *tables) {
		for _, c := range t.clients {
			out = append(out, c)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r clientRepo) Upsert(ctx context.Context, c *model.Client) error {
	if c.ID == "" {
		return errMissingID
	}
	return r.s.write(func(t *tables) error {
		now := r.s.eng.now()
		if old, ok := t.clients[c.ID]; ok {
			c.CreatedAt = old.CreatedAt
		} else if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		c.UpdatedAt = now
		t.clients[c.ID] = *c
		return nil
	})
}

func (r clientRepo) Delete(ctx context.Context, id string) error {
	return r.s.write(func(t *tables) error {
		if _, ok := t.clients[id]; !ok {
			return repository.ErrNotFound
		}
		delete(t.clients, id)
		for k, p := range t.pricing {
			if p.ClientID == id {
				delete(t.pricing, k)
			}
		}
		return nil
	})
}

type pricingRepo struct{ s *Store }

func (r pricingRepo) Get(ctx context.Context, id string) (*model.ClientProductPricing, error) {
	var (
		p  model.ClientProductPricing
		ok bool
	)
	r.s.read(func(t *tables) {
		if p, ok = t.pricing[id]; ok {
			p = clonePricing(p)
		}
	})
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r pricingRepo) Find(ctx context.Context, clientID, productID string) (*model.ClientProductPricing, error) {
	var found *model.ClientProductPricing
	r.s.read(func(t *tables) {
		for _, p := range t.pricing {
			if p.ClientID == clientID && p.ProductID == productID {
				c := clonePricing(p)
				found = &c
				return
			}
		}
	})
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (r pricingRepo) List(ctx context.Context, clientID string) ([]model.ClientProductPricing, error) {
	out := []model.ClientProductPricing{}
	r.s.read(func(t *tables) {
		for _, p := range t.pricing {
			if clientID != "" && p.ClientID != clientID {
				continue
			}
			out = append(out, clonePricing(p))
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r pricingRepo) Upsert(ctx context.Context, rule *model.ClientProductPricing) error {
	if rule.ID == "" {
		return errMissingID
	}
	return r.s.write(func(t *tables) error {
		now := r.s.eng.now()
		for k, p := range t.pricing {
			if k != rule.ID && p.ClientID == rule.ClientID && p.ProductID == rule.ProductID {
				delete(t.pricing, k)
			}
		}
		if old, ok := t.pricing[rule.ID]; ok {
			rule.CreatedAt = old.CreatedAt
		} else if rule.CreatedAt.IsZero() {
			rule.CreatedAt = now
		}
		rule.UpdatedAt = now
		for i := range rule.Tiers {
			rule.Tiers[i].PricingID = rule.ID
			rule.Tiers[i].Position = i
		}
		t.pricing[rule.ID] = clonePricing(*rule)
		return nil
	})
}

func (r pricingRepo) Delete(ctx context.Context, id string) error {
	return r.s.write(func(t *tables) error {
		if _, ok := t.pricing[id]; !ok {
			return repository.ErrNotFound
		}
		delete(t.pricing, id)
		return nil
	})
}

type orderRepo struct{ s *Store }

func (r orderRepo) Get(ctx context.Context, id string) (*model.Order, error) {
	var (
		o  model.Order
		ok bool
	)
	r.s.read(func(t *tables) {
		if o, ok = t.orders[id]; ok {
			o = cloneOrder(o)
		}
	})
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &o, nil
}

func (r orderRepo) List(ctx context.Context, filter repository.OrderFilter) ([]model.Order, error) {
	out := []model.Order{}
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	r.s.read(func(t *tables) {
		for _, o := range t.orders {
			if filter.ClientID != "" && o.ClientID != filter.ClientID {
				continue
			}
			if filter.DeliveryType != "" && o.DeliveryType != filter.DeliveryType {
				continue
			}
			if len(filter.Statuses) > 0 && !hasStatus(filter.Statuses, o.Status) {
				continue
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(o.OrderNumber), search) &&
				!strings.Contains(strings.ToLower(o.ClientName), search) {
				continue
			}
			out = append(out, cloneOrder(o))
		}
	})
	// newest first
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func hasStatus(statuses []model.OrderStatus, s model.OrderStatus) bool {
	for _, st := range statuses {
		if st == s {
			return true
		}
	}
	return false
}

func (r orderRepo) Upsert(ctx context.Context, o *model.Order) error {
	if o.ID == "" {
		return errMissingID
	}
	return r.s.write(func(t *tables) error {
		now := r.s.eng.now()
		for k, other := range t.orders {
			if k != o.ID && other.OrderNumber == o.OrderNumber {
				return errors.Newf("order number %s already in use", o.OrderNumber)
			}
		}
		if old, ok := t.orders[o.ID]; ok {
			o.CreatedAt = old.CreatedAt
		} else if o.CreatedAt.IsZero() {
			o.CreatedAt = now
		}
		o.UpdatedAt = now
		for i := range o.Items {
			o.Items[i].OrderID = o.ID
			o.Items[i].Position = i
		}
		t.orders[o.ID] = cloneOrder(*o)
		return nil
	})
}

func (r orderRepo) Delete(ctx context.Context, id string) error {
	return r.s.write(func(t *tables) error {
		if _, ok := t.orders[id]; !ok {
			return repository.ErrNotFound
		}
		delete(t.orders, id)
		return nil
	})
}

type driverRepo struct{ s *Store }

func (r driverRepo) Get(ctx context.Context, id string) (*model.Driver, error) {
	var (
		d  model.Driver
		ok bool
	)
	r.s.read(func(t *tables) { d, ok = t.drivers[id] })
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (r driverRepo) List(ctx context.Context) ([]model.Driver, error) {
	out := []model.Driver{}
	r.s.read(func(t *tables) {
		for _, d := range t.drivers {
			out = append(out, d)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r driverRepo) Upsert(ctx context.Context, d *model.Driver) error {
	if d.ID == "" {
		return errMissingID
	}
	return r.s.write(func(t *tables) error {
		now := r.s.eng.now()
		if old, ok := t.drivers[d.ID]; ok {
			d.CreatedAt = old.CreatedAt
		} else if d.CreatedAt.IsZero() {
			d.CreatedAt = now
		}
		d.UpdatedAt = now
		t.drivers[d.ID] = *d
		return nil
	})
}

func (r driverRepo) Delete(ctx context.Context, id string) error {
	return r.s.write(func(t *tables) error {
		if _, ok := t.drivers[id]; !ok {
			return repository.ErrNotFound
		}
		delete(t.drivers, id)
		return nil
	})
}

type paymentRepo struct{ s *Store }

func (r paymentRepo) Get(ctx context.Context, id string) (*model.Payment, error) {
	var (
		p  model.Payment
		ok bool
	)
	r.s.read(func(t *tables) { p, ok = t.payments[id] })
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r paymentRepo) List(ctx context.Context, clientID string) ([]model.Payment, error) {
	out := []model.Payment{}
	r.s.read(func(t *tables) {
		for _, p := range t.payments {
			if clientID != "" && p.ClientID != clientID {
				continue
			}
			out = append(out, p)
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date == out[j].Date {
			return out[i].ID > out[j].ID
		}
		return out[i].Date > out[j].Date
	})
	return out, nil
}

func (r paymentRepo) Upsert(ctx context.Context, p *model.Payment) error {
	if p.ID == "" {
		return errMissingID
	}
	return r.s.write(func(t *tables) error {
		if old, ok := t.payments[p.ID]; ok {
			p.CreatedAt = old.CreatedAt
		} else if p.CreatedAt.IsZero() {
			p.CreatedAt = r.s.eng.now()
		}
		t.payments[p.ID] = *p
		return nil
	})
}

func (r paymentRepo) Delete(ctx context.Context, id string) error {
	return r.s.write(func(t *tables) error {
		if _, ok := t.payments[id]; !ok {
			return repository.ErrNotFound
		}
		delete(t.payments, id)
		return nil
	})
}

type inventoryRepo struct{ s *Store }

func (r inventoryRepo) Append(ctx context.Context, m *model.InventoryMovement) error {
	if m.ID == "" {
		return errMissingID
	}
	return r.s.write(func(t *tables) error {
		if m.CreatedAt.IsZero() {
			m.CreatedAt = r.s.eng.now()
		}
		t.movements = append(t.movements, *m)
		return nil
	})
}

// List returns movements newest first, optionally for one product
func (r inventoryRepo) List(ctx context.Context, productID string) ([]model.InventoryMovement, error) {
	out := []model.InventoryMovement{}
	r.s.read(func(t *tables) {
		for i := len(t.movements) - 1; i >= 0; i-- {
			m := t.movements[i]
			if productID != "" && m.ProductID != productID {
				continue
			}
			out = append(out, m)
		}
	})
	return out, nil
}

type auditRepo struct{ s *Store }

func (r auditRepo) Append(ctx context.Context, entry *model.AuditLog) error {
	if entry.ID == "" {
		return errMissingID
	}
	return r.s.write(func(t *tables) error {
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = r.s.eng.now()
		}
		t.audit = append(t.audit, *entry)
		return nil
	})
}

// List returns the most recent entries first; limit <= 0 means all
func (r auditRepo) List(ctx context.Context, limit int) ([]model.AuditLog, error) {
	out := []model.AuditLog{}
	r.s.read(func(t *tables) {
		for i := len(t.audit) - 1; i >= 0; i-- {
			if limit > 0 && len(out) == limit {
				break
			}
			out = append(out, t.audit[i])
		}
	})
	return out, nil
}

package gormstore

import (
	"context"
	"strings"

	"github.com/mubark555/pastry-opus-biz/internal/model"
	"github.com/mubark555/pastry-opus-biz/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type productRepo struct{ s *Store }

func (r productRepo) Get(ctx context.Context, id string) (*model.Product, error) {
	defer r.s.track("product_get")()
	var p model.Product
	if err := r.s.conn(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err, "get product %s", id)
	}
	return &p, nil
}

func (r productRepo) GetForUpdate(ctx context.Context, id string) (*model.Product, error) {
	defer r.s.track("product_lock")()
	var p model.Product
	err := r.s.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "lock product %s", id)
	}
	return &p, nil
}

func (r productRepo) List(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error) {
	defer r.s.track("product_list")()
	query := r.s.conn(ctx).Order("id")
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	products := []model.Product{}
	if err := query.Find(&products).Error; err != nil {
		return nil, translate(err, "list products")
	}
	return products, nil
}

func (r productRepo) Upsert(ctx context.Context, p *model.Product) error {
	defer r.s.track("product_upsert")()
	return translate(r.s.conn(ctx).Save(p).Error, "save product %s", p.ID)
}

func (r productRepo) Delete(ctx context.Context, id string) error {
	defer r.s.track("product_delete")()
	return affected(r.s.conn(ctx).Delete(&model.Product{}, "id = ?", id), "delete product %s", id)
}

type clientRepo struct{ s *Store }

func (r clientRepo) Get(ctx context.Context, id string) (*model.Client, error) {
	defer r.s.track("client_get")()
	var c model.Client
	if err := r.s.conn(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err, "get client %s", id)
	}
	return &c, nil
}

// GetForUpdate issues SELECT ... FOR UPDATE; the lock lasts until the surrounding transaction ends
func (r clientRepo) GetForUpdate(ctx context.Context, id string) (*model.Client, error) {
	defer r.s.track("client_lock")()
	var c model.Client
	err := r.s.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&c, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "lock client %s", id)
	}
	return &c, nil
}

func (r clientRepo) List(ctx context.Context) ([]model.Client, error) {
	defer r.s.track("client_list")()
	clients := []model.Client{}
	if err := r.s.conn(ctx).Order("id").Find(&clients).Error; err != nil {
		return nil, translate(err, "list clients")
	}
	return clients, nil
}

func (r clientRepo) Upsert(ctx context.Context, c *model.Client) error {
	defer r.s.track("client_upsert")()
	return translate(r.s.conn(ctx).Save(c).Error, "save client %s", c.ID)
}

// Delete soft-deletes the client and drops its pricing rules
func (r clientRepo) Delete(ctx context.Context, id string) error {
	defer r.s.track("client_delete")()
	return r.s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := affected(tx.Delete(&model.Client{}, "id = ?", id), "delete client %s", id); err != nil {
			return err
		}
		rules := tx.Model(&model.ClientProductPricing{}).Select("id").Where("client_id = ?", id)
		if err := tx.Where("pricing_id IN (?)", rules).Delete(&model.PricingTier{}).Error; err != nil {
			return translate(err, "delete pricing tiers of client %s", id)
		}
		return translate(tx.Where("client_id = ?", id).Delete(&model.ClientProductPricing{}).Error,
			"delete pricing rules of client %s", id)
	})
}

type pricingRepo struct{ s *Store }

func tiersInOrder(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}

func (r pricingRepo) Get(ctx context.Context, id string) (*model.ClientProductPricing, error) {
	defer r.s.track("pricing_get")()
	var rule model.ClientProductPricing
	if err := r.s.conn(ctx).Preload("Tiers", tiersInOrder).First(&rule, "id = ?", id).Error; err != nil {
		return nil, translate(err, "get pricing rule %s", id)
	}
	return &rule, nil
}

func (r pricingRepo) Find(ctx context.Context, clientID, productID string) (*model.ClientProductPricing, error) {
	defer r.s.track("pricing_find")()
	var rule model.ClientProductPricing
	err := r.s.conn(ctx).
		Preload("Tiers", tiersInOrder).
		Where("client_id = ? AND product_id = ?", clientID, productID).
		First(&rule).Error
	if err != nil {
		return nil, translate(err, "find pricing rule %s/%s", clientID, productID)
	}
	return &rule, nil
}

func (r pricingRepo) List(ctx context.Context, clientID string) ([]model.ClientProductPricing, error) {
	defer r.s.track("pricing_list")()
	query := r.s.conn(ctx).Preload("Tiers", tiersInOrder).Order("id")
	if clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}
	rules := []model.ClientProductPricing{}
	if err := query.Find(&rules).Error; err != nil {
		return nil, translate(err, "list pricing rules")
	}
	return rules, nil
}

// Upsert removes any rule already held by the pair, then rewrites the rule and its tiers
func (r pricingRepo) Upsert(ctx context.Context, rule *model.ClientProductPricing) error {
	defer r.s.track("pricing_upsert")()
	return r.s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var stale []string
		err := tx.Model(&model.ClientProductPricing{}).
			Where("client_id = ? AND product_id = ? AND id <> ?", rule.ClientID, rule.ProductID, rule.ID).
			Pluck("id", &stale).Error
		if err != nil {
			return translate(err, "find superseded pricing rules")
		}
		if len(stale) > 0 {
			if err := tx.Where("pricing_id IN ?", stale).Delete(&model.PricingTier{}).Error; err != nil {
				return translate(err, "delete superseded tiers")
			}
			if err := tx.Where("id IN ?", stale).Delete(&model.ClientProductPricing{}).Error; err != nil {
				return translate(err, "delete superseded pricing rules")
			}
		}
		if err := tx.Where("pricing_id = ?", rule.ID).Delete(&model.PricingTier{}).Error; err != nil {
			return translate(err, "clear tiers of %s", rule.ID)
		}
		if err := tx.Omit("Tiers").Save(rule).Error; err != nil {
			return translate(err, "save pricing rule %s", rule.ID)
		}
		for i := range rule.Tiers {
			rule.Tiers[i].ID = 0
			rule.Tiers[i].PricingID = rule.ID
			rule.Tiers[i].Position = i
		}
		if len(rule.Tiers) > 0 {
			if err := tx.Create(&rule.Tiers).Error; err != nil {
				return translate(err, "save tiers of %s", rule.ID)
			}
		}
		return nil
	})
}

func (r pricingRepo) Delete(ctx context.Context, id string) error {
	defer r.s.track("pricing_delete")()
	return r.s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("pricing_id = ?", id).Delete(&model.PricingTier{}).Error; err != nil {
			return translate(err, "delete tiers of %s", id)
		}
		return affected(tx.Delete(&model.ClientProductPricing{}, "id = ?", id), "delete pricing rule %s", id)
	})
}

type orderRepo struct{ s *Store }

func itemsInOrder(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}

func (r orderRepo) Get(ctx context.Context, id string) (*model.Order, error) {
	defer r.s.track("order_get")()
	var o model.Order
	if err := r.s.conn(ctx).Preload("Items", itemsInOrder).First(&o, "id = ?", id).Error; err != nil {
		return nil, translate(err, "get order %s", id)
	}
	return &o, nil
}

func (r orderRepo) List(ctx context.Context, filter repository.OrderFilter) ([]model.Order, error) {
	defer r.s.track("order_list")()
	query := r.s.conn(ctx).Preload("Items", itemsInOrder).Order("created_at DESC, id DESC")
	if filter.ClientID != "" {
		query = query.Where("client_id = ?", filter.ClientID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.DeliveryType != "" {
		query = query.Where("delivery_type = ?", filter.DeliveryType)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(order_number) LIKE ? OR LOWER(client_name) LIKE ?", like, like)
	}
	orders := []model.Order{}
	if err := query.Find(&orders).Error; err != nil {
		return nil, translate(err, "list orders")
	}
	return orders, nil
}

// Upsert writes the order row first and then replaces its items, so the items
// never reach the database ahead of the order they reference
func (r orderRepo) Upsert(ctx context.Context, o *model.Order) error {
	defer r.s.track("order_upsert")()
	return r.s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&model.Order{}).Where("id = ?", o.ID).Count(&existing).Error; err != nil {
			return translate(err, "look up order %s", o.ID)
		}
		if existing == 0 {
			if err := tx.Omit(clause.Associations).Create(o).Error; err != nil {
				return translate(err, "create order %s", o.ID)
			}
		} else {
			if err := tx.Omit(clause.Associations).Save(o).Error; err != nil {
				return translate(err, "save order %s", o.ID)
			}
			if err := tx.Where("order_id = ?", o.ID).Delete(&model.OrderItem{}).Error; err != nil {
				return translate(err, "clear items of order %s", o.ID)
			}
		}

		for i := range o.Items {
			o.Items[i].ID = 0
			o.Items[i].OrderID = o.ID
			o.Items[i].Position = i
		}
		if len(o.Items) > 0 {
			if err := tx.Omit(clause.Associations).Create(&o.Items).Error; err != nil {
				return translate(err, "save items of order %s", o.ID)
			}
		}
		return nil
	})
}

func (r orderRepo) Delete(ctx context.Context, id string) error {
	defer r.s.track("order_delete")()
	return r.s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&model.OrderItem{}).Error; err != nil {
			return translate(err, "delete items of order %s", id)
		}
		return affected(tx.Delete(&model.Order{}, "id = ?", id), "delete order %s", id)
	})
}

type driverRepo struct{ s *Store }

func (r driverRepo) Get(ctx context.Context, id string) (*model.Driver, error) {
	defer r.s.track("driver_get")()
	var d model.Driver
	if err := r.s.conn(ctx).First(&d, "id = ?", id).Error; err != nil {
		return nil, translate(err, "get driver %s", id)
	}
	return &d, nil
}

func (r driverRepo) List(ctx context.Context) ([]model.Driver, error) {
	defer r.s.track("driver_list")()
	drivers := []model.Driver{}
	if err := r.s.conn(ctx).Order("id").Find(&drivers).Error; err != nil {
		return nil, translate(err, "list drivers")
	}
	return drivers, nil
}

func (r driverRepo) Upsert(ctx context.Context, d *model.Driver) error {
	defer r.s.track("driver_upsert")()
	return translate(r.s.conn(ctx).Save(d).Error, "save driver %s", d.ID)
}

func (r driverRepo) Delete(ctx context.Context, id string) error {
	defer r.s.track("driver_delete")()
	return affected(r.s.conn(ctx).Delete(&model.Driver{}, "id = ?", id), "delete driver %s", id)
}

type paymentRepo struct{ s *Store }

func (r paymentRepo) Get(ctx context.Context, id string) (*model.Payment, error) {
	defer r.s.track("payment_get")()
	var p model.Payment
	if err := r.s.conn(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err, "get payment %s", id)
	}
	return &p, nil
}

func (r paymentRepo) List(ctx context.Context, clientID string) ([]model.Payment, error) {
	defer r.s.track("payment_list")()
	query := r.s.conn(ctx).Order("date DESC, id DESC")
	if clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}
	payments := []model.Payment{}
	if err := query.Find(&payments).Error; err != nil {
		return nil, translate(err, "list payments")
	}
	return payments, nil
}

func (r paymentRepo) Upsert(ctx context.Context, p *model.Payment) error {
	defer r.s.track("payment_upsert")()
	return translate(r.s.conn(ctx).Save(p).Error, "save payment %s", p.ID)
}

func (r paymentRepo) Delete(ctx context.Context, id string) error {
	defer r.s.track("payment_delete")()
	return affected(r.s.conn(ctx).Delete(&model.Payment{}, "id = ?", id), "delete payment %s", id)
}

type inventoryRepo struct{ s *Store }

func (r inventoryRepo) Append(ctx context.Context, m *model.InventoryMovement) error {
	defer r.s.track("movement_append")()
	return translate(r.s.conn(ctx).Create(m).Error, "append movement %s", m.ID)
}

func (r inventoryRepo) List(ctx context.Context, productID string) ([]model.InventoryMovement, error) {
	defer r.s.track("movement_list")()
	query := r.s.conn(ctx).Order("date DESC, created_at DESC")
	if productID != "" {
		query = query.Where("product_id = ?", productID)
	}
	movements := []model.InventoryMovement{}
	if err := query.Find(&movements).Error; err != nil {
		return nil, translate(err, "list movements")
	}
	return movements, nil
}

type auditRepo struct{ s *Store }

func (r auditRepo) Append(ctx context.Context, entry *model.AuditLog) error {
	defer r.s.track("audit_append")()
	return translate(r.s.conn(ctx).Create(entry).Error, "append audit entry %s", entry.ID)
}

func (r auditRepo) List(ctx context.Context, limit int) ([]model.AuditLog, error) {
	defer r.s.track("audit_list")()
	query := r.s.conn(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	entries := []model.AuditLog{}
	if err := query.Find(&entries).Error; err != nil {
		return nil, translate(err, "list audit entries")
	}
	return entries, nil
}

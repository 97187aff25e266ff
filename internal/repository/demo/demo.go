// Package demo holds the sample dataset loaded in demo mode.
package demo

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mubark555/pastry-opus-biz/internal/model"
	"github.com/mubark555/pastry-opus-biz/internal/repository"
	"github.com/shopspring/decimal"
)

func money(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func price(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func upTo(n int) *int { return &n }

func at(s string) time.Time {
	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

// Products returns the sample catalog
func Products() []model.Product {
	return []model.Product{
		{ID: "p1", Name: "Premium Baklava Tray", Category: "Baklava", UnitType: model.UnitTray, BasePrice: money(120), CostPrice: money(65), PreparationTime: 90, ShelfLife: 14, MinOrderQuantity: 2, IsActive: true, Stock: 45},
		{ID: "p2", Name: "Kunafa Classic", Category: "Kunafa", UnitType: model.UnitTray, BasePrice: money(95), CostPrice: money(48), PreparationTime: 60, ShelfLife: 3, MinOrderQuantity: 3, IsActive: true, Stock: 30},
		{ID: "p3", Name: "Maamoul Date Box", Category: "Maamoul", UnitType: model.UnitCarton, BasePrice: money(80), CostPrice: money(40), PreparationTime: 120, ShelfLife: 30, MinOrderQuantity: 5, IsActive: true, Stock: 60},
		{ID: "p4", Name: "Basbousa Tray", Category: "Basbousa", UnitType: model.UnitTray, BasePrice: money(70), CostPrice: money(32), PreparationTime: 45, ShelfLife: 5, MinOrderQuantity: 3, IsActive: true, Stock: 25},
		{ID: "p5", Name: "Mixed Sweets Carton", Category: "Assorted", UnitType: model.UnitCarton, BasePrice: money(200), CostPrice: money(110), PreparationTime: 150, ShelfLife: 10, MinOrderQuantity: 1, IsActive: true, Stock: 15},
		{ID: "p6", Name: "Halawet El Jibn", Category: "Specialty", UnitType: model.UnitTray, BasePrice: money(110), CostPrice: money(55), PreparationTime: 75, ShelfLife: 4, MinOrderQuantity: 2, IsActive: true, Stock: 20},
		{ID: "p7", Name: "Turkish Delight Box", Category: "Turkish Delight", UnitType: model.UnitCarton, BasePrice: money(60), CostPrice: money(28), PreparationTime: 180, ShelfLife: 60, MinOrderQuantity: 10, IsActive: true, Stock: 80},
		{ID: "p8", Name: "Pistachio Rolls", Category: "Baklava", UnitType: model.UnitPiece, BasePrice: money(8), CostPrice: money(4), PreparationTime: 90, ShelfLife: 14, MinOrderQuantity: 20, IsActive: false, Stock: 0},
	}
}

// Clients returns the sample accounts; c5 is suspended
func Clients() []model.Client {
	return []model.Client{
		{ID: "c1", CompanyName: "Grand Palace Hotel", CommercialRegNumber: "CR-2024-001", ContactPerson: "Ahmed Al-Rashid", Phone: "+966 50 123 4567", Email: "purchasing@grandpalace.com", CreditLimit: money(50000), PaymentTerms: model.Terms30, AccountStatus: model.AccountActive, Notes: "Premium client, weekly orders", OutstandingBalance: money(12500)},
		{ID: "c2", CompanyName: "Café Arabica Chain", CommercialRegNumber: "CR-2024-002", ContactPerson: "Sara Hassan", Phone: "+966 55 234 5678", Email: "orders@cafearabica.com", CreditLimit: money(30000), PaymentTerms: model.Terms14, AccountStatus: model.AccountActive, Notes: "12 branches, bulk orders", OutstandingBalance: money(28500)},
		{ID: "c3", CompanyName: "Royal Events Co.", CommercialRegNumber: "CR-2024-003", ContactPerson: "Khalid Mohammed", Phone: "+966 54 345 6789", Email: "catering@royalevents.com", CreditLimit: money(100000), PaymentTerms: model.Terms30, AccountStatus: model.AccountActive, Notes: "Event-based, large orders", OutstandingBalance: money(45000)},
		{ID: "c4", CompanyName: "Desert Rose Restaurant", CommercialRegNumber: "CR-2024-004", ContactPerson: "Fatima Al-Zahrani", Phone: "+966 56 456 7890", Email: "kitchen@desertrose.com", CreditLimit: money(15000), PaymentTerms: model.Terms7, AccountStatus: model.AccountActive, Notes: "Small regular orders", OutstandingBalance: money(14800)},
		{ID: "c5", CompanyName: "Oasis Catering", CommercialRegNumber: "CR-2024-005", ContactPerson: "Omar Bakri", Phone: "+966 53 567 8901", Email: "info@oasiscatering.com", CreditLimit: money(25000), PaymentTerms: model.Terms14, AccountStatus: model.AccountSuspended, Notes: "Account suspended - overdue payments", OutstandingBalance: money(26000)},
	}
}

// PricingRules returns the sample contractual prices
func PricingRules() []model.ClientProductPricing {
	return []model.ClientProductPricing{
		{ID: "cp1", ClientID: "c1", ProductID: "p1", Tiers: []model.PricingTier{
			{MinQty: 1, MaxQty: upTo(10), Price: money(115)},
			{MinQty: 11, MaxQty: upTo(30), Price: money(108)},
			{MinQty: 31, Price: money(100)},
		}},
		{ID: "cp2", ClientID: "c1", ProductID: "p2", FixedPrice: price(88)},
		{ID: "cp3", ClientID: "c2", ProductID: "p1", FixedPrice: price(110)},
		{ID: "cp4", ClientID: "c2", ProductID: "p3", Tiers: []model.PricingTier{
			{MinQty: 1, MaxQty: upTo(20), Price: money(75)},
			{MinQty: 21, MaxQty: upTo(50), Price: money(70)},
			{MinQty: 51, Price: money(65)},
		}},
		{ID: "cp5", ClientID: "c3", ProductID: "p5", FixedPrice: price(180)},
		{ID: "cp6", ClientID: "c3", ProductID: "p1", Tiers: []model.PricingTier{
			{MinQty: 1, MaxQty: upTo(20), Price: money(112)},
			{MinQty: 21, Price: money(102)},
		}},
	}
}

func item(productID, name string, qty int, unit int64) model.OrderItem {
	return model.OrderItem{
		ProductID:   productID,
		ProductName: name,
		Quantity:    qty,
		UnitPrice:   money(unit),
		Total:       money(unit * int64(qty)),
	}
}

// Orders returns sample orders spread across the lifecycle
func Orders() []model.Order {
	d2 := "d2"
	return []model.Order{
		{ID: "o1", OrderNumber: "ORD-2024-0001", ClientID: "c1", ClientName: "Grand Palace Hotel", Items: []model.OrderItem{item("p1", "Premium Baklava Tray", 15, 108), item("p2", "Kunafa Classic", 10, 88)}, DeliveryType: model.DeliveryDelivery, RequestedDate: "2026-02-18", RequestedTime: "10:00", Notes: "For hotel breakfast buffet", Status: model.StatusInProduction, TotalAmount: money(2500), CreatedAt: at("2026-02-17T14:30:00")},
		{ID: "o2", OrderNumber: "ORD-2024-0002", ClientID: "c2", ClientName: "Café Arabica Chain", Items: []model.OrderItem{item("p3", "Maamoul Date Box", 40, 70)}, DeliveryType: model.DeliveryDelivery, RequestedDate: "2026-02-18", RequestedTime: "08:00", Notes: "Distribute to 12 branches", Status: model.StatusReady, TotalAmount: money(2800), CreatedAt: at("2026-02-17T09:00:00")},
		{ID: "o3", OrderNumber: "ORD-2024-0003", ClientID: "c3", ClientName: "Royal Events Co.", Items: []model.OrderItem{item("p5", "Mixed Sweets Carton", 25, 180), item("p1", "Premium Baklava Tray", 30, 102)}, DeliveryType: model.DeliveryDelivery, RequestedDate: "2026-02-19", RequestedTime: "16:00", Notes: "Wedding reception - VIP", Status: model.StatusApproved, TotalAmount: money(7560), CreatedAt: at("2026-02-17T11:00:00")},
		{ID: "o4", OrderNumber: "ORD-2024-0004", ClientID: "c4", ClientName: "Desert Rose Restaurant", Items: []model.OrderItem{item("p4", "Basbousa Tray", 5, 70), item("p6", "Halawet El Jibn", 3, 110)}, DeliveryType: model.DeliveryPickup, RequestedDate: "2026-02-18", RequestedTime: "14:00", Status: model.StatusNew, TotalAmount: money(680), CreatedAt: at("2026-02-18T07:00:00")},
		{ID: "o5", OrderNumber: "ORD-2024-0005", ClientID: "c1", ClientName: "Grand Palace Hotel", Items: []model.OrderItem{item("p7", "Turkish Delight Box", 20, 55)}, DeliveryType: model.DeliveryDelivery, RequestedDate: "2026-02-18", RequestedTime: "11:00", Status: model.StatusOutForDelivery, TotalAmount: money(1100), DriverID: &d2, CreatedAt: at("2026-02-17T16:00:00")},
		{ID: "o6", OrderNumber: "ORD-2024-0006", ClientID: "c2", ClientName: "Café Arabica Chain", Items: []model.OrderItem{item("p1", "Premium Baklava Tray", 8, 110)}, DeliveryType: model.DeliveryPickup, RequestedDate: "2026-02-17", RequestedTime: "15:00", Status: model.StatusDelivered, TotalAmount: money(880), CreatedAt: at("2026-02-16T10:00:00")},
		{ID: "o7", OrderNumber: "ORD-2024-0007", ClientID: "c3", ClientName: "Royal Events Co.", Items: []model.OrderItem{item("p2", "Kunafa Classic", 50, 90)}, DeliveryType: model.DeliveryDelivery, RequestedDate: "2026-02-18", RequestedTime: "09:00", Notes: "Corporate event", Status: model.StatusPackaging, TotalAmount: money(4500), CreatedAt: at("2026-02-17T08:00:00")},
		{ID: "o8", OrderNumber: "ORD-2024-0008", ClientID: "c4", ClientName: "Desert Rose Restaurant", Items: []model.OrderItem{item("p4", "Basbousa Tray", 3, 70)}, DeliveryType: model.DeliveryPickup, RequestedDate: "2026-02-17", RequestedTime: "12:00", Status: model.StatusDelivered, TotalAmount: money(210), CreatedAt: at("2026-02-16T14:00:00")},
	}
}

// Drivers returns the sample fleet; d2 is out on o5
func Drivers() []model.Driver {
	return []model.Driver{
		{ID: "d1", Name: "Mohammed Ali", Phone: "+966 50 111 2222", IsAvailable: true},
		{ID: "d2", Name: "Youssef Karim", Phone: "+966 55 333 4444", IsAvailable: false},
		{ID: "d3", Name: "Hassan Ibrahim", Phone: "+966 54 555 6666", IsAvailable: true},
	}
}

// Payments returns sample payments
func Payments() []model.Payment {
	return []model.Payment{
		{ID: "pay1", ClientID: "c1", ClientName: "Grand Palace Hotel", Amount: money(5000), Method: model.PaymentTransfer, ReferenceNumber: "TRF-20240215-001", Notes: "Partial payment", Date: "2026-02-15"},
		{ID: "pay2", ClientID: "c2", ClientName: "Café Arabica Chain", Amount: money(3000), Method: model.PaymentCheque, ReferenceNumber: "CHQ-7892", Date: "2026-02-10"},
		{ID: "pay3", ClientID: "c3", ClientName: "Royal Events Co.", Amount: money(15000), Method: model.PaymentTransfer, ReferenceNumber: "TRF-20240212-003", Notes: "Wedding advance", Date: "2026-02-12"},
		{ID: "pay4", ClientID: "c4", ClientName: "Desert Rose Restaurant", Amount: money(1200), Method: model.PaymentCash, ReferenceNumber: "CASH-0044", Date: "2026-02-14"},
	}
}

// Movements returns the sample stock ledger, oldest first
func Movements() []model.InventoryMovement {
	return []model.InventoryMovement{
		{ID: "im5", ProductID: "p7", ProductName: "Turkish Delight Box", Direction: model.MovementIn, Quantity: 50, Reason: "Production batch", Date: "2026-02-16", StockAfter: 80},
		{ID: "im1", ProductID: "p1", ProductName: "Premium Baklava Tray", Direction: model.MovementIn, Quantity: 30, Reason: "Production batch", Date: "2026-02-17", StockAfter: 60},
		{ID: "im3", ProductID: "p2", ProductName: "Kunafa Classic", Direction: model.MovementIn, Quantity: 20, Reason: "Production batch", Date: "2026-02-17", StockAfter: 30},
		{ID: "im2", ProductID: "p1", ProductName: "Premium Baklava Tray", Direction: model.MovementOut, Quantity: 15, Reason: "Order ORD-2024-0001", Date: "2026-02-18", StockAfter: 45},
		{ID: "im4", ProductID: "p3", ProductName: "Maamoul Date Box", Direction: model.MovementOut, Quantity: 40, Reason: "Order ORD-2024-0002", Date: "2026-02-18", StockAfter: 60},
	}
}

// Load writes the whole dataset into s in one transaction. Existing rows with
// the same ids are overwritten.
func Load(ctx context.Context, s repository.Store) error {
	return s.Atomic(ctx, func(tx repository.Store) error {
		for _, p := range Products() {
			p := p
			if err := tx.Products().Upsert(ctx, &p); err != nil {
				return errors.Wrapf(err, "seed product %s", p.ID)
			}
		}
		for _, c := range Clients() {
			c := c
			if err := tx.Clients().Upsert(ctx, &c); err != nil {
				return errors.Wrapf(err, "seed client %s", c.ID)
			}
		}
		for _, d := range Drivers() {
			d := d
			if err := tx.Drivers().Upsert(ctx, &d); err != nil {
				return errors.Wrapf(err, "seed driver %s", d.ID)
			}
		}
		for _, r := range PricingRules() {
			r := r
			if err := tx.Pricing().Upsert(ctx, &r); err != nil {
				return errors.Wrapf(err, "seed pricing rule %s", r.ID)
			}
		}
		for _, o := range Orders() {
			o := o
			if err := tx.Orders().Upsert(ctx, &o); err != nil {
				return errors.Wrapf(err, "seed order %s", o.ID)
			}
		}
		for _, p := range Payments() {
			p := p
			if err := tx.Payments().Upsert(ctx, &p); err != nil {
				return errors.Wrapf(err, "seed payment %s", p.ID)
			}
		}
		existing, err := tx.Inventory().List(ctx, "")
		if err != nil {
			return errors.Wrap(err, "list seeded movements")
		}
		if len(existing) > 0 {
			// ledger is append-only, never seed it twice
			return nil
		}
		for _, m := range Movements() {
			m := m
			if err := tx.Inventory().Append(ctx, &m); err != nil {
				return errors.Wrapf(err, "seed movement %s", m.ID)
			}
		}
		return nil
	})
}

package gormstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/glebarez/sqlite"
	"github.com/mubark555/pastry-opus-biz/internal/model"
	"github.com/mubark555/pastry-opus-biz/internal/repository"
	"github.com/mubark555/pastry-opus-biz/internal/repository/demo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestStore opens a file-backed SQLite database with foreign keys enforced,
// so constraint ordering mistakes fail here the way they would on Postgres.
func newTestStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "store.db") + "?_pragma=foreign_keys(1)"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, conn.AutoMigrate(model.AllModels()...))
	return New(conn, nil), conn
}

func seedCatalog(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.Products().Upsert(ctx, &model.Product{
		ID: "p1", Name: "Premium Baklava Tray", UnitType: model.UnitTray,
		BasePrice: decimal.NewFromInt(120), CostPrice: decimal.NewFromInt(65),
		MinOrderQuantity: 2, IsActive: true, Stock: 45,
	}))
	require.NoError(t, s.Products().Upsert(ctx, &model.Product{
		ID: "p2", Name: "Kunafa Classic", UnitType: model.UnitTray,
		BasePrice: decimal.NewFromInt(95), CostPrice: decimal.NewFromInt(48),
		MinOrderQuantity: 3, IsActive: true, Stock: 30,
	}))
	require.NoError(t, s.Clients().Upsert(ctx, &model.Client{
		ID: "c1", CompanyName: "Grand Palace Hotel", CreditLimit: decimal.NewFromInt(50000),
		PaymentTerms: model.Terms30, AccountStatus: model.AccountActive,
		OutstandingBalance: decimal.NewFromInt(12500),
	}))
	require.NoError(t, s.Drivers().Upsert(ctx, &model.Driver{ID: "d1", Name: "Mohammed Ali", IsAvailable: true}))
}

func newOrder(id string) *model.Order {
	return &model.Order{
		ID:          id,
		OrderNumber: "ORD-20260218-" + id,
		ClientID:    "c1",
		ClientName:  "Grand Palace Hotel",
		Items: []model.OrderItem{
			{ProductID: "p1", ProductName: "Premium Baklava Tray", Quantity: 15, UnitPrice: decimal.NewFromInt(108), Total: decimal.NewFromInt(1620)},
			{ProductID: "p2", ProductName: "Kunafa Classic", Quantity: 4, UnitPrice: decimal.NewFromInt(95), Total: decimal.NewFromInt(380)},
		},
		DeliveryType:  model.DeliveryDelivery,
		RequestedDate: "2026-02-19",
		Status:        model.StatusNew,
		TotalAmount:   decimal.NewFromInt(2000),
		CreatedAt:     time.Date(2026, 2, 18, 9, 0, 0, 0, time.UTC),
	}
}

func countRows(t *testing.T, conn *gorm.DB, m interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, conn.Model(m).Where(query, args...).Count(&n).Error)
	return n
}

func TestOrderUpsertInsertsNewOrderWithItems(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	seedCatalog(t, s)

	require.NoError(t, s.Orders().Upsert(ctx, newOrder("o1")))

	got, err := s.Orders().Get(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusNew, got.Status)
	assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(2000)), got.TotalAmount.String())
	require.Len(t, got.Items, 2)
	assert.Equal(t, "p1", got.Items[0].ProductID)
	assert.True(t, got.Items[0].UnitPrice.Equal(decimal.NewFromInt(108)))
	assert.Equal(t, "p2", got.Items[1].ProductID)
}

func TestOrderUpsertUpdatesExistingOrder(t *testing.T) {
	ctx := context.Background()
	s, conn := newTestStore(t)
	seedCatalog(t, s)
	require.NoError(t, s.Orders().Upsert(ctx, newOrder("o1")))

	o, err := s.Orders().Get(ctx, "o1")
	require.NoError(t, err)
	driver := "d1"
	o.Status = model.StatusReady
	o.DriverID = &driver
	require.NoError(t, s.Orders().Upsert(ctx, o))

	got, err := s.Orders().Get(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusReady, got.Status)
	require.NotNil(t, got.DriverID)
	assert.Equal(t, "d1", *got.DriverID)
	require.Len(t, got.Items, 2)
	assert.Equal(t, int64(2), countRows(t, conn, &model.OrderItem{}, "order_id = ?", "o1"))
}

func TestOrderUpsertRejectsUnknownClient(t *testing.T) {
	ctx := context.Background()
	s, conn := newTestStore(t)
	seedCatalog(t, s)

	o := newOrder("o1")
	o.ClientID = "c404"
	assert.Error(t, s.Orders().Upsert(ctx, o))
	assert.Equal(t, int64(0), countRows(t, conn, &model.OrderItem{}, "order_id = ?", "o1"))
}

func TestOrderListFilters(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	seedCatalog(t, s)
	require.NoError(t, s.Orders().Upsert(ctx, newOrder("o1")))
	second := newOrder("o2")
	second.Status = model.StatusApproved
	second.DeliveryType = model.DeliveryPickup
	second.CreatedAt = second.CreatedAt.Add(time.Hour)
	require.NoError(t, s.Orders().Upsert(ctx, second))

	all, err := s.Orders().List(ctx, repository.OrderFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "o2", all[0].ID)
	assert.Len(t, all[0].Items, 2)

	approved, err := s.Orders().List(ctx, repository.OrderFilter{Statuses: []model.OrderStatus{model.StatusApproved}})
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, "o2", approved[0].ID)

	byName, err := s.Orders().List(ctx, repository.OrderFilter{Search: "palace", DeliveryType: model.DeliveryDelivery})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "o1", byName[0].ID)
}

func TestPricingUpsertReplacesPairAndKeepsTierOrder(t *testing.T) {
	ctx := context.Background()
	s, conn := newTestStore(t)
	seedCatalog(t, s)

	ten, thirty := 10, 30
	tiered := &model.ClientProductPricing{ID: "r1", ClientID: "c1", ProductID: "p1", Tiers: []model.PricingTier{
		{MinQty: 1, MaxQty: &ten, Price: decimal.NewFromInt(115)},
		{MinQty: 11, MaxQty: &thirty, Price: decimal.NewFromInt(108)},
		{MinQty: 31, Price: decimal.NewFromInt(100)},
	}}
	require.NoError(t, s.Pricing().Upsert(ctx, tiered))

	got, err := s.Pricing().Find(ctx, "c1", "p1")
	require.NoError(t, err)
	require.Len(t, got.Tiers, 3)
	assert.Equal(t, 1, got.Tiers[0].MinQty)
	assert.Equal(t, 11, got.Tiers[1].MinQty)
	assert.Nil(t, got.Tiers[2].MaxQty)

	fixed := decimal.NewFromInt(99)
	require.NoError(t, s.Pricing().Upsert(ctx, &model.ClientProductPricing{ID: "r2", ClientID: "c1", ProductID: "p1", FixedPrice: &fixed}))

	rules, err := s.Pricing().List(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "r2", rules[0].ID)
	require.NotNil(t, rules[0].FixedPrice)
	assert.True(t, rules[0].FixedPrice.Equal(fixed))

	_, err = s.Pricing().Get(ctx, "r1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Equal(t, int64(0), countRows(t, conn, &model.PricingTier{}, "pricing_id = ?", "r1"))
}

func TestClientDeleteDropsPricingRules(t *testing.T) {
	ctx := context.Background()
	s, conn := newTestStore(t)
	seedCatalog(t, s)

	open := &model.ClientProductPricing{ID: "r1", ClientID: "c1", ProductID: "p2", Tiers: []model.PricingTier{
		{MinQty: 1, Price: decimal.NewFromInt(90)},
	}}
	require.NoError(t, s.Pricing().Upsert(ctx, open))

	require.NoError(t, s.Clients().Delete(ctx, "c1"))

	_, err := s.Clients().Get(ctx, "c1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	rules, err := s.Pricing().List(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, rules)
	assert.Equal(t, int64(0), countRows(t, conn, &model.PricingTier{}, "pricing_id = ?", "r1"))

	assert.ErrorIs(t, s.Clients().Delete(ctx, "c1"), repository.ErrNotFound)
}

func TestAtomicRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	seedCatalog(t, s)

	boom := errors.New("boom")
	err := s.Atomic(ctx, func(tx repository.Store) error {
		c, err := tx.Clients().GetForUpdate(ctx, "c1")
		require.NoError(t, err)
		c.OutstandingBalance = c.OutstandingBalance.Add(decimal.NewFromInt(2000))
		require.NoError(t, tx.Clients().Upsert(ctx, c))
		require.NoError(t, tx.Orders().Upsert(ctx, newOrder("o1")))
		require.NoError(t, tx.Audit().Append(ctx, &model.AuditLog{ID: "a1", Action: "create", Entity: "orders", RecordID: "o1"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	c, err := s.Clients().Get(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, c.OutstandingBalance.Equal(decimal.NewFromInt(12500)), c.OutstandingBalance.String())
	_, err = s.Orders().Get(ctx, "o1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	entries, err := s.Audit().List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAtomicCommits(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	seedCatalog(t, s)

	err := s.Atomic(ctx, func(tx repository.Store) error {
		p, err := tx.Products().GetForUpdate(ctx, "p1")
		if err != nil {
			return err
		}
		p.Stock -= 5
		if err := tx.Products().Upsert(ctx, p); err != nil {
			return err
		}
		return tx.Orders().Upsert(ctx, newOrder("o1"))
	})
	require.NoError(t, err)

	p, err := s.Products().Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 40, p.Stock)
	_, err = s.Orders().Get(ctx, "o1")
	assert.NoError(t, err)
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	_, err := s.Products().Get(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = s.Pricing().Find(ctx, "c1", "p1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, s.Orders().Delete(ctx, "missing"), repository.ErrNotFound)
	assert.ErrorIs(t, s.Drivers().Delete(ctx, "missing"), repository.ErrNotFound)
}

func TestDemoLoad(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	require.NoError(t, demo.Load(ctx, s))
	require.NoError(t, demo.Load(ctx, s))

	orders, err := s.Orders().List(ctx, repository.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, orders, len(demo.Orders()))
	for _, o := range orders {
		assert.NotEmpty(t, o.Items, o.ID)
	}

	cp1, err := s.Pricing().Find(ctx, "c1", "p1")
	require.NoError(t, err)
	require.Len(t, cp1.Tiers, 3)
	assert.True(t, cp1.Tiers[1].Price.Equal(decimal.NewFromInt(108)))

	movements, err := s.Inventory().List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, movements, len(demo.Movements()))
}

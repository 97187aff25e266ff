package inventory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mubark555/pastry-opus-biz/internal/access"
	"github.com/mubark555/pastry-opus-biz/internal/apperror"
	"github.com/mubark555/pastry-opus-biz/internal/model"
	"github.com/mubark555/pastry-opus-biz/internal/repository/demo"
	"github.com/mubark555/pastry-opus-biz/internal/repository/memory"
	appmetrics "github.com/mubark555/pastry-opus-biz/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var kitchen = access.Actor{UserID: "u-kitchen", Role: access.RoleKitchen}

func newService(t *testing.T) (*Service, *memory.Store, *appmetrics.Metrics) {
	t.Helper()
	store := memory.New()
	require.NoError(t, demo.Load(context.Background(), store))
	metrics := appmetrics.NewMetrics("test", prometheus.NewRegistry())
	svc := NewService(store, metrics, 20)
	svc.now = func() time.Time { return time.Date(2026, 2, 18, 12, 0, 0, 0, time.UTC) }
	return svc, store, metrics
}

func TestRecordMovementIn(t *testing.T) {
	svc, store, metrics := newService(t)
	ctx := context.Background()

	mv, err := svc.RecordMovement(ctx, kitchen, MovementRequest{ProductID: "p5", Direction: model.MovementIn, Quantity: 10, Reason: "Production batch"})
	require.NoError(t, err)
	assert.Equal(t, 25, mv.StockAfter)
	assert.Equal(t, "Mixed Sweets Carton", mv.ProductName)
	assert.Equal(t, "2026-02-18", mv.Date)

	p, err := store.Products().Get(ctx, "p5")
	require.NoError(t, err)
	assert.Equal(t, 25, p.Stock)

	ledger, err := svc.ListMovements(ctx, kitchen, "p5")
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, mv.ID, ledger[0].ID)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.InventoryMovements.WithLabelValues("in")))
	assert.Equal(t, 25.0, testutil.ToFloat64(metrics.ProductStockGauge.WithLabelValues("p5")))

	entries, err := store.Audit().List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, mv.ID, entries[0].RecordID)
}

func TestRecordMovementOutCannotGoNegative(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()

	mv, err := svc.RecordMovement(ctx, kitchen, MovementRequest{ProductID: "p5", Direction: model.MovementOut, Quantity: 15})
	require.NoError(t, err)
	assert.Equal(t, 0, mv.StockAfter)

	_, err = svc.RecordMovement(ctx, kitchen, MovementRequest{ProductID: "p5", Direction: model.MovementOut, Quantity: 1})
	assert.ErrorIs(t, err, apperror.ErrInsufficientStock)

	p, err := store.Products().Get(ctx, "p5")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)

	ledger, err := svc.ListMovements(ctx, kitchen, "p5")
	require.NoError(t, err)
	assert.Len(t, ledger, 1)
}

func TestRecordMovementValidation(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  MovementRequest
	}{
		{"no product", MovementRequest{Direction: model.MovementIn, Quantity: 1}},
		{"bad direction", MovementRequest{ProductID: "p1", Direction: "sideways", Quantity: 1}},
		{"zero quantity", MovementRequest{ProductID: "p1", Direction: model.MovementIn}},
		{"bad date", MovementRequest{ProductID: "p1", Direction: model.MovementIn, Quantity: 1, Date: "18/02/2026"}},
		{"quantity above stock limit", MovementRequest{ProductID: "p1", Direction: model.MovementIn, Quantity: model.MaxStock + 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordMovement(ctx, kitchen, tt.req)
			assert.True(t, apperror.IsValidation(err), "got %v", err)
		})
	}

	_, err := svc.RecordMovement(ctx, kitchen, MovementRequest{ProductID: "p404", Direction: model.MovementIn, Quantity: 1})
	assert.ErrorIs(t, err, apperror.ErrProductNotFound)

	_, err = svc.RecordMovement(ctx, access.Actor{Role: access.RoleFinance}, MovementRequest{ProductID: "p1", Direction: model.MovementIn, Quantity: 1})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestRecordMovementInStaysWithinStockLimit(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()

	_, err := svc.RecordMovement(ctx, kitchen, MovementRequest{ProductID: "p5", Direction: model.MovementIn, Quantity: model.MaxStock - 14})
	assert.True(t, apperror.IsValidation(err), "got %v", err)

	p, err := store.Products().Get(ctx, "p5")
	require.NoError(t, err)
	assert.Equal(t, 15, p.Stock)

	mv, err := svc.RecordMovement(ctx, kitchen, MovementRequest{ProductID: "p5", Direction: model.MovementIn, Quantity: model.MaxStock - 15})
	require.NoError(t, err)
	assert.Equal(t, model.MaxStock, mv.StockAfter)
}

func TestConcurrentOutMovementsNeverOversell(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecordMovement(ctx, kitchen, MovementRequest{ProductID: "p5", Direction: model.MovementOut, Quantity: 4})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// 15 in stock covers three movements of 4
	assert.Equal(t, 3, succeeded)
	p, err := store.Products().Get(ctx, "p5")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Stock)
}

func TestListMovementsAll(t *testing.T) {
	svc, _, _ := newService(t)

	ledger, err := svc.ListMovements(context.Background(), kitchen, "")
	require.NoError(t, err)
	require.Len(t, ledger, 5)
	assert.Equal(t, "im4", ledger[0].ID)

	_, err = svc.ListMovements(context.Background(), access.Actor{Role: access.RoleClient, ClientID: "c1"}, "")
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestLowStock(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	low, err := svc.LowStock(ctx, kitchen, 0)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "p5", low[0].ID)

	low, err = svc.LowStock(ctx, kitchen, 30)
	require.NoError(t, err)
	ids := []string{}
	for _, p := range low {
		ids = append(ids, p.ID)
	}
	// p8 is inactive and stays out
	assert.ElementsMatch(t, []string{"p4", "p5", "p6"}, ids)
}

package demo

import (
	"context"
	"testing"

	"github.com/mubark555/pastry-opus-biz/internal/model"
	"github.com/mubark555/pastry-opus-biz/internal/repository"
	"github.com/mubark555/pastry-opus-biz/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	require.NoError(t, Load(ctx, s))

	products, err := s.Products().List(ctx, repository.ProductFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, products, 7)

	c5, err := s.Clients().Get(ctx, "c5")
	require.NoError(t, err)
	assert.True(t, c5.Suspended())

	cp1, err := s.Pricing().Find(ctx, "c1", "p1")
	require.NoError(t, err)
	assert.Equal(t, model.PricingTiered, cp1.Kind())
	require.Len(t, cp1.Tiers, 3)
	assert.Nil(t, cp1.Tiers[2].MaxQty)

	movements, err := s.Inventory().List(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, "im2", movements[0].ID)
}

func TestLoadTwiceKeepsLedger(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	require.NoError(t, Load(ctx, s))
	require.NoError(t, Load(ctx, s))

	movements, err := s.Inventory().List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, movements, len(Movements()))
}

func TestOrderTotalsMatchItems(t *testing.T) {
	for _, o := range Orders() {
		sum := decimal.Zero
		for _, it := range o.Items {
			assert.True(t, it.Total.Equal(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))), o.ID)
			sum = sum.Add(it.Total)
		}
		assert.True(t, sum.Equal(o.TotalAmount), o.ID)
	}
}

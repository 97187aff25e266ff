package app

import (
	"context"
	"testing"

	"github.com/mubark555/pastry-opus-biz/internal/access"
	"github.com/mubark555/pastry-opus-biz/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMemoryStoreSeedsDemo(t *testing.T) {
	cfg := &config.Config{
		Store:     config.StoreConfig{Driver: config.StoreDriverMemory},
		Inventory: config.InventoryConfig{LowStockThreshold: 20},
		Credit:    config.CreditConfig{NearLimitRatio: 0.8},
	}
	ctx := context.Background()

	store, err := OpenStore(ctx, cfg, nil)
	require.NoError(t, err)

	svc := Services(cfg, store, nil)
	clients, err := svc.Catalog.ListClients(ctx, access.System)
	require.NoError(t, err)
	assert.Len(t, clients, 5)

	low, err := svc.Inventory.LowStock(ctx, access.System, 0)
	require.NoError(t, err)
	assert.Len(t, low, 1)
}

func TestOpenStoreRejectsUnknownDriver(t *testing.T) {
	_, err := OpenStore(context.Background(), &config.Config{Store: config.StoreConfig{Driver: "sqlite"}}, nil)
	assert.Error(t, err)
}

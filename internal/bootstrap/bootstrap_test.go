package bootstrap_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erp-backend/internal/bootstrap"
	"erp-backend/internal/config"
	"erp-backend/internal/metrics"
)

func TestOpen_MemoryDriver(t *testing.T) {
	cfg := config.Config{StoreDriver: config.DriverMemory}
	rt, err := bootstrap.Open(context.Background(), cfg, nil, metrics.New())
	require.NoError(t, err)
	defer rt.Close()

	assert.Nil(t, rt.Pool)
	res, err := rt.App.SeedDemoData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Products)

	products, err := rt.App.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products.Products, 2)
}

func TestOpen_UnreachableRedis(t *testing.T) {
	cfg := config.Config{StoreDriver: config.DriverMemory, RedisAddr: "127.0.0.1:1"}
	_, err := bootstrap.Open(context.Background(), cfg, nil, nil)
	assert.Error(t, err)
}

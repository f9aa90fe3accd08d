package db_test

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erp-backend/internal/core"
	"erp-backend/internal/db"
	"erp-backend/internal/lock"
)

func setupTestDB(t *testing.T) (*pgxpool.Pool, *db.Store) {
	t.Helper()
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database; every table is truncated.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.EnsureSchema(ctx, pool))
	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE journal_lines, journal_entries, accounts,
			sales_order_items, sales_orders, purchase_order_items, purchase_orders,
			products, categories, document_sequences CASCADE;
	`)
	require.NoError(t, err)

	return pool, db.NewStore(pool)
}

func TestStore_CatalogRoundTrip(t *testing.T) {
	_, store := setupTestDB(t)
	ctx := context.Background()
	catalog := core.NewCatalogService(store, lock.NewLocal(), nil, nil)

	_, err := catalog.CreateCategory(ctx, "", "Electronics", "")
	require.NoError(t, err)

	p, err := catalog.CreateProduct(ctx, core.ProductInput{
		SKU: "SKU001", Name: "Laptop", CategoryID: "electronics",
		UnitPrice: decimal.NewFromInt(1200), AverageCost: decimal.NewFromInt(800),
		Quantity: 10, ReorderPoint: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, core.StatusInStock, p.Status)

	_, err = catalog.CreateProduct(ctx, core.ProductInput{SKU: "SKU001", Name: "Again", CategoryID: "electronics"})
	assert.ErrorIs(t, err, core.ErrDuplicateKey)

	got, err := catalog.GetProduct(ctx, "SKU001")
	require.NoError(t, err)
	assert.True(t, got.UnitPrice.Equal(decimal.NewFromInt(1200)))
	assert.Nil(t, got.LastPurchasePrice)

	_, err = catalog.GetProduct(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestStore_OrderLifecycle(t *testing.T) {
	_, store := setupTestDB(t)
	ctx := context.Background()
	locker := lock.NewLocal()
	catalog := core.NewCatalogService(store, locker, nil, nil)
	engine := core.NewInventoryEngine(nil, nil)
	orders := core.NewOrderService(store, locker, engine, nil, nil)
	purchases := core.NewPurchaseOrderService(store, locker, engine, nil, nil)

	_, err := catalog.CreateCategory(ctx, "gear", "Gear", "")
	require.NoError(t, err)
	_, err = catalog.CreateProduct(ctx, core.ProductInput{
		SKU: "A", Name: "Widget", CategoryID: "gear",
		UnitPrice: decimal.NewFromInt(10), AverageCost: decimal.NewFromInt(2), Quantity: 4,
	})
	require.NoError(t, err)

	so, err := orders.CreateOrder(ctx, core.SalesOrderInput{
		Customer: "Acme", OrderDate: "2025-05-01",
		Items: []core.SalesItemInput{{SKU: "A", Quantity: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, "SO-0001", so.OrderNumber)
	require.Len(t, so.Items, 1)

	_, err = orders.UpdateOrderStatus(ctx, so.OrderNumber, "Cancelled")
	require.NoError(t, err)
	_, err = orders.DeleteOrder(ctx, so.ID)
	require.NoError(t, err)

	p, err := catalog.GetProduct(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, 4, p.Quantity)

	po, err := purchases.CreatePO(ctx, core.PurchaseOrderInput{
		Supplier: "Supplier", OrderDate: "2025-05-02",
		Items: []core.PurchaseItemInput{{SKU: "A", Quantity: 6, UnitCost: decimal.NewFromInt(5)}},
	})
	require.NoError(t, err)
	_, err = purchases.UpdatePOStatus(ctx, po.PONumber, "Received")
	require.NoError(t, err)

	p, err = catalog.GetProduct(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, 10, p.Quantity)
	assert.Equal(t, "3.8", p.AverageCost.String())
	require.NotNil(t, p.LastPurchasePrice)
	assert.True(t, p.LastPurchasePrice.Equal(decimal.NewFromInt(5)))

	listed, err := purchases.GetPOs(ctx, core.OrderFilter{Status: "Received"})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.True(t, listed[0].StockReceived)
	assert.NotNil(t, listed[0].ReceivedAt)
}

func TestStore_LedgerBalances(t *testing.T) {
	_, store := setupTestDB(t)
	ctx := context.Background()
	ledger := core.NewLedger(store, nil)

	_, err := ledger.CreateAccount(ctx, "1010", "Cash", "Asset")
	require.NoError(t, err)
	_, err = ledger.CreateAccount(ctx, "4010", "Sales Revenue", "Revenue")
	require.NoError(t, err)

	entry, err := ledger.Commit(ctx, core.JournalEntryInput{
		Date: "2025-05-01", Description: "Cash sale",
		Lines: []core.JournalLineInput{
			{AccountCode: "1010", Debit: "150.00"},
			{AccountCode: "4010", Credit: "150.00"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "JE-0001", entry.ID)

	cash, err := ledger.GetAccount(ctx, "1010")
	require.NoError(t, err)
	assert.Equal(t, "150", cash.Balance.String())

	got, err := ledger.GetEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.Len(t, got.Lines, 2)
	assert.Equal(t, "2025-05-01", got.Date)
}

// Each instance owns its own in-process locker, so only the row locks taken
// inside the transaction keep two servers from overselling.
func TestStore_ConcurrentInstancesNeverOversell(t *testing.T) {
	_, store := setupTestDB(t)
	ctx := context.Background()
	engine := core.NewInventoryEngine(nil, nil)
	catalog := core.NewCatalogService(store, lock.NewLocal(), nil, nil)

	_, err := catalog.CreateCategory(ctx, "gear", "Gear", "")
	require.NoError(t, err)
	_, err = catalog.CreateProduct(ctx, core.ProductInput{
		SKU: "A", Name: "Widget", CategoryID: "gear", UnitPrice: decimal.NewFromInt(10), Quantity: 5,
	})
	require.NoError(t, err)

	instances := []core.OrderService{
		core.NewOrderService(store, lock.NewLocal(), engine, nil, nil),
		core.NewOrderService(store, lock.NewLocal(), engine, nil, nil),
	}

	var wg sync.WaitGroup
	results := make(chan error, 12)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func(orders core.OrderService) {
			defer wg.Done()
			_, err := orders.CreateOrder(ctx, core.SalesOrderInput{
				Customer: "Racer", Items: []core.SalesItemInput{{SKU: "A", Quantity: 1}},
			})
			results <- err
		}(instances[i%2])
	}
	wg.Wait()
	close(results)

	ok := 0
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, core.ErrInsufficientStock)
	}
	assert.Equal(t, 5, ok)

	p, err := catalog.GetProduct(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Quantity)
	assert.Equal(t, core.StatusOutOfStock, p.Status)
}

func TestStore_ConcurrentInstancesReceiveOnce(t *testing.T) {
	_, store := setupTestDB(t)
	ctx := context.Background()
	engine := core.NewInventoryEngine(nil, nil)
	catalog := core.NewCatalogService(store, lock.NewLocal(), nil, nil)

	_, err := catalog.CreateCategory(ctx, "gear", "Gear", "")
	require.NoError(t, err)
	_, err = catalog.CreateProduct(ctx, core.ProductInput{
		SKU: "A", Name: "Widget", CategoryID: "gear", UnitPrice: decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	instances := []core.PurchaseOrderService{
		core.NewPurchaseOrderService(store, lock.NewLocal(), engine, nil, nil),
		core.NewPurchaseOrderService(store, lock.NewLocal(), engine, nil, nil),
	}
	po, err := instances[0].CreatePO(ctx, core.PurchaseOrderInput{
		Supplier: "Supplier", Status: core.PurchaseOrdered,
		Items: []core.PurchaseItemInput{{SKU: "A", Quantity: 6, UnitCost: decimal.NewFromInt(5)}},
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func(purchases core.PurchaseOrderService) {
			defer wg.Done()
			_, err := purchases.UpdatePOStatus(ctx, po.PONumber, "Received")
			assert.NoError(t, err)
		}(instances[i%2])
	}
	wg.Wait()

	p, err := catalog.GetProduct(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, 6, p.Quantity)
	assert.Equal(t, "5", p.AverageCost.String())
}

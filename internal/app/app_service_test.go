package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erp-backend/internal/app"
	"erp-backend/internal/core"
	"erp-backend/internal/lock"
	"erp-backend/internal/memstore"
)

func newTestApp(t *testing.T) app.ApplicationService {
	t.Helper()
	store := memstore.New()
	locker := lock.NewLocal()
	engine := core.NewInventoryEngine(nil, nil)
	return app.NewAppService(
		core.NewCatalogService(store, locker, nil, nil),
		core.NewOrderService(store, locker, engine, nil, nil),
		core.NewPurchaseOrderService(store, locker, engine, nil, nil),
		core.NewReportingService(store),
		core.NewLedger(store, nil),
		nil,
	)
}

func TestCreateProduct_RequestValidation(t *testing.T) {
	svc := newTestApp(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, app.CreateProductRequest{SKU: "X", Name: "X", CategoryID: "c", UnitPrice: "abc"})
	require.ErrorIs(t, err, core.ErrValidation)
	assert.Contains(t, err.Error(), "unit_price")

	_, err = svc.CreateProduct(ctx, app.CreateProductRequest{SKU: "X", Name: "X", CategoryID: "c", UnitPrice: "1", Quantity: -1})
	require.ErrorIs(t, err, core.ErrValidation)
	assert.Contains(t, err.Error(), "quantity")
}

func TestCreateSalesOrder_RequiresItems(t *testing.T) {
	svc := newTestApp(t)
	_, err := svc.CreateSalesOrder(context.Background(), app.CreateSalesOrderRequest{CustomerName: "Acme"})
	require.ErrorIs(t, err, core.ErrValidation)
	assert.Contains(t, err.Error(), "items")

	_, err = svc.CreateSalesOrder(context.Background(), app.CreateSalesOrderRequest{
		CustomerName: "Acme",
		Items:        []app.SalesItemRequest{{SKU: "A", Quantity: 0}},
	})
	require.ErrorIs(t, err, core.ErrValidation)
	assert.Contains(t, err.Error(), "items[0].quantity")
}

func TestListSalesOrders_NormalizesStatus(t *testing.T) {
	svc := newTestApp(t)
	_, err := svc.ListSalesOrders(context.Background(), app.OrderQuery{Status: "bogus"})
	require.ErrorIs(t, err, core.ErrValidation)

	res, err := svc.ListSalesOrders(context.Background(), app.OrderQuery{Status: "pending"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Count)
}

func TestSeedDemoData(t *testing.T) {
	svc := newTestApp(t)
	ctx := context.Background()

	res, err := svc.SeedDemoData(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Products)
	assert.Equal(t, 7, res.Accounts)
	assert.Equal(t, 3, res.JournalEntries)

	laptop, err := svc.GetProduct(ctx, "SKU001")
	require.NoError(t, err)
	assert.Equal(t, 29, laptop.Quantity)
	assert.Equal(t, "800", laptop.AverageCost.String())

	mouse, err := svc.GetProduct(ctx, "SKU002")
	require.NoError(t, err)
	assert.Equal(t, 98, mouse.Quantity)

	bs, err := svc.GetBalanceSheet(ctx, "2025-12-31")
	require.NoError(t, err)
	assert.True(t, bs.IsBalanced)

	// A second run leaves the store untouched.
	again, err := svc.SeedDemoData(ctx)
	require.NoError(t, err)
	assert.Zero(t, again.Products)

	orders, err := svc.ListSalesOrders(ctx, app.OrderQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, orders.Count)
}

func TestAccountStatement(t *testing.T) {
	svc := newTestApp(t)
	ctx := context.Background()
	_, err := svc.SeedDemoData(ctx)
	require.NoError(t, err)

	st, err := svc.GetAccountStatement(ctx, "1010", app.PeriodQuery{})
	require.NoError(t, err)
	assert.Equal(t, "Cash", st.Account.Name)
	require.Len(t, st.Lines, 2)
	assert.Equal(t, "9500", st.Lines[1].RunningBalance.String())

	_, err = svc.GetAccountStatement(ctx, "9999", app.PeriodQuery{})
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = svc.GetAccountStatement(ctx, "1010", app.PeriodQuery{StartDate: "May 1"})
	assert.ErrorIs(t, err, core.ErrValidation)
}

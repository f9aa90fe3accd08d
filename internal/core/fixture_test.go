package core_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"erp-backend/internal/core"
	"erp-backend/internal/lock"
	"erp-backend/internal/memstore"
)

// fixture wires every service over a fresh in-memory store.
type fixture struct {
	ctx       context.Context
	store     *memstore.Store
	catalog   core.CatalogService
	engine    *core.InventoryEngine
	orders    core.OrderService
	purchases core.PurchaseOrderService
	reports   core.ReportingService
	ledger    *core.Ledger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	locker := lock.NewLocal()
	engine := core.NewInventoryEngine(nil, nil)
	return &fixture{
		ctx:       context.Background(),
		store:     store,
		catalog:   core.NewCatalogService(store, locker, nil, nil),
		engine:    engine,
		orders:    core.NewOrderService(store, locker, engine, nil, nil),
		purchases: core.NewPurchaseOrderService(store, locker, engine, nil, nil),
		reports:   core.NewReportingService(store),
		ledger:    core.NewLedger(store, nil),
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// seedProducts creates category "general" and one product per sku with the
// given quantity, unit price 10 and average cost 4.
func (f *fixture) seedProducts(t *testing.T, stock map[string]int) {
	t.Helper()
	if _, err := f.catalog.GetCategory(f.ctx, "general"); err != nil {
		_, err := f.catalog.CreateCategory(f.ctx, "general", "General", "")
		require.NoError(t, err)
	}
	for sku, qty := range stock {
		_, err := f.catalog.CreateProduct(f.ctx, core.ProductInput{
			SKU:          sku,
			Name:         "Product " + sku,
			CategoryID:   "general",
			UnitPrice:    dec("10"),
			AverageCost:  dec("4"),
			Quantity:     qty,
			ReorderPoint: 2,
		})
		require.NoError(t, err)
	}
}

func (f *fixture) quantity(t *testing.T, sku string) int {
	t.Helper()
	p, err := f.catalog.GetProduct(f.ctx, sku)
	require.NoError(t, err)
	return p.Quantity
}

func (f *fixture) seedAccounts(t *testing.T) {
	t.Helper()
	for _, a := range []struct{ code, name, typ string }{
		{"1010", "Cash", "Asset"},
		{"1200", "Accounts Receivable", "Asset"},
		{"2010", "Accounts Payable", "Liability"},
		{"3010", "Common Stock", "Equity"},
		{"4010", "Sales Revenue", "Revenue"},
		{"5050", "Rent Expense", "Expense"},
	} {
		_, err := f.ledger.CreateAccount(f.ctx, a.code, a.name, a.typ)
		require.NoError(t, err)
	}
}

func entry(date, desc string, lines ...core.JournalLineInput) core.JournalEntryInput {
	return core.JournalEntryInput{Date: date, Description: desc, Lines: lines}
}

func debit(code, amount string) core.JournalLineInput {
	return core.JournalLineInput{AccountCode: code, Debit: amount}
}

func credit(code, amount string) core.JournalLineInput {
	return core.JournalLineInput{AccountCode: code, Credit: amount}
}

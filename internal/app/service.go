package app

import (
	"context"

	"erp-backend/internal/core"
)

// ApplicationService is the single interface all adapters (CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
//
// Order references (ref) accept either the internal id or the document number.
type ApplicationService interface {
	// ── Catalog ──────────────────────────────────────────────────────────────

	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*core.Category, error)
	ListCategories(ctx context.Context) (*CategoryListResult, error)
	GetCategory(ctx context.Context, id string) (*core.Category, error)
	UpdateCategory(ctx context.Context, id string, req UpdateCategoryRequest) (*core.Category, error)
	// DeleteCategory fails with a conflict while products still use the category.
	DeleteCategory(ctx context.Context, id string) error

	CreateProduct(ctx context.Context, req CreateProductRequest) (*core.Product, error)
	ListProducts(ctx context.Context) (*ProductListResult, error)
	GetProduct(ctx context.Context, sku string) (*core.Product, error)
	UpdateProduct(ctx context.Context, sku string, req UpdateProductRequest) (*core.Product, error)
	DeleteProduct(ctx context.Context, sku string) error
	// AdjustStock applies a manual correction; the result can never go below zero.
	AdjustStock(ctx context.Context, sku string, req StockAdjustmentRequest) (*core.StockAdjustment, error)

	// ── Sales orders ─────────────────────────────────────────────────────────

	// CreateSalesOrder reserves stock for every line or for none of them.
	CreateSalesOrder(ctx context.Context, req CreateSalesOrderRequest) (*core.SalesOrder, error)
	ListSalesOrders(ctx context.Context, q OrderQuery) (*SalesOrderListResult, error)
	GetSalesOrder(ctx context.Context, ref string) (*core.SalesOrder, error)
	UpdateSalesOrderItems(ctx context.Context, ref string, req UpdateSalesItemsRequest) (*core.SalesOrder, error)
	// UpdateSalesOrderStatus restores reserved stock the first time an order is cancelled.
	UpdateSalesOrderStatus(ctx context.Context, ref string, req StatusRequest) (*core.SalesOrder, error)
	DeleteSalesOrder(ctx context.Context, ref string) (*core.SalesOrder, error)

	// ── Purchase orders ──────────────────────────────────────────────────────

	CreatePurchaseOrder(ctx context.Context, req CreatePurchaseOrderRequest) (*core.PurchaseOrder, error)
	ListPurchaseOrders(ctx context.Context, q OrderQuery) (*PurchaseOrderListResult, error)
	GetPurchaseOrder(ctx context.Context, ref string) (*core.PurchaseOrder, error)
	// UpdatePurchaseOrderStatus adds the ordered quantities to stock the first
	// time the order reaches Received.
	UpdatePurchaseOrderStatus(ctx context.Context, ref string, req StatusRequest) (*core.PurchaseOrder, error)
	// DeletePurchaseOrder never removes stock that a receipt already added.
	DeletePurchaseOrder(ctx context.Context, ref string) (*core.PurchaseDeleteResult, error)

	// ── Reports ──────────────────────────────────────────────────────────────

	SalesReport(ctx context.Context, period PeriodQuery, groupBy string) (*core.SalesReport, error)
	InventoryReport(ctx context.Context, lowStockThreshold *int) (*core.InventoryReport, error)
	PurchaseReport(ctx context.Context, period PeriodQuery, groupBySupplier bool) (*core.PurchaseReport, error)

	// ── Accounting ───────────────────────────────────────────────────────────

	CreateAccount(ctx context.Context, req CreateAccountRequest) (*core.Account, error)
	ListAccounts(ctx context.Context) (*AccountListResult, error)
	GetAccountStatement(ctx context.Context, code string, period PeriodQuery) (*AccountStatementResult, error)

	// CommitJournalEntry posts a balanced entry and moves account balances.
	CommitJournalEntry(ctx context.Context, in core.JournalEntryInput) (*core.JournalEntry, error)
	// ValidateJournalEntry runs every posting check without writing.
	ValidateJournalEntry(ctx context.Context, in core.JournalEntryInput) error
	ListJournalEntries(ctx context.Context) (*JournalEntryListResult, error)
	GetJournalEntry(ctx context.Context, id string) (*core.JournalEntry, error)

	GetTrialBalance(ctx context.Context, asOfDate string) (*core.TrialBalance, error)
	GetIncomeStatement(ctx context.Context, period PeriodQuery) (*core.IncomeStatement, error)
	GetBalanceSheet(ctx context.Context, asOfDate string) (*core.BalanceSheet, error)

	// SeedDemoData loads the demo catalog, chart of accounts and sample orders.
	// It is a no-op when any product already exists.
	SeedDemoData(ctx context.Context) (*SeedResult, error)
}

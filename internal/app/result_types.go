package app

import "erp-backend/internal/core"

// CategoryListResult is returned by ListCategories.
type CategoryListResult struct {
	Categories []core.Category `json:"categories"`
}

// ProductListResult is returned by ListProducts.
type ProductListResult struct {
	Products []core.Product `json:"products"`
}

// SalesOrderListResult is returned by ListSalesOrders.
type SalesOrderListResult struct {
	Orders []core.SalesOrder `json:"orders"`
	Count  int               `json:"count"`
}

// PurchaseOrderListResult is returned by ListPurchaseOrders.
type PurchaseOrderListResult struct {
	Orders []core.PurchaseOrder `json:"purchase_orders"`
	Count  int                  `json:"count"`
}

// AccountListResult is returned by ListAccounts.
type AccountListResult struct {
	Accounts []core.Account `json:"accounts"`
}

// JournalEntryListResult is returned by ListJournalEntries.
type JournalEntryListResult struct {
	Entries []core.JournalEntry `json:"entries"`
}

// AccountStatementResult is returned by GetAccountStatement.
type AccountStatementResult struct {
	Account core.Account         `json:"account"`
	Period  core.Period          `json:"period"`
	Lines   []core.StatementLine `json:"lines"`
}

// SeedResult counts what SeedDemoData created.
type SeedResult struct {
	Categories     int `json:"categories"`
	Products       int `json:"products"`
	Accounts       int `json:"accounts"`
	SalesOrders    int `json:"sales_orders"`
	PurchaseOrders int `json:"purchase_orders"`
	JournalEntries int `json:"journal_entries"`
}

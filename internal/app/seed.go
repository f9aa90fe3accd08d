package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"erp-backend/internal/core"
)

var demoCategories = []CreateCategoryRequest{
	{ID: "electronics", Name: "Electronics", Description: "Computers and peripherals"},
	{ID: "accessories", Name: "Accessories", Description: "Small add-ons"},
}

var demoProducts = []CreateProductRequest{
	{SKU: "SKU001", Name: "Laptop", CategoryID: "electronics", Description: "14 inch business laptop",
		UnitPrice: "1200.00", CostPrice: "800.00", Quantity: 20, ReorderPoint: 5},
	{SKU: "SKU002", Name: "Mouse", CategoryID: "accessories", Description: "Wireless mouse",
		UnitPrice: "25.00", CostPrice: "15.00", Quantity: 100, ReorderPoint: 20},
}

var demoAccounts = []CreateAccountRequest{
	{Code: "1010", Name: "Cash", Type: "Asset"},
	{Code: "1200", Name: "Accounts Receivable", Type: "Asset"},
	{Code: "2010", Name: "Accounts Payable", Type: "Liability"},
	{Code: "3010", Name: "Common Stock", Type: "Equity"},
	{Code: "4010", Name: "Sales Revenue", Type: "Revenue"},
	{Code: "5010", Name: "Cost of Goods Sold", Type: "Expense"},
	{Code: "5050", Name: "Rent Expense", Type: "Expense"},
}

func (s *appService) SeedDemoData(ctx context.Context) (*SeedResult, error) {
	existing, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	res := &SeedResult{}
	if len(existing) > 0 {
		s.log.Info("demo data skipped, catalog is not empty", zap.Int("products", len(existing)))
		return res, nil
	}

	for _, c := range demoCategories {
		if _, err := s.CreateCategory(ctx, c); err != nil {
			return nil, fmt.Errorf("failed to seed category %s: %w", c.ID, err)
		}
		res.Categories++
	}
	for _, p := range demoProducts {
		if _, err := s.CreateProduct(ctx, p); err != nil {
			return nil, fmt.Errorf("failed to seed product %s: %w", p.SKU, err)
		}
		res.Products++
	}
	for _, a := range demoAccounts {
		if _, err := s.CreateAccount(ctx, a); err != nil {
			return nil, fmt.Errorf("failed to seed account %s: %w", a.Code, err)
		}
		res.Accounts++
	}

	// Sales: one delivered, one still pending.
	alice, err := s.CreateSalesOrder(ctx, CreateSalesOrderRequest{
		CustomerName: "Alice Wonderland", OrderDate: "2025-05-10",
		Items: []SalesItemRequest{{SKU: "SKU001", Quantity: 1, UnitPrice: "1200.00"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to seed sales order: %w", err)
	}
	if _, err := s.UpdateSalesOrderStatus(ctx, alice.ID, StatusRequest{Status: string(core.SalesDelivered)}); err != nil {
		return nil, fmt.Errorf("failed to deliver seeded sales order: %w", err)
	}
	if _, err := s.CreateSalesOrder(ctx, CreateSalesOrderRequest{
		CustomerName: "Bob The Builder", OrderDate: "2025-05-11",
		Items: []SalesItemRequest{{SKU: "SKU002", Quantity: 2, UnitPrice: "25.00"}},
	}); err != nil {
		return nil, fmt.Errorf("failed to seed sales order: %w", err)
	}
	res.SalesOrders = 2

	// Purchases: one received, one still on order.
	alpha, err := s.CreatePurchaseOrder(ctx, CreatePurchaseOrderRequest{
		SupplierName: "Supplier Alpha", OrderDate: "2025-05-01", Status: string(core.PurchaseOrdered),
		Items: []PurchaseItemRequest{{SKU: "SKU001", Quantity: 10, CostPrice: "800.00"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to seed purchase order: %w", err)
	}
	if _, err := s.UpdatePurchaseOrderStatus(ctx, alpha.ID, StatusRequest{Status: string(core.PurchaseReceived)}); err != nil {
		return nil, fmt.Errorf("failed to receive seeded purchase order: %w", err)
	}
	if _, err := s.CreatePurchaseOrder(ctx, CreatePurchaseOrderRequest{
		SupplierName: "Supplier Beta", OrderDate: "2025-05-05", Status: string(core.PurchaseOrdered),
		Items: []PurchaseItemRequest{{SKU: "SKU002", Quantity: 50, CostPrice: "15.00"}},
	}); err != nil {
		return nil, fmt.Errorf("failed to seed purchase order: %w", err)
	}
	res.PurchaseOrders = 2

	entries := []core.JournalEntryInput{
		{Date: "2025-05-01", Description: "Owner capital contribution", Lines: []core.JournalLineInput{
			{AccountCode: "1010", Debit: "10000.00"},
			{AccountCode: "3010", Credit: "10000.00"},
		}},
		{Date: "2025-05-10", Description: "Laptop sale to Alice Wonderland", Lines: []core.JournalLineInput{
			{AccountCode: "1200", Debit: "1200.00"},
			{AccountCode: "4010", Credit: "1200.00"},
		}},
		{Date: "2025-05-31", Description: "May rent", Lines: []core.JournalLineInput{
			{AccountCode: "5050", Debit: "500.00"},
			{AccountCode: "1010", Credit: "500.00"},
		}},
	}
	for _, e := range entries {
		if _, err := s.CommitJournalEntry(ctx, e); err != nil {
			return nil, fmt.Errorf("failed to seed journal entry %q: %w", e.Description, err)
		}
		res.JournalEntries++
	}

	s.log.Info("demo data loaded",
		zap.Int("products", res.Products),
		zap.Int("accounts", res.Accounts),
		zap.Int("journal_entries", res.JournalEntries),
	)
	return res, nil
}

// verify-db reads the whole store and reports rows that break the inventory
// and ledger invariants. It exits non-zero when any check fails.
//
// Usage: STORE_DRIVER=postgres DATABASE_URL=... go run ./cmd/verify-db
package main

import (
	"context"
	"log"
	"os"

	"github.com/shopspring/decimal"

	"erp-backend/internal/bootstrap"
	"erp-backend/internal/config"
	"erp-backend/internal/core"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[CONFIG] %v", err)
	}

	ctx := context.Background()
	rt, err := bootstrap.Open(ctx, cfg, nil, nil)
	if err != nil {
		log.Fatalf("[CONNECT] %v", err)
	}
	defer rt.Close()
	log.Println("[CONNECT] success")

	var failures int
	err = rt.Store.View(ctx, func(tx core.Tx) error {
		failures += checkProducts(ctx, tx)
		failures += checkSalesOrders(ctx, tx)
		failures += checkPurchaseOrders(ctx, tx)
		failures += checkLedger(ctx, tx)
		return nil
	})
	if err != nil {
		rt.Close()
		log.Fatalf("[ERROR] %v", err)
	}

	if failures > 0 {
		log.Printf("[FAIL] %d problem(s) found", failures)
		rt.Close()
		os.Exit(1)
	}
	log.Println("[DONE] store is consistent")
}

func checkProducts(ctx context.Context, tx core.Tx) int {
	products, err := tx.ListProducts(ctx)
	if err != nil {
		log.Fatalf("[PRODUCTS] failed to list: %v", err)
	}
	bad := 0
	for _, p := range products {
		if p.Quantity < 0 {
			log.Printf("[PRODUCTS] %s has negative quantity %d", p.SKU, p.Quantity)
			bad++
		}
		if want := core.StatusFor(p.Quantity, p.ReorderPoint); p.Status != want {
			log.Printf("[PRODUCTS] %s status %q, expected %q", p.SKU, p.Status, want)
			bad++
		}
	}
	log.Printf("[PRODUCTS] checked %d", len(products))
	return bad
}

func checkSalesOrders(ctx context.Context, tx core.Tx) int {
	orders, err := tx.ListSalesOrders(ctx, core.OrderFilter{})
	if err != nil {
		log.Fatalf("[SALES] failed to list: %v", err)
	}
	bad := 0
	for _, o := range orders {
		sum := decimal.Zero
		for _, it := range o.Items {
			sum = sum.Add(it.LineTotal)
		}
		if !sum.Equal(o.TotalAmount) {
			log.Printf("[SALES] %s total %s, lines sum to %s", o.OrderNumber, o.TotalAmount, sum)
			bad++
		}
		if o.StockReverted && o.Status != core.SalesCancelled {
			log.Printf("[SALES] %s has stock reverted while %s", o.OrderNumber, o.Status)
			bad++
		}
	}
	log.Printf("[SALES] checked %d", len(orders))
	return bad
}

func checkPurchaseOrders(ctx context.Context, tx core.Tx) int {
	orders, err := tx.ListPurchaseOrders(ctx, core.OrderFilter{})
	if err != nil {
		log.Fatalf("[PURCHASES] failed to list: %v", err)
	}
	bad := 0
	for _, o := range orders {
		sum := decimal.Zero
		for _, it := range o.Items {
			sum = sum.Add(it.LineTotal)
		}
		if !sum.Equal(o.TotalAmount) {
			log.Printf("[PURCHASES] %s total %s, lines sum to %s", o.PONumber, o.TotalAmount, sum)
			bad++
		}
		if o.StockReceived != (o.Status == core.PurchaseReceived) {
			log.Printf("[PURCHASES] %s is %s with stock_received=%t", o.PONumber, o.Status, o.StockReceived)
			bad++
		}
	}
	log.Printf("[PURCHASES] checked %d", len(orders))
	return bad
}

func checkLedger(ctx context.Context, tx core.Tx) int {
	accounts, err := tx.ListAccounts(ctx)
	if err != nil {
		log.Fatalf("[LEDGER] failed to list accounts: %v", err)
	}
	entries, err := tx.ListJournalEntries(ctx)
	if err != nil {
		log.Fatalf("[LEDGER] failed to list entries: %v", err)
	}

	bad := 0
	byCode := make(map[string]core.Account, len(accounts))
	for _, a := range accounts {
		byCode[a.Code] = a
	}
	expected := make(map[string]decimal.Decimal)
	for _, e := range entries {
		if !e.TotalDebit.Equal(e.TotalCredit) {
			log.Printf("[LEDGER] %s is unbalanced: %s vs %s", e.ID, e.TotalDebit, e.TotalCredit)
			bad++
		}
		for _, l := range e.Lines {
			expected[l.AccountCode] = expected[l.AccountCode].Add(byCode[l.AccountCode].SignedAmount(l.Debit, l.Credit))
		}
	}
	for _, a := range accounts {
		want := expected[a.Code]
		if !a.Balance.Equal(want) {
			log.Printf("[LEDGER] account %s balance %s, journal says %s", a.Code, a.Balance, want)
			bad++
		}
	}
	log.Printf("[LEDGER] checked %d accounts, %d entries", len(accounts), len(entries))
	return bad
}

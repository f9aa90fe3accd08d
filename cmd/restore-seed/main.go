// restore-seed loads the demo catalog, orders and ledger into an empty store.
// It does nothing when products already exist.
//
// Usage: STORE_DRIVER=postgres DATABASE_URL=... go run ./cmd/restore-seed
package main

import (
	"context"
	"log"

	"erp-backend/internal/bootstrap"
	"erp-backend/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	rt, err := bootstrap.Open(ctx, cfg, nil, nil)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer rt.Close()

	log.Println("Seeding demo data...")
	res, err := rt.App.SeedDemoData(ctx)
	if err != nil {
		rt.Close()
		log.Fatalf("Failed to seed: %v", err)
	}
	if res.Products == 0 {
		log.Println("Store already has products, nothing to do.")
		return
	}
	log.Printf("Seeded %d categories, %d products, %d accounts, %d sales orders, %d purchase orders, %d journal entries.",
		res.Categories, res.Products, res.Accounts, res.SalesOrders, res.PurchaseOrders, res.JournalEntries)
}

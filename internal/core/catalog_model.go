package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryStatus is derived from a product's quantity and reorder point.
type InventoryStatus string

const (
	StatusInStock    InventoryStatus = "In Stock"
	StatusLowStock   InventoryStatus = "Low Stock"
	StatusOutOfStock InventoryStatus = "Out of Stock"
)

// StatusFor is the single source of truth for InventoryStatus.
func StatusFor(quantity, reorderPoint int) InventoryStatus {
	switch {
	case quantity <= 0:
		return StatusOutOfStock
	case quantity <= reorderPoint:
		return StatusLowStock
	default:
		return StatusInStock
	}
}

// PricePlaces is the precision of unit prices and costs. Money totals are
// rounded to cents.
const PricePlaces = 4

func exceedsPlaces(d decimal.Decimal, places int32) bool {
	return !d.Equal(d.Round(places))
}

// Category groups products. ID is a URL-safe slug.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Product is a catalog item keyed by SKU.
// Quantity only changes through AdjustQuantity or an explicit stock-count correction.
type Product struct {
	SKU               string           `json:"sku"`
	Name              string           `json:"name"`
	CategoryID        string           `json:"category_id"`
	Description       string           `json:"description"`
	UnitPrice         decimal.Decimal  `json:"unit_price"`
	AverageCost       decimal.Decimal  `json:"average_cost"`
	LastPurchasePrice *decimal.Decimal `json:"last_purchase_price,omitempty"`
	Quantity          int              `json:"quantity"`
	ReorderPoint      int              `json:"reorder_point"`
	Status            InventoryStatus  `json:"status"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// StockValue is quantity valued at average cost.
func (p Product) StockValue() decimal.Decimal {
	return p.AverageCost.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// ProductInput is used when creating a product.
type ProductInput struct {
	SKU          string
	Name         string
	CategoryID   string
	Description  string
	UnitPrice    decimal.Decimal
	AverageCost  decimal.Decimal
	Quantity     int
	ReorderPoint int
}

// ProductPatch carries the fields of an update; nil means unchanged.
// SKU is deliberately absent.
type ProductPatch struct {
	Name         *string
	CategoryID   *string
	Description  *string
	UnitPrice    *decimal.Decimal
	ReorderPoint *int
	Quantity     *int
}

// CategoryPatch carries the fields of a category update.
type CategoryPatch struct {
	Name        *string
	Description *string
}

// StockAdjustment records a manual quantity change made outside order flows.
type StockAdjustment struct {
	SKU      string `json:"sku"`
	Delta    int    `json:"delta"`
	Reason   string `json:"reason"`
	Quantity int    `json:"quantity"`
}

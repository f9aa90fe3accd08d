package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesOrderStatus values. Status progresses through the state machine:
//
//	Pending → Processing → Shipped → Delivered
//	any non-terminal status → Cancelled
type SalesOrderStatus string

const (
	SalesPending    SalesOrderStatus = "Pending"
	SalesProcessing SalesOrderStatus = "Processing"
	SalesShipped    SalesOrderStatus = "Shipped"
	SalesDelivered  SalesOrderStatus = "Delivered"
	SalesCancelled  SalesOrderStatus = "Cancelled"
)

// SalesOrder is a customer order. Stock is reserved when the order is created.
// StockReverted is set once the reservation has been given back, so a later
// cancel or delete never restores it twice.
type SalesOrder struct {
	ID              string           `json:"id"`
	OrderNumber     string           `json:"order_number"`
	Customer        string           `json:"customer_name"`
	OrderDate       string           `json:"order_date"` // YYYY-MM-DD
	Status          SalesOrderStatus `json:"status"`
	ShippingAddress string           `json:"shipping_address"`
	Notes           string           `json:"notes"`
	TotalAmount     decimal.Decimal  `json:"total_amount"`
	StockReverted   bool             `json:"stock_reverted"`
	Items           []SalesOrderItem `json:"items"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// SalesOrderItem snapshots the SKU, name and price at order time.
type SalesOrderItem struct {
	LineNumber  int             `json:"line_number"`
	SKU         string          `json:"sku"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// SalesItemInput is one requested line. A nil UnitPrice means the catalog price.
type SalesItemInput struct {
	SKU       string
	Quantity  int
	UnitPrice *decimal.Decimal
}

// SalesOrderInput is used when creating a new sales order.
type SalesOrderInput struct {
	Customer        string
	OrderDate       string // defaults to today
	ShippingAddress string
	Notes           string
	Items           []SalesItemInput
}

// OrderFilter narrows order listings. Empty fields match everything;
// dates are inclusive YYYY-MM-DD bounds.
type OrderFilter struct {
	Status   string
	FromDate string
	ToDate   string
}

// Matches reports whether an order with the given status and date passes the filter.
func (f OrderFilter) Matches(status, date string) bool {
	if f.Status != "" && f.Status != status {
		return false
	}
	if f.FromDate != "" && date < f.FromDate {
		return false
	}
	if f.ToDate != "" && date > f.ToDate {
		return false
	}
	return true
}

func recomputeSalesTotals(items []SalesOrderItem) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		items[i].LineNumber = i + 1
		items[i].LineTotal = items[i].UnitPrice.Mul(decimal.NewFromInt(int64(items[i].Quantity))).Round(2)
		total = total.Add(items[i].LineTotal)
	}
	return total
}

func salesStockLines(items []SalesOrderItem) []StockLine {
	lines := make([]StockLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, StockLine{SKU: it.SKU, Quantity: it.Quantity})
	}
	return lines
}

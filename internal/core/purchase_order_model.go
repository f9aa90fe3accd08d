package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus values:
//
//	Pending → Ordered → Shipped → Received
//	any non-terminal status → Cancelled
type PurchaseOrderStatus string

const (
	PurchasePending   PurchaseOrderStatus = "Pending"
	PurchaseOrdered   PurchaseOrderStatus = "Ordered"
	PurchaseShipped   PurchaseOrderStatus = "Shipped"
	PurchaseReceived  PurchaseOrderStatus = "Received"
	PurchaseCancelled PurchaseOrderStatus = "Cancelled"
)

// PurchaseOrder is a supplier order. It has no inventory effect until it is
// Received; StockReceived guards against applying the receipt twice.
type PurchaseOrder struct {
	ID                   string              `json:"id"`
	PONumber             string              `json:"po_number"`
	Supplier             string              `json:"supplier_name"`
	OrderDate            string              `json:"order_date"` // YYYY-MM-DD
	ExpectedDeliveryDate string              `json:"expected_delivery_date,omitempty"`
	Status               PurchaseOrderStatus `json:"status"`
	Notes                string              `json:"notes"`
	TotalAmount          decimal.Decimal     `json:"total_amount"`
	StockReceived        bool                `json:"stock_received"`
	ReceivedAt           *time.Time          `json:"received_at,omitempty"`
	Items                []PurchaseOrderItem `json:"items"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

// PurchaseOrderItem is one line on a purchase order.
type PurchaseOrderItem struct {
	LineNumber int             `json:"line_number"`
	SKU        string          `json:"sku"`
	Quantity   int             `json:"quantity"`
	UnitCost   decimal.Decimal `json:"cost_price"`
	LineTotal  decimal.Decimal `json:"line_total"`
}

// PurchaseItemInput holds the fields required to create a purchase order line.
type PurchaseItemInput struct {
	SKU      string
	Quantity int
	UnitCost decimal.Decimal
}

// PurchaseOrderInput is used when creating a purchase order.
// Status may be empty (Pending) or Ordered.
type PurchaseOrderInput struct {
	Supplier             string
	OrderDate            string
	ExpectedDeliveryDate string
	Status               PurchaseOrderStatus
	Notes                string
	Items                []PurchaseItemInput
}

// PurchaseDeleteResult tells the caller whether a deleted order had already
// added stock. Deleting a received order leaves that stock in place.
type PurchaseDeleteResult struct {
	Order         *PurchaseOrder `json:"order"`
	StockRetained bool           `json:"stock_retained"`
	Warning       string         `json:"warning,omitempty"`
}

func recomputePurchaseTotals(items []PurchaseOrderItem) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		items[i].LineNumber = i + 1
		items[i].LineTotal = items[i].UnitCost.Mul(decimal.NewFromInt(int64(items[i].Quantity))).Round(2)
		total = total.Add(items[i].LineTotal)
	}
	return total
}

func receiptLines(items []PurchaseOrderItem) []StockLine {
	lines := make([]StockLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, StockLine{SKU: it.SKU, Quantity: it.Quantity, UnitCost: it.UnitCost})
	}
	return lines
}

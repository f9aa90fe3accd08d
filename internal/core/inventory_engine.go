package core

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"erp-backend/internal/metrics"
)

// averageCostPlaces is the precision average cost is stored at.
const averageCostPlaces = 4

// StockLine is one SKU movement handed to the InventoryEngine.
// UnitCost is only read by ApplyReceiptTx.
type StockLine struct {
	SKU      string
	Quantity int
	UnitCost decimal.Decimal
}

// InventoryEngine translates order lifecycle events into quantity changes.
// It is stateless: whether an order's movement has already happened is
// tracked by the order's own flag, and every call runs inside the caller's
// transaction while the caller holds the SKU locks.
type InventoryEngine struct {
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewInventoryEngine(m *metrics.Metrics, log *zap.Logger) *InventoryEngine {
	if log == nil {
		log = zap.NewNop()
	}
	return &InventoryEngine{metrics: m, log: log}
}

// WeightedAverageCost blends an incoming receipt into the current average:
//
//	(oldAvg*oldQty + cost*qty) / (oldQty + qty)
//
// When the combined quantity is zero the receipt cost is returned.
func WeightedAverageCost(oldAvg decimal.Decimal, oldQty int, cost decimal.Decimal, qty int) decimal.Decimal {
	total := oldQty + qty
	if total == 0 {
		return cost
	}
	value := oldAvg.Mul(decimal.NewFromInt(int64(oldQty))).Add(cost.Mul(decimal.NewFromInt(int64(qty))))
	return value.Div(decimal.NewFromInt(int64(total))).Round(averageCostPlaces)
}

// aggregateLines sums quantities per SKU and returns the SKUs in lock order.
func aggregateLines(lines []StockLine) (map[string]int, []string, error) {
	demand := make(map[string]int, len(lines))
	for _, l := range lines {
		if l.SKU == "" {
			return nil, nil, validationError("stock line without sku")
		}
		if l.Quantity <= 0 {
			return nil, nil, validationError("quantity for %s must be positive", l.SKU)
		}
		demand[l.SKU] += l.Quantity
	}
	skus := make([]string, 0, len(demand))
	for sku := range demand {
		skus = append(skus, sku)
	}
	sort.Strings(skus)
	return demand, skus, nil
}

// lockAll locks every SKU and fails with NotFound on the first missing one.
func lockAll(ctx context.Context, tx Tx, skus []string) (map[string]*Product, error) {
	products, err := tx.LockProducts(ctx, skus)
	if err != nil {
		return nil, fmt.Errorf("failed to lock products: %w", err)
	}
	for _, sku := range skus {
		if products[sku] == nil {
			return nil, notFound("product", sku)
		}
	}
	return products, nil
}

// ApplySaleReservationTx validates every line before changing anything, so a
// sale either reserves all of its stock or none of it. Lines for the same
// SKU are checked against their combined quantity.
func (e *InventoryEngine) ApplySaleReservationTx(ctx context.Context, tx Tx, lines []StockLine) error {
	demand, skus, err := aggregateLines(lines)
	if err != nil {
		return err
	}
	products, err := lockAll(ctx, tx, skus)
	if err != nil {
		return err
	}

	var shortfalls []Shortfall
	for _, sku := range skus {
		if p := products[sku]; p.Quantity < demand[sku] {
			shortfalls = append(shortfalls, Shortfall{SKU: sku, Requested: demand[sku], Available: p.Quantity})
		}
	}
	if len(shortfalls) > 0 {
		e.metrics.StockRejected()
		e.log.Debug("sale reservation rejected", zap.Int("short_skus", len(shortfalls)))
		return &InsufficientStockError{Shortfalls: shortfalls}
	}

	units := 0
	for _, sku := range skus {
		if err := adjustQuantity(ctx, tx, products[sku], -demand[sku], nil); err != nil {
			return err
		}
		units += demand[sku]
	}
	e.metrics.StockMoved(metrics.MovementReservation, units)
	e.log.Debug("sale reservation applied", zap.Strings("skus", skus), zap.Int("units", units))
	return nil
}

// ReverseSaleReservationTx returns reserved units to stock. It never fails for
// insufficiency; the caller guarantees it runs at most once per order.
func (e *InventoryEngine) ReverseSaleReservationTx(ctx context.Context, tx Tx, lines []StockLine) error {
	demand, skus, err := aggregateLines(lines)
	if err != nil {
		return err
	}
	products, err := lockAll(ctx, tx, skus)
	if err != nil {
		return err
	}

	units := 0
	for _, sku := range skus {
		if err := adjustQuantity(ctx, tx, products[sku], demand[sku], nil); err != nil {
			return err
		}
		units += demand[sku]
	}
	e.metrics.StockMoved(metrics.MovementReversal, units)
	e.log.Debug("sale reservation reversed", zap.Strings("skus", skus), zap.Int("units", units))
	return nil
}

// ApplyReceiptTx adds received units and folds each line's cost into the
// product's weighted average cost. The line cost also becomes the product's
// last purchase price.
func (e *InventoryEngine) ApplyReceiptTx(ctx context.Context, tx Tx, lines []StockLine) error {
	_, skus, err := aggregateLines(lines)
	if err != nil {
		return err
	}
	for _, l := range lines {
		if l.UnitCost.IsNegative() {
			return validationError("cost for %s cannot be negative", l.SKU)
		}
	}
	products, err := lockAll(ctx, tx, skus)
	if err != nil {
		return err
	}

	units := 0
	for _, l := range lines {
		p := products[l.SKU]
		avg := WeightedAverageCost(p.AverageCost, p.Quantity, l.UnitCost, l.Quantity)
		cost := l.UnitCost
		p.LastPurchasePrice = &cost
		if err := adjustQuantity(ctx, tx, p, l.Quantity, &avg); err != nil {
			return err
		}
		units += l.Quantity
	}
	e.metrics.StockMoved(metrics.MovementReceipt, units)
	e.log.Debug("purchase receipt applied", zap.Strings("skus", skus), zap.Int("units", units))
	return nil
}

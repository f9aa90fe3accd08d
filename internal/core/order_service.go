package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"erp-backend/internal/metrics"
)

const dateLayout = "2006-01-02"

// OrderService manages the sales order lifecycle. Stock is reserved at
// creation and given back exactly once, on cancellation or deletion.
type OrderService interface {
	CreateOrder(ctx context.Context, in SalesOrderInput) (*SalesOrder, error)
	// UpdateOrderItems replaces the lines of a Pending order, swapping the old
	// reservation for the new one atomically.
	UpdateOrderItems(ctx context.Context, ref string, items []SalesItemInput) (*SalesOrder, error)
	UpdateOrderStatus(ctx context.Context, ref string, status string) (*SalesOrder, error)
	DeleteOrder(ctx context.Context, ref string) (*SalesOrder, error)

	// Queries. ref is either the order id or its order number.
	GetOrder(ctx context.Context, ref string) (*SalesOrder, error)
	GetOrders(ctx context.Context, filter OrderFilter) ([]SalesOrder, error)
}

type orderService struct {
	store   Store
	locker  KeyLocker
	engine  *InventoryEngine
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewOrderService(store Store, locker KeyLocker, engine *InventoryEngine, m *metrics.Metrics, log *zap.Logger) OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &orderService{store: store, locker: locker, engine: engine, metrics: m, log: log}
}

func salesLockKey(id string) string { return "sales:" + id }

// normalizeDate defaults an empty date to today and checks the format.
func normalizeDate(field, date string) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return time.Now().UTC().Format(dateLayout), nil
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return "", validationError("%s must be YYYY-MM-DD, got %q", field, date)
	}
	return date, nil
}

func validateSalesItems(items []SalesItemInput) error {
	if len(items) == 0 {
		return validationError("order must have at least one item")
	}
	for i, it := range items {
		if strings.TrimSpace(it.SKU) == "" {
			return validationError("item %d: sku is required", i+1)
		}
		if it.Quantity <= 0 {
			return validationError("item %d: quantity must be positive", i+1)
		}
		if it.UnitPrice != nil && it.UnitPrice.IsNegative() {
			return validationError("item %d: unit_price cannot be negative", i+1)
		}
		if it.UnitPrice != nil && exceedsPlaces(*it.UnitPrice, PricePlaces) {
			return validationError("item %d: unit_price cannot have more than %d decimal places", i+1, PricePlaces)
		}
	}
	return nil
}

func skuLockKeys(skuSets ...[]string) []string {
	var keys []string
	for _, set := range skuSets {
		for _, sku := range set {
			keys = append(keys, SKULockKey(sku))
		}
	}
	return keys
}

func inputSKUs(items []SalesItemInput) []string {
	skus := make([]string, 0, len(items))
	for _, it := range items {
		skus = append(skus, strings.TrimSpace(it.SKU))
	}
	return skus
}

func itemSKUs(items []SalesOrderItem) []string {
	skus := make([]string, 0, len(items))
	for _, it := range items {
		skus = append(skus, it.SKU)
	}
	return skus
}

// reserveItems applies the reservation for items and returns the priced lines.
// The reservation runs first so that a missing SKU or shortfall is reported
// before anything else is read.
func (s *orderService) reserveItems(ctx context.Context, tx Tx, items []SalesItemInput) ([]SalesOrderItem, error) {
	lines := make([]StockLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, StockLine{SKU: strings.TrimSpace(it.SKU), Quantity: it.Quantity})
	}
	if err := s.engine.ApplySaleReservationTx(ctx, tx, lines); err != nil {
		return nil, err
	}

	out := make([]SalesOrderItem, 0, len(items))
	for _, it := range items {
		sku := strings.TrimSpace(it.SKU)
		p, err := tx.GetProduct(ctx, sku)
		if err != nil {
			return nil, err
		}
		price := p.UnitPrice
		if it.UnitPrice != nil {
			price = *it.UnitPrice
		}
		out = append(out, SalesOrderItem{SKU: sku, ProductName: p.Name, Quantity: it.Quantity, UnitPrice: price})
	}
	return out, nil
}

// resolveOrder finds an order by id, falling back to its order number.
func resolveOrder(ctx context.Context, tx Tx, ref string) (*SalesOrder, error) {
	o, err := tx.GetSalesOrder(ctx, ref)
	if err == nil || !errors.Is(err, ErrNotFound) {
		return o, err
	}
	return tx.GetSalesOrderByNumber(ctx, ref)
}

// lockOrder takes the order key and then the keys of every SKU the order
// touches, plus extra. Callers release with the returned function.
func (s *orderService) lockOrder(ctx context.Context, ref string, extra []string) (string, func(), error) {
	var id string
	err := s.store.View(ctx, func(tx Tx) error {
		o, err := resolveOrder(ctx, tx, ref)
		if err != nil {
			return err
		}
		id = o.ID
		return nil
	})
	if err != nil {
		return "", nil, err
	}

	unlockOrder, err := s.locker.Lock(ctx, salesLockKey(id))
	if err != nil {
		return "", nil, fmt.Errorf("failed to lock sales order %s: %w", id, err)
	}

	var skus []string
	err = s.store.View(ctx, func(tx Tx) error {
		o, err := tx.GetSalesOrder(ctx, id)
		if err != nil {
			return err
		}
		skus = itemSKUs(o.Items)
		return nil
	})
	if err != nil {
		unlockOrder()
		return "", nil, err
	}

	unlockSKUs, err := s.locker.Lock(ctx, skuLockKeys(skus, extra)...)
	if err != nil {
		unlockOrder()
		return "", nil, fmt.Errorf("failed to lock products of sales order %s: %w", id, err)
	}
	return id, func() { unlockSKUs(); unlockOrder() }, nil
}

// ── Order lifecycle ──────────────────────────────────────────────────────────

func (s *orderService) CreateOrder(ctx context.Context, in SalesOrderInput) (*SalesOrder, error) {
	customer := strings.TrimSpace(in.Customer)
	if customer == "" {
		return nil, validationError("customer name is required")
	}
	if err := validateSalesItems(in.Items); err != nil {
		return nil, err
	}
	orderDate, err := normalizeDate("order_date", in.OrderDate)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, skuLockKeys(inputSKUs(in.Items))...)
	if err != nil {
		return nil, fmt.Errorf("failed to lock products: %w", err)
	}
	defer unlock()

	now := time.Now().UTC()
	order := SalesOrder{
		ID:              uuid.NewString(),
		Customer:        customer,
		OrderDate:       orderDate,
		Status:          SalesPending,
		ShippingAddress: strings.TrimSpace(in.ShippingAddress),
		Notes:           strings.TrimSpace(in.Notes),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.store.InTx(ctx, func(tx Tx) error {
		items, err := s.reserveItems(ctx, tx, in.Items)
		if err != nil {
			return err
		}
		order.Items = items
		order.TotalAmount = recomputeSalesTotals(order.Items)

		order.OrderNumber, err = nextDocumentNumber(ctx, tx, SeriesSalesOrder)
		if err != nil {
			return err
		}
		if err := tx.InsertSalesOrder(ctx, order); err != nil {
			return fmt.Errorf("failed to insert sales order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.OrderTransition("sales", string(order.Status))
	s.log.Info("sales order created",
		zap.String("order_number", order.OrderNumber),
		zap.String("customer", order.Customer),
		zap.String("total", order.TotalAmount.StringFixed(2)),
	)
	return &order, nil
}

func (s *orderService) UpdateOrderItems(ctx context.Context, ref string, items []SalesItemInput) (*SalesOrder, error) {
	if err := validateSalesItems(items); err != nil {
		return nil, err
	}
	id, unlock, err := s.lockOrder(ctx, ref, inputSKUs(items))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var order *SalesOrder
	err = s.store.InTx(ctx, func(tx Tx) error {
		var err error
		order, err = tx.LockSalesOrder(ctx, id)
		if err != nil {
			return err
		}
		if order.Status != SalesPending {
			return conflict("items of sales order %s can only change while Pending (status %s)", order.OrderNumber, order.Status)
		}
		if err := s.engine.ReverseSaleReservationTx(ctx, tx, salesStockLines(order.Items)); err != nil {
			return err
		}
		order.Items, err = s.reserveItems(ctx, tx, items)
		if err != nil {
			return err
		}
		order.TotalAmount = recomputeSalesTotals(order.Items)
		order.UpdatedAt = time.Now().UTC()
		return tx.UpdateSalesOrder(ctx, *order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateOrderStatus moves an order along its state machine. Cancelling gives
// the reserved stock back unless that already happened.
func (s *orderService) UpdateOrderStatus(ctx context.Context, ref string, status string) (*SalesOrder, error) {
	target, err := ParseSalesStatus(status)
	if err != nil {
		return nil, err
	}
	id, unlock, err := s.lockOrder(ctx, ref, nil)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var order *SalesOrder
	changed := false
	err = s.store.InTx(ctx, func(tx Tx) error {
		var err error
		order, err = tx.LockSalesOrder(ctx, id)
		if err != nil {
			return err
		}
		if err := CanTransitionSales(order.Status, target); err != nil {
			return err
		}
		if order.Status == target {
			return nil
		}
		if target == SalesCancelled && !order.StockReverted {
			if err := s.engine.ReverseSaleReservationTx(ctx, tx, salesStockLines(order.Items)); err != nil {
				return err
			}
			order.StockReverted = true
		}
		order.Status = target
		order.UpdatedAt = time.Now().UTC()
		changed = true
		return tx.UpdateSalesOrder(ctx, *order)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.metrics.OrderTransition("sales", string(target))
		s.log.Info("sales order status changed",
			zap.String("order_number", order.OrderNumber),
			zap.String("status", string(target)),
		)
	}
	return order, nil
}

// DeleteOrder removes an order, first returning its stock if it still holds a reservation.
func (s *orderService) DeleteOrder(ctx context.Context, ref string) (*SalesOrder, error) {
	id, unlock, err := s.lockOrder(ctx, ref, nil)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var order *SalesOrder
	err = s.store.InTx(ctx, func(tx Tx) error {
		var err error
		order, err = tx.LockSalesOrder(ctx, id)
		if err != nil {
			return err
		}
		if !order.StockReverted {
			if err := s.engine.ReverseSaleReservationTx(ctx, tx, salesStockLines(order.Items)); err != nil {
				return err
			}
			order.StockReverted = true
		}
		return tx.DeleteSalesOrder(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("sales order deleted", zap.String("order_number", order.OrderNumber))
	return order, nil
}

// ── Queries ──────────────────────────────────────────────────────────────────

func (s *orderService) GetOrder(ctx context.Context, ref string) (*SalesOrder, error) {
	var o *SalesOrder
	err := s.store.View(ctx, func(tx Tx) error {
		var err error
		o, err = resolveOrder(ctx, tx, ref)
		return err
	})
	return o, err
}

func (s *orderService) GetOrders(ctx context.Context, filter OrderFilter) ([]SalesOrder, error) {
	if filter.Status != "" {
		st, err := ParseSalesStatus(filter.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = string(st)
	}
	var out []SalesOrder
	err := s.store.View(ctx, func(tx Tx) error {
		var err error
		out, err = tx.ListSalesOrders(ctx, filter)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sales orders: %w", err)
	}
	return out, nil
}

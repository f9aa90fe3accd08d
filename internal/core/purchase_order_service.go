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

// PurchaseOrderService manages purchase orders. Only the transition to
// Received touches inventory, and it does so at most once per order.
type PurchaseOrderService interface {
	CreatePO(ctx context.Context, in PurchaseOrderInput) (*PurchaseOrder, error)
	UpdatePOStatus(ctx context.Context, ref string, status string) (*PurchaseOrder, error)
	// DeletePO removes the order. Stock added by an earlier receipt stays.
	DeletePO(ctx context.Context, ref string) (*PurchaseDeleteResult, error)

	GetPO(ctx context.Context, ref string) (*PurchaseOrder, error)
	GetPOs(ctx context.Context, filter OrderFilter) ([]PurchaseOrder, error)
}

type purchaseOrderService struct {
	store   Store
	locker  KeyLocker
	engine  *InventoryEngine
	metrics *metrics.Metrics
	log     *zap.Logger
}

// NewPurchaseOrderService constructs a PurchaseOrderService over store.
func NewPurchaseOrderService(store Store, locker KeyLocker, engine *InventoryEngine, m *metrics.Metrics, log *zap.Logger) PurchaseOrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &purchaseOrderService{store: store, locker: locker, engine: engine, metrics: m, log: log}
}

func purchaseLockKey(id string) string { return "purchase:" + id }

func resolvePO(ctx context.Context, tx Tx, ref string) (*PurchaseOrder, error) {
	po, err := tx.GetPurchaseOrder(ctx, ref)
	if err == nil || !errors.Is(err, ErrNotFound) {
		return po, err
	}
	return tx.GetPurchaseOrderByNumber(ctx, ref)
}

// CreatePO creates a Pending (or Ordered) purchase order with computed line totals.
func (s *purchaseOrderService) CreatePO(ctx context.Context, in PurchaseOrderInput) (*PurchaseOrder, error) {
	supplier := strings.TrimSpace(in.Supplier)
	if supplier == "" {
		return nil, validationError("supplier name is required")
	}
	if len(in.Items) == 0 {
		return nil, validationError("purchase order must have at least one item")
	}
	for i, it := range in.Items {
		if strings.TrimSpace(it.SKU) == "" {
			return nil, validationError("item %d: sku is required", i+1)
		}
		if it.Quantity <= 0 {
			return nil, validationError("item %d: quantity must be positive", i+1)
		}
		if it.UnitCost.IsNegative() {
			return nil, validationError("item %d: cost_price cannot be negative", i+1)
		}
		if exceedsPlaces(it.UnitCost, PricePlaces) {
			return nil, validationError("item %d: cost_price cannot have more than %d decimal places", i+1, PricePlaces)
		}
	}
	orderDate, err := normalizeDate("order_date", in.OrderDate)
	if err != nil {
		return nil, err
	}
	expected := strings.TrimSpace(in.ExpectedDeliveryDate)
	if expected != "" {
		if expected, err = normalizeDate("expected_delivery_date", expected); err != nil {
			return nil, err
		}
	}

	status := PurchasePending
	if in.Status != "" {
		if status, err = ParsePurchaseStatus(string(in.Status)); err != nil {
			return nil, err
		}
		if status != PurchasePending && status != PurchaseOrdered {
			return nil, validationError("a new purchase order must be Pending or Ordered, got %s", status)
		}
	}

	now := time.Now().UTC()
	po := PurchaseOrder{
		ID:                   uuid.NewString(),
		Supplier:             supplier,
		OrderDate:            orderDate,
		ExpectedDeliveryDate: expected,
		Status:               status,
		Notes:                strings.TrimSpace(in.Notes),
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	for _, it := range in.Items {
		po.Items = append(po.Items, PurchaseOrderItem{SKU: strings.TrimSpace(it.SKU), Quantity: it.Quantity, UnitCost: it.UnitCost})
	}
	po.TotalAmount = recomputePurchaseTotals(po.Items)

	err = s.store.InTx(ctx, func(tx Tx) error {
		for _, it := range po.Items {
			if _, err := tx.GetProduct(ctx, it.SKU); err != nil {
				return err
			}
		}
		var err error
		po.PONumber, err = nextDocumentNumber(ctx, tx, SeriesPurchaseOrder)
		if err != nil {
			return err
		}
		if err := tx.InsertPurchaseOrder(ctx, po); err != nil {
			return fmt.Errorf("failed to insert purchase order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.OrderTransition("purchase", string(po.Status))
	s.log.Info("purchase order created",
		zap.String("po_number", po.PONumber),
		zap.String("supplier", po.Supplier),
		zap.String("total", po.TotalAmount.StringFixed(2)),
	)
	return &po, nil
}

// lockPO takes the order key and then the keys of the order's SKUs.
func (s *purchaseOrderService) lockPO(ctx context.Context, ref string) (string, func(), error) {
	var id string
	err := s.store.View(ctx, func(tx Tx) error {
		po, err := resolvePO(ctx, tx, ref)
		if err != nil {
			return err
		}
		id = po.ID
		return nil
	})
	if err != nil {
		return "", nil, err
	}

	unlockOrder, err := s.locker.Lock(ctx, purchaseLockKey(id))
	if err != nil {
		return "", nil, fmt.Errorf("failed to lock purchase order %s: %w", id, err)
	}

	var skus []string
	err = s.store.View(ctx, func(tx Tx) error {
		po, err := tx.GetPurchaseOrder(ctx, id)
		if err != nil {
			return err
		}
		for _, it := range po.Items {
			skus = append(skus, it.SKU)
		}
		return nil
	})
	if err != nil {
		unlockOrder()
		return "", nil, err
	}

	unlockSKUs, err := s.locker.Lock(ctx, skuLockKeys(skus)...)
	if err != nil {
		unlockOrder()
		return "", nil, fmt.Errorf("failed to lock products of purchase order %s: %w", id, err)
	}
	return id, func() { unlockSKUs(); unlockOrder() }, nil
}

// UpdatePOStatus moves a purchase order along its state machine. Reaching
// Received applies the receipt unless StockReceived is already set.
func (s *purchaseOrderService) UpdatePOStatus(ctx context.Context, ref string, status string) (*PurchaseOrder, error) {
	target, err := ParsePurchaseStatus(status)
	if err != nil {
		return nil, err
	}
	id, unlock, err := s.lockPO(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var po *PurchaseOrder
	changed := false
	err = s.store.InTx(ctx, func(tx Tx) error {
		var err error
		po, err = tx.LockPurchaseOrder(ctx, id)
		if err != nil {
			return err
		}
		if err := CanTransitionPurchase(po.Status, target); err != nil {
			return err
		}
		if po.Status == target {
			return nil
		}
		now := time.Now().UTC()
		if target == PurchaseReceived && !po.StockReceived {
			if err := s.engine.ApplyReceiptTx(ctx, tx, receiptLines(po.Items)); err != nil {
				return err
			}
			po.StockReceived = true
			po.ReceivedAt = &now
		}
		po.Status = target
		po.UpdatedAt = now
		changed = true
		return tx.UpdatePurchaseOrder(ctx, *po)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.metrics.OrderTransition("purchase", string(target))
		s.log.Info("purchase order status changed",
			zap.String("po_number", po.PONumber),
			zap.String("status", string(target)),
		)
	}
	return po, nil
}

func (s *purchaseOrderService) DeletePO(ctx context.Context, ref string) (*PurchaseDeleteResult, error) {
	id, unlock, err := s.lockPO(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var po *PurchaseOrder
	err = s.store.InTx(ctx, func(tx Tx) error {
		var err error
		po, err = tx.LockPurchaseOrder(ctx, id)
		if err != nil {
			return err
		}
		return tx.DeletePurchaseOrder(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	res := &PurchaseDeleteResult{Order: po, StockRetained: po.StockReceived}
	if po.StockReceived {
		res.Warning = fmt.Sprintf("purchase order %s was already received; its stock was not removed", po.PONumber)
		s.log.Warn("received purchase order deleted", zap.String("po_number", po.PONumber))
	} else {
		s.log.Info("purchase order deleted", zap.String("po_number", po.PONumber))
	}
	return res, nil
}

func (s *purchaseOrderService) GetPO(ctx context.Context, ref string) (*PurchaseOrder, error) {
	var po *PurchaseOrder
	err := s.store.View(ctx, func(tx Tx) error {
		var err error
		po, err = resolvePO(ctx, tx, ref)
		return err
	})
	return po, err
}

func (s *purchaseOrderService) GetPOs(ctx context.Context, filter OrderFilter) ([]PurchaseOrder, error) {
	if filter.Status != "" {
		st, err := ParsePurchaseStatus(filter.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = string(st)
	}
	var out []PurchaseOrder
	err := s.store.View(ctx, func(tx Tx) error {
		var err error
		out, err = tx.ListPurchaseOrders(ctx, filter)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase orders: %w", err)
	}
	return out, nil
}

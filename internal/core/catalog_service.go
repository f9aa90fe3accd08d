package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"erp-backend/internal/metrics"
)

// CatalogService manages categories and products. Product quantity is only
// changed through AdjustQuantityTx, AdjustStock, or a stock-count correction
// in UpdateProduct; all three take the SKU lock.
type CatalogService interface {
	CreateCategory(ctx context.Context, id, name, description string) (*Category, error)
	GetCategory(ctx context.Context, id string) (*Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	UpdateCategory(ctx context.Context, id string, patch CategoryPatch) (*Category, error)
	DeleteCategory(ctx context.Context, id string) error

	CreateProduct(ctx context.Context, in ProductInput) (*Product, error)
	GetProduct(ctx context.Context, sku string) (*Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	UpdateProduct(ctx context.Context, sku string, patch ProductPatch) (*Product, error)
	DeleteProduct(ctx context.Context, sku string) error

	// AdjustStock applies a manual quantity change in its own transaction.
	AdjustStock(ctx context.Context, sku string, delta int, reason string) (*StockAdjustment, error)
	// AdjustQuantityTx changes quantity inside the caller's transaction. The
	// caller must hold the SKU lock. newAverageCost is applied only when delta > 0.
	AdjustQuantityTx(ctx context.Context, tx Tx, sku string, delta int, newAverageCost *decimal.Decimal) (*Product, error)
}

type catalogService struct {
	store   Store
	locker  KeyLocker
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewCatalogService(store Store, locker KeyLocker, m *metrics.Metrics, log *zap.Logger) CatalogService {
	if log == nil {
		log = zap.NewNop()
	}
	return &catalogService{store: store, locker: locker, metrics: m, log: log}
}

// SKULockKey is the lock key guarding one product's quantity.
func SKULockKey(sku string) string { return "sku:" + sku }

// ── Categories ───────────────────────────────────────────────────────────────

func (s *catalogService) CreateCategory(ctx context.Context, id, name, description string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("category name is required")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		id = slug.Make(name)
	}
	if !slug.IsSlug(id) {
		return nil, validationError("category id %q must be lowercase letters, digits and dashes", id)
	}

	c := Category{ID: id, Name: name, Description: strings.TrimSpace(description), CreatedAt: time.Now().UTC()}
	err := s.store.InTx(ctx, func(tx Tx) error {
		if err := tx.InsertCategory(ctx, c); err != nil {
			return fmt.Errorf("failed to create category: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *catalogService) GetCategory(ctx context.Context, id string) (*Category, error) {
	var c *Category
	err := s.store.View(ctx, func(tx Tx) error {
		var err error
		c, err = tx.GetCategory(ctx, id)
		return err
	})
	return c, err
}

func (s *catalogService) ListCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	err := s.store.View(ctx, func(tx Tx) error {
		var err error
		out, err = tx.ListCategories(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return out, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id string, patch CategoryPatch) (*Category, error) {
	var c *Category
	err := s.store.InTx(ctx, func(tx Tx) error {
		var err error
		c, err = tx.GetCategory(ctx, id)
		if err != nil {
			return err
		}
		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return validationError("category name cannot be empty")
			}
			c.Name = name
		}
		if patch.Description != nil {
			c.Description = strings.TrimSpace(*patch.Description)
		}
		return tx.UpdateCategory(ctx, *c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCategory refuses to orphan products.
func (s *catalogService) DeleteCategory(ctx context.Context, id string) error {
	return s.store.InTx(ctx, func(tx Tx) error {
		if _, err := tx.GetCategory(ctx, id); err != nil {
			return err
		}
		n, err := tx.CountProductsInCategory(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to count products in category %s: %w", id, err)
		}
		if n > 0 {
			return conflict("category %s is used by %d product(s)", id, n)
		}
		return tx.DeleteCategory(ctx, id)
	})
}

// ── Products ─────────────────────────────────────────────────────────────────

func (s *catalogService) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	in.CategoryID = strings.TrimSpace(in.CategoryID)
	switch {
	case in.SKU == "":
		return nil, validationError("sku is required")
	case in.Name == "":
		return nil, validationError("product name is required")
	case in.CategoryID == "":
		return nil, validationError("category_id is required")
	case in.UnitPrice.IsNegative():
		return nil, validationError("unit_price cannot be negative")
	case in.AverageCost.IsNegative():
		return nil, validationError("average_cost cannot be negative")
	case exceedsPlaces(in.UnitPrice, PricePlaces), exceedsPlaces(in.AverageCost, PricePlaces):
		return nil, validationError("prices cannot have more than %d decimal places", PricePlaces)
	case in.Quantity < 0:
		return nil, validationError("quantity cannot be negative")
	case in.ReorderPoint < 0:
		return nil, validationError("reorder_point cannot be negative")
	}

	now := time.Now().UTC()
	p := Product{
		SKU:          in.SKU,
		Name:         in.Name,
		CategoryID:   in.CategoryID,
		Description:  strings.TrimSpace(in.Description),
		UnitPrice:    in.UnitPrice,
		AverageCost:  in.AverageCost,
		Quantity:     in.Quantity,
		ReorderPoint: in.ReorderPoint,
		Status:       StatusFor(in.Quantity, in.ReorderPoint),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.store.InTx(ctx, func(tx Tx) error {
		if _, err := tx.GetCategory(ctx, p.CategoryID); err != nil {
			return err
		}
		if err := tx.InsertProduct(ctx, p); err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *catalogService) GetProduct(ctx context.Context, sku string) (*Product, error) {
	var p *Product
	err := s.store.View(ctx, func(tx Tx) error {
		var err error
		p, err = tx.GetProduct(ctx, sku)
		return err
	})
	return p, err
}

func (s *catalogService) ListProducts(ctx context.Context) ([]Product, error) {
	var out []Product
	err := s.store.View(ctx, func(tx Tx) error {
		var err error
		out, err = tx.ListProducts(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return out, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, sku string, patch ProductPatch) (*Product, error) {
	unlock, err := s.locker.Lock(ctx, SKULockKey(sku))
	if err != nil {
		return nil, fmt.Errorf("failed to lock product %s: %w", sku, err)
	}
	defer unlock()

	var p *Product
	err = s.store.InTx(ctx, func(tx Tx) error {
		locked, err := tx.LockProducts(ctx, []string{sku})
		if err != nil {
			return fmt.Errorf("failed to lock product %s: %w", sku, err)
		}
		p = locked[sku]
		if p == nil {
			return notFound("product", sku)
		}

		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return validationError("product name cannot be empty")
			}
			p.Name = name
		}
		if patch.CategoryID != nil {
			cat := strings.TrimSpace(*patch.CategoryID)
			if _, err := tx.GetCategory(ctx, cat); err != nil {
				return err
			}
			p.CategoryID = cat
		}
		if patch.Description != nil {
			p.Description = strings.TrimSpace(*patch.Description)
		}
		if patch.UnitPrice != nil {
			if patch.UnitPrice.IsNegative() {
				return validationError("unit_price cannot be negative")
			}
			if exceedsPlaces(*patch.UnitPrice, PricePlaces) {
				return validationError("unit_price cannot have more than %d decimal places", PricePlaces)
			}
			p.UnitPrice = *patch.UnitPrice
		}
		if patch.ReorderPoint != nil {
			if *patch.ReorderPoint < 0 {
				return validationError("reorder_point cannot be negative")
			}
			p.ReorderPoint = *patch.ReorderPoint
		}
		if patch.Quantity != nil {
			if *patch.Quantity < 0 {
				return validationError("quantity cannot be negative")
			}
			p.Quantity = *patch.Quantity
		}

		p.Status = StatusFor(p.Quantity, p.ReorderPoint)
		p.UpdatedAt = time.Now().UTC()
		return tx.UpdateProduct(ctx, *p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteProduct refuses to delete a SKU that any order line references, so
// order history and stock reversal stay resolvable.
func (s *catalogService) DeleteProduct(ctx context.Context, sku string) error {
	unlock, err := s.locker.Lock(ctx, SKULockKey(sku))
	if err != nil {
		return fmt.Errorf("failed to lock product %s: %w", sku, err)
	}
	defer unlock()

	return s.store.InTx(ctx, func(tx Tx) error {
		if _, err := tx.GetProduct(ctx, sku); err != nil {
			return err
		}
		used, err := tx.ProductReferenced(ctx, sku)
		if err != nil {
			return fmt.Errorf("failed to check references of product %s: %w", sku, err)
		}
		if used {
			return conflict("product %s is referenced by existing orders", sku)
		}
		return tx.DeleteProduct(ctx, sku)
	})
}

// ── Quantity adjustments ─────────────────────────────────────────────────────

func (s *catalogService) AdjustStock(ctx context.Context, sku string, delta int, reason string) (*StockAdjustment, error) {
	if delta == 0 {
		return nil, validationError("delta must be non-zero")
	}
	unlock, err := s.locker.Lock(ctx, SKULockKey(sku))
	if err != nil {
		return nil, fmt.Errorf("failed to lock product %s: %w", sku, err)
	}
	defer unlock()

	var p *Product
	err = s.store.InTx(ctx, func(tx Tx) error {
		var err error
		p, err = s.AdjustQuantityTx(ctx, tx, sku, delta, nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	units := delta
	if units < 0 {
		units = -units
	}
	s.metrics.StockMoved(metrics.MovementAdjustment, units)
	s.log.Info("stock adjusted",
		zap.String("sku", sku),
		zap.Int("delta", delta),
		zap.Int("quantity", p.Quantity),
		zap.String("reason", reason),
	)
	return &StockAdjustment{SKU: sku, Delta: delta, Reason: strings.TrimSpace(reason), Quantity: p.Quantity}, nil
}

func (s *catalogService) AdjustQuantityTx(ctx context.Context, tx Tx, sku string, delta int, newAverageCost *decimal.Decimal) (*Product, error) {
	locked, err := tx.LockProducts(ctx, []string{sku})
	if err != nil {
		return nil, fmt.Errorf("failed to lock product %s: %w", sku, err)
	}
	p := locked[sku]
	if p == nil {
		return nil, notFound("product", sku)
	}
	if err := adjustQuantity(ctx, tx, p, delta, newAverageCost); err != nil {
		return nil, err
	}
	return p, nil
}

// adjustQuantity applies delta to an already locked product and persists it.
// The resulting quantity can never be negative.
func adjustQuantity(ctx context.Context, tx Tx, p *Product, delta int, newAverageCost *decimal.Decimal) error {
	next := p.Quantity + delta
	if next < 0 {
		return &InsufficientStockError{Shortfalls: []Shortfall{{SKU: p.SKU, Requested: -delta, Available: p.Quantity}}}
	}
	p.Quantity = next
	if delta > 0 && newAverageCost != nil {
		p.AverageCost = *newAverageCost
	}
	p.Status = StatusFor(p.Quantity, p.ReorderPoint)
	p.UpdatedAt = time.Now().UTC()
	if err := tx.UpdateProduct(ctx, *p); err != nil {
		return fmt.Errorf("failed to update quantity of product %s: %w", p.SKU, err)
	}
	return nil
}

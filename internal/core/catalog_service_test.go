package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erp-backend/internal/core"
)

func TestCatalogService_Categories(t *testing.T) {
	f := newFixture(t)

	c, err := f.catalog.CreateCategory(f.ctx, "", "Office Supplies", "Paper and pens")
	require.NoError(t, err)
	assert.Equal(t, "office-supplies", c.ID)

	_, err = f.catalog.CreateCategory(f.ctx, "office-supplies", "Again", "")
	assert.ErrorIs(t, err, core.ErrDuplicateKey)

	_, err = f.catalog.CreateCategory(f.ctx, "Bad ID!", "Bad", "")
	assert.ErrorIs(t, err, core.ErrValidation)

	name := "Stationery"
	c, err = f.catalog.UpdateCategory(f.ctx, "office-supplies", core.CategoryPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Stationery", c.Name)
	assert.Equal(t, "Paper and pens", c.Description)

	require.NoError(t, f.catalog.DeleteCategory(f.ctx, "office-supplies"))
	assert.ErrorIs(t, f.catalog.DeleteCategory(f.ctx, "office-supplies"), core.ErrNotFound)
}

func TestCatalogService_CategoryInUse(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(t, map[string]int{"SKU001": 5})

	err := f.catalog.DeleteCategory(f.ctx, "general")
	assert.ErrorIs(t, err, core.ErrConflict)
}

func TestCatalogService_CreateProduct(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(t, map[string]int{"SKU001": 5})

	p, err := f.catalog.GetProduct(f.ctx, "SKU001")
	require.NoError(t, err)
	assert.Equal(t, core.StatusInStock, p.Status)
	assert.Nil(t, p.LastPurchasePrice)

	tests := []struct {
		name string
		in   core.ProductInput
		want error
	}{
		{"missing sku", core.ProductInput{Name: "X", CategoryID: "general"}, core.ErrValidation},
		{"negative quantity", core.ProductInput{SKU: "X1", Name: "X", CategoryID: "general", Quantity: -1}, core.ErrValidation},
		{"negative price", core.ProductInput{SKU: "X2", Name: "X", CategoryID: "general", UnitPrice: dec("-1")}, core.ErrValidation},
		{"price past four places", core.ProductInput{SKU: "X6", Name: "X", CategoryID: "general", UnitPrice: dec("9.99999")}, core.ErrValidation},
		{"unknown category", core.ProductInput{SKU: "X3", Name: "X", CategoryID: "nope"}, core.ErrNotFound},
		{"duplicate sku", core.ProductInput{SKU: "SKU001", Name: "X", CategoryID: "general"}, core.ErrDuplicateKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.catalog.CreateProduct(f.ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCatalogService_UpdateProductRecomputesStatus(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(t, map[string]int{"SKU001": 5})

	reorder := 10
	p, err := f.catalog.UpdateProduct(f.ctx, "SKU001", core.ProductPatch{ReorderPoint: &reorder, UnitPrice: decPtr("12.50")})
	require.NoError(t, err)
	assert.Equal(t, core.StatusLowStock, p.Status)
	assert.Equal(t, "12.5", p.UnitPrice.String())

	zero := 0
	p, err = f.catalog.UpdateProduct(f.ctx, "SKU001", core.ProductPatch{Quantity: &zero})
	require.NoError(t, err)
	assert.Equal(t, core.StatusOutOfStock, p.Status)

	negative := -3
	_, err = f.catalog.UpdateProduct(f.ctx, "SKU001", core.ProductPatch{Quantity: &negative})
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = f.catalog.UpdateProduct(f.ctx, "NOPE", core.ProductPatch{})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCatalogService_AdjustStock(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(t, map[string]int{"SKU001": 5})

	adj, err := f.catalog.AdjustStock(f.ctx, "SKU001", 3, "recount")
	require.NoError(t, err)
	assert.Equal(t, 8, adj.Quantity)

	_, err = f.catalog.AdjustStock(f.ctx, "SKU001", -9, "damaged")
	var ise *core.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, []core.Shortfall{{SKU: "SKU001", Requested: 9, Available: 8}}, ise.Shortfalls)
	assert.Equal(t, 8, f.quantity(t, "SKU001"))

	_, err = f.catalog.AdjustStock(f.ctx, "SKU001", 0, "noop")
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestCatalogService_DeleteProductReferencedByOrder(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(t, map[string]int{"SKU001": 5, "SKU002": 5})

	_, err := f.orders.CreateOrder(f.ctx, core.SalesOrderInput{
		Customer: "Alice",
		Items:    []core.SalesItemInput{{SKU: "SKU001", Quantity: 1}},
	})
	require.NoError(t, err)

	assert.ErrorIs(t, f.catalog.DeleteProduct(f.ctx, "SKU001"), core.ErrConflict)
	require.NoError(t, f.catalog.DeleteProduct(f.ctx, "SKU002"))
	_, err = f.catalog.GetProduct(f.ctx, "SKU002")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erp-backend/internal/core"
)

func TestWeightedAverageCost(t *testing.T) {
	tests := []struct {
		name   string
		oldAvg string
		oldQty int
		cost   string
		qty    int
		want   string
	}{
		{"blend", "4.50", 10, "5.25", 12, "4.9091"},
		{"empty stock takes receipt cost", "0", 0, "3.10", 5, "3.1"},
		{"equal costs", "2", 4, "2", 4, "2"},
		{"nothing on either side", "9", 0, "7", 0, "7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.WeightedAverageCost(dec(tt.oldAvg), tt.oldQty, dec(tt.cost), tt.qty)
			assert.True(t, dec(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestInventoryEngine_ReservationIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(t, map[string]int{"SKU001": 5, "SKU002": 1})

	err := f.store.InTx(f.ctx, func(tx core.Tx) error {
		return f.engine.ApplySaleReservationTx(f.ctx, tx, []core.StockLine{
			{SKU: "SKU001", Quantity: 2},
			{SKU: "SKU002", Quantity: 3},
		})
	})
	var ise *core.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.ErrorIs(t, err, core.ErrInsufficientStock)
	assert.Equal(t, []core.Shortfall{{SKU: "SKU002", Requested: 3, Available: 1}}, ise.Shortfalls)

	assert.Equal(t, 5, f.quantity(t, "SKU001"))
	assert.Equal(t, 1, f.quantity(t, "SKU002"))
}

func TestInventoryEngine_ReservationCombinesLinesPerSKU(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(t, map[string]int{"SKU001": 5})

	err := f.store.InTx(f.ctx, func(tx core.Tx) error {
		return f.engine.ApplySaleReservationTx(f.ctx, tx, []core.StockLine{
			{SKU: "SKU001", Quantity: 3},
			{SKU: "SKU001", Quantity: 3},
		})
	})
	var ise *core.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, 6, ise.Shortfalls[0].Requested)
	assert.Equal(t, 1, ise.Shortfalls[0].Missing())

	err = f.store.InTx(f.ctx, func(tx core.Tx) error {
		return f.engine.ApplySaleReservationTx(f.ctx, tx, []core.StockLine{
			{SKU: "SKU001", Quantity: 2},
			{SKU: "SKU001", Quantity: 3},
		})
	})
	require.NoError(t, err)
	p, err := f.catalog.GetProduct(f.ctx, "SKU001")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Quantity)
	assert.Equal(t, core.StatusOutOfStock, p.Status)
}

func TestInventoryEngine_UnknownSKU(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(t, map[string]int{"SKU001": 5})

	err := f.store.InTx(f.ctx, func(tx core.Tx) error {
		return f.engine.ApplySaleReservationTx(f.ctx, tx, []core.StockLine{
			{SKU: "SKU001", Quantity: 1},
			{SKU: "GHOST", Quantity: 1},
		})
	})
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, 5, f.quantity(t, "SKU001"))
}

func TestInventoryEngine_Receipt(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(t, map[string]int{"SKU001": 10})

	err := f.store.InTx(f.ctx, func(tx core.Tx) error {
		return f.engine.ApplyReceiptTx(f.ctx, tx, []core.StockLine{{SKU: "SKU001", Quantity: 10, UnitCost: dec("6")}})
	})
	require.NoError(t, err)

	p, err := f.catalog.GetProduct(f.ctx, "SKU001")
	require.NoError(t, err)
	assert.Equal(t, 20, p.Quantity)
	assert.True(t, dec("5").Equal(p.AverageCost), "average cost %s", p.AverageCost)
	require.NotNil(t, p.LastPurchasePrice)
	assert.True(t, dec("6").Equal(*p.LastPurchasePrice))

	err = f.store.InTx(f.ctx, func(tx core.Tx) error {
		return f.engine.ApplyReceiptTx(f.ctx, tx, []core.StockLine{{SKU: "SKU001", Quantity: 1, UnitCost: dec("-1")}})
	})
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestInventoryEngine_Reverse(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(t, map[string]int{"SKU001": 0})

	err := f.store.InTx(f.ctx, func(tx core.Tx) error {
		return f.engine.ReverseSaleReservationTx(f.ctx, tx, []core.StockLine{{SKU: "SKU001", Quantity: 4}})
	})
	require.NoError(t, err)
	assert.Equal(t, 4, f.quantity(t, "SKU001"))
}

package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erp-backend/internal/core"
)

func TestParseSalesStatus(t *testing.T) {
	st, err := core.ParseSalesStatus("  shipped ")
	require.NoError(t, err)
	assert.Equal(t, core.SalesShipped, st)

	_, err = core.ParseSalesStatus("Lost")
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestParsePurchaseStatus(t *testing.T) {
	st, err := core.ParsePurchaseStatus("RECEIVED")
	require.NoError(t, err)
	assert.Equal(t, core.PurchaseReceived, st)

	_, err = core.ParsePurchaseStatus("")
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestCanTransitionSales(t *testing.T) {
	tests := []struct {
		from, to core.SalesOrderStatus
		ok       bool
	}{
		{core.SalesPending, core.SalesProcessing, true},
		{core.SalesPending, core.SalesDelivered, true},
		{core.SalesShipped, core.SalesCancelled, true},
		{core.SalesPending, core.SalesPending, true},
		{core.SalesShipped, core.SalesProcessing, false},
		{core.SalesDelivered, core.SalesCancelled, false},
		{core.SalesCancelled, core.SalesPending, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			err := core.CanTransitionSales(tt.from, tt.to)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, core.ErrInvalidTransition)
			var te *core.TransitionError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, string(tt.from), te.From)
		})
	}
}

func TestCanTransitionPurchase(t *testing.T) {
	assert.NoError(t, core.CanTransitionPurchase(core.PurchaseOrdered, core.PurchaseReceived))
	assert.NoError(t, core.CanTransitionPurchase(core.PurchasePending, core.PurchaseCancelled))
	assert.ErrorIs(t, core.CanTransitionPurchase(core.PurchaseReceived, core.PurchaseCancelled), core.ErrInvalidTransition)
	assert.ErrorIs(t, core.CanTransitionPurchase(core.PurchaseShipped, core.PurchaseOrdered), core.ErrInvalidTransition)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, core.StatusOutOfStock, core.StatusFor(0, 5))
	assert.Equal(t, core.StatusLowStock, core.StatusFor(5, 5))
	assert.Equal(t, core.StatusInStock, core.StatusFor(6, 5))
}

package core_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erp-backend/internal/core"
)

func TestPurchaseOrderService_ReceiveAppliesOnce(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(t, map[string]int{"SKU001": 10})

	po, err := f.purchases.CreatePO(f.ctx, core.PurchaseOrderInput{
		Supplier:             "Supplier Alpha",
		OrderDate:            "2025-05-01",
		ExpectedDeliveryDate: "2025-05-20",
		Items:                []core.PurchaseItemInput{{SKU: "SKU001", Quantity: 10, UnitCost: dec("6")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "PO-0001", po.PONumber)
	assert.Equal(t, core.PurchasePending, po.Status)
	assert.True(t, dec("60").Equal(po.TotalAmount))
	assert.Equal(t, 10, f.quantity(t, "SKU001"), "creating a purchase order does not move stock")

	_, err = f.purchases.UpdatePOStatus(f.ctx, po.PONumber, "Ordered")
	require.NoError(t, err)
	assert.Equal(t, 10, f.quantity(t, "SKU001"))

	received, err := f.purchases.UpdatePOStatus(f.ctx, po.PONumber, "received")
	require.NoError(t, err)
	assert.Equal(t, core.PurchaseReceived, received.Status)
	assert.True(t, received.StockReceived)
	assert.NotNil(t, received.ReceivedAt)

	p, err := f.catalog.GetProduct(f.ctx, "SKU001")
	require.NoError(t, err)
	assert.Equal(t, 20, p.Quantity)
	assert.True(t, dec("5").Equal(p.AverageCost))
	require.NotNil(t, p.LastPurchasePrice)
	assert.True(t, dec("6").Equal(*p.LastPurchasePrice))

	// Same-status request is a no-op; leaving Received is not allowed.
	_, err = f.purchases.UpdatePOStatus(f.ctx, po.ID, "Received")
	require.NoError(t, err)
	assert.Equal(t, 20, f.quantity(t, "SKU001"))

	_, err = f.purchases.UpdatePOStatus(f.ctx, po.ID, "Cancelled")
	assert.ErrorIs(t, err, core.ErrInvalidTransition)
	assert.Equal(t, 20, f.quantity(t, "SKU001"))
}

func TestPurchaseOrderService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(t, map[string]int{"SKU001": 1})

	item := []core.PurchaseItemInput{{SKU: "SKU001", Quantity: 1, UnitCost: dec("1")}}
	tests := []struct {
		name string
		in   core.PurchaseOrderInput
		want error
	}{
		{"no supplier", core.PurchaseOrderInput{Items: item}, core.ErrValidation},
		{"no items", core.PurchaseOrderInput{Supplier: "S"}, core.ErrValidation},
		{"negative cost", core.PurchaseOrderInput{Supplier: "S", Items: []core.PurchaseItemInput{{SKU: "SKU001", Quantity: 1, UnitCost: dec("-2")}}}, core.ErrValidation},
		{"created as received", core.PurchaseOrderInput{Supplier: "S", Status: core.PurchaseReceived, Items: item}, core.ErrValidation},
		{"bad expected date", core.PurchaseOrderInput{Supplier: "S", ExpectedDeliveryDate: "soon", Items: item}, core.ErrValidation},
		{"unknown sku", core.PurchaseOrderInput{Supplier: "S", Items: []core.PurchaseItemInput{{SKU: "GHOST", Quantity: 1}}}, core.ErrNotFound},
		{"cost past four places", core.PurchaseOrderInput{Supplier: "S", Items: []core.PurchaseItemInput{{SKU: "SKU001", Quantity: 1, UnitCost: dec("0.00001")}}}, core.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.purchases.CreatePO(f.ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	po, err := f.purchases.CreatePO(f.ctx, core.PurchaseOrderInput{Supplier: "S", Status: "ordered", Items: item})
	require.NoError(t, err)
	assert.Equal(t, core.PurchaseOrdered, po.Status)
	assert.Equal(t, "PO-0001", po.PONumber)
}

func TestPurchaseOrderService_CancelledNeverReceives(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(t, map[string]int{"SKU001": 3})

	po, err := f.purchases.CreatePO(f.ctx, core.PurchaseOrderInput{
		Supplier: "Supplier Beta", Items: []core.PurchaseItemInput{{SKU: "SKU001", Quantity: 7, UnitCost: dec("2")}},
	})
	require.NoError(t, err)

	_, err = f.purchases.UpdatePOStatus(f.ctx, po.ID, "Cancelled")
	require.NoError(t, err)
	_, err = f.purchases.UpdatePOStatus(f.ctx, po.ID, "Received")
	assert.ErrorIs(t, err, core.ErrInvalidTransition)
	assert.Equal(t, 3, f.quantity(t, "SKU001"))
}

func TestPurchaseOrderService_DeleteReceivedKeepsStock(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(t, map[string]int{"SKU001": 0})

	po, err := f.purchases.CreatePO(f.ctx, core.PurchaseOrderInput{
		Supplier: "Supplier Alpha", Items: []core.PurchaseItemInput{{SKU: "SKU001", Quantity: 5, UnitCost: dec("3")}},
	})
	require.NoError(t, err)
	_, err = f.purchases.UpdatePOStatus(f.ctx, po.ID, "Received")
	require.NoError(t, err)

	res, err := f.purchases.DeletePO(f.ctx, po.PONumber)
	require.NoError(t, err)
	assert.True(t, res.StockRetained)
	assert.Contains(t, res.Warning, po.PONumber)
	assert.Equal(t, 5, f.quantity(t, "SKU001"))

	_, err = f.purchases.GetPO(f.ctx, po.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestPurchaseOrderService_DeletePendingHasNoWarning(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(t, map[string]int{"SKU001": 0})

	po, err := f.purchases.CreatePO(f.ctx, core.PurchaseOrderInput{
		Supplier: "Supplier Alpha", Items: []core.PurchaseItemInput{{SKU: "SKU001", Quantity: 5, UnitCost: dec("3")}},
	})
	require.NoError(t, err)

	res, err := f.purchases.DeletePO(f.ctx, po.ID)
	require.NoError(t, err)
	assert.False(t, res.StockRetained)
	assert.Empty(t, res.Warning)

	pos, err := f.purchases.GetPOs(f.ctx, core.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, pos)
}

func TestPurchaseOrderService_ConcurrentReceiveAppliesOnce(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(t, map[string]int{"SKU001": 0})

	po, err := f.purchases.CreatePO(f.ctx, core.PurchaseOrderInput{
		Supplier: "Alpha", Status: core.PurchaseOrdered,
		Items: []core.PurchaseItemInput{{SKU: "SKU001", Quantity: 10, UnitCost: dec("6")}},
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.purchases.UpdatePOStatus(f.ctx, po.PONumber, "Received")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	assert.Equal(t, 10, f.quantity(t, "SKU001"))
	p, err := f.catalog.GetProduct(f.ctx, "SKU001")
	require.NoError(t, err)
	assert.True(t, dec("6").Equal(p.AverageCost), "average cost %s", p.AverageCost)
}

func TestPurchaseOrderService_ReceiveRacesCancel(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(t, map[string]int{"SKU001": 0})

	po, err := f.purchases.CreatePO(f.ctx, core.PurchaseOrderInput{
		Supplier: "Alpha",
		Items:    []core.PurchaseItemInput{{SKU: "SKU001", Quantity: 4, UnitCost: dec("6")}},
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var receiveErr, cancelErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, receiveErr = f.purchases.UpdatePOStatus(f.ctx, po.ID, "Received")
	}()
	go func() {
		defer wg.Done()
		_, cancelErr = f.purchases.UpdatePOStatus(f.ctx, po.ID, "Cancelled")
	}()
	wg.Wait()

	got, err := f.purchases.GetPO(f.ctx, po.ID)
	require.NoError(t, err)
	switch got.Status {
	case core.PurchaseReceived:
		assert.NoError(t, receiveErr)
		assert.ErrorIs(t, cancelErr, core.ErrInvalidTransition)
		assert.Equal(t, 4, f.quantity(t, "SKU001"))
	case core.PurchaseCancelled:
		assert.NoError(t, cancelErr)
		assert.ErrorIs(t, receiveErr, core.ErrInvalidTransition)
		assert.Equal(t, 0, f.quantity(t, "SKU001"))
		assert.False(t, got.StockReceived)
	default:
		t.Fatalf("unexpected status %s", got.Status)
	}
}

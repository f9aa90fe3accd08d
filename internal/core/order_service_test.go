package core_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erp-backend/internal/core"
)

func TestOrderService_CreateOrderReservesStock(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(t, map[string]int{"SKU001": 10, "SKU002": 10})

	order, err := f.orders.CreateOrder(f.ctx, core.SalesOrderInput{
		Customer:  "Alice Wonderland",
		OrderDate: "2025-05-10",
		Items: []core.SalesItemInput{
			{SKU: "SKU001", Quantity: 2},
			{SKU: "SKU002", Quantity: 3, UnitPrice: decPtr("7.25")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "SO-0001", order.OrderNumber)
	assert.Equal(t, core.SalesPending, order.Status)
	assert.False(t, order.StockReverted)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Product SKU001", order.Items[0].ProductName)
	assert.True(t, dec("20").Equal(order.Items[0].LineTotal))
	assert.True(t, dec("21.75").Equal(order.Items[1].LineTotal))
	assert.True(t, dec("41.75").Equal(order.TotalAmount))

	assert.Equal(t, 8, f.quantity(t, "SKU001"))
	assert.Equal(t, 7, f.quantity(t, "SKU002"))

	second, err := f.orders.CreateOrder(f.ctx, core.SalesOrderInput{
		Customer: "Bob", Items: []core.SalesItemInput{{SKU: "SKU001", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "SO-0002", second.OrderNumber)
}

func TestOrderService_CreateOrderAllOrNothing(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(t, map[string]int{"SKU001": 10, "SKU002": 1})

	_, err := f.orders.CreateOrder(f.ctx, core.SalesOrderInput{
		Customer: "Alice",
		Items: []core.SalesItemInput{
			{SKU: "SKU001", Quantity: 4},
			{SKU: "SKU002", Quantity: 2},
		},
	})
	assert.ErrorIs(t, err, core.ErrInsufficientStock)
	assert.Equal(t, 10, f.quantity(t, "SKU001"))
	assert.Equal(t, 1, f.quantity(t, "SKU002"))

	orders, err := f.orders.GetOrders(f.ctx, core.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)

	// The failed attempt does not consume an order number.
	order, err := f.orders.CreateOrder(f.ctx, core.SalesOrderInput{
		Customer: "Alice", Items: []core.SalesItemInput{{SKU: "SKU001", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "SO-0001", order.OrderNumber)
}

func TestOrderService_CreateOrderValidation(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(t, map[string]int{"SKU001": 10})

	tests := []struct {
		name string
		in   core.SalesOrderInput
		want error
	}{
		{"no customer", core.SalesOrderInput{Items: []core.SalesItemInput{{SKU: "SKU001", Quantity: 1}}}, core.ErrValidation},
		{"no items", core.SalesOrderInput{Customer: "A"}, core.ErrValidation},
		{"zero quantity", core.SalesOrderInput{Customer: "A", Items: []core.SalesItemInput{{SKU: "SKU001"}}}, core.ErrValidation},
		{"bad date", core.SalesOrderInput{Customer: "A", OrderDate: "10/05/2025", Items: []core.SalesItemInput{{SKU: "SKU001", Quantity: 1}}}, core.ErrValidation},
		{"unknown sku", core.SalesOrderInput{Customer: "A", Items: []core.SalesItemInput{{SKU: "GHOST", Quantity: 1}}}, core.ErrNotFound},
		{"price past four places", core.SalesOrderInput{Customer: "A", Items: []core.SalesItemInput{{SKU: "SKU001", Quantity: 1, UnitPrice: decPtr("1.23456")}}}, core.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.orders.CreateOrder(f.ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Equal(t, 10, f.quantity(t, "SKU001"))
}

func TestOrderService_CancelRestoresStockOnce(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(t, map[string]int{"SKU001": 10})

	order, err := f.orders.CreateOrder(f.ctx, core.SalesOrderInput{
		Customer: "Alice", Items: []core.SalesItemInput{{SKU: "SKU001", Quantity: 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, 6, f.quantity(t, "SKU001"))

	cancelled, err := f.orders.UpdateOrderStatus(f.ctx, order.OrderNumber, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, core.SalesCancelled, cancelled.Status)
	assert.True(t, cancelled.StockReverted)
	assert.Equal(t, 10, f.quantity(t, "SKU001"))

	// Repeating the cancellation is a no-op.
	_, err = f.orders.UpdateOrderStatus(f.ctx, order.ID, "Cancelled")
	require.NoError(t, err)
	assert.Equal(t, 10, f.quantity(t, "SKU001"))

	_, err = f.orders.UpdateOrderStatus(f.ctx, order.ID, "Pending")
	assert.ErrorIs(t, err, core.ErrInvalidTransition)

	// Deleting a cancelled order must not restore the stock again.
	deleted, err := f.orders.DeleteOrder(f.ctx, order.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, order.ID, deleted.ID)
	assert.Equal(t, 10, f.quantity(t, "SKU001"))

	_, err = f.orders.GetOrder(f.ctx, order.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestOrderService_DeleteActiveOrderRestoresStock(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(t, map[string]int{"SKU001": 10})

	order, err := f.orders.CreateOrder(f.ctx, core.SalesOrderInput{
		Customer: "Alice", Items: []core.SalesItemInput{{SKU: "SKU001", Quantity: 3}},
	})
	require.NoError(t, err)
	_, err = f.orders.UpdateOrderStatus(f.ctx, order.ID, "Shipped")
	require.NoError(t, err)

	_, err = f.orders.DeleteOrder(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, f.quantity(t, "SKU001"))

	_, err = f.orders.DeleteOrder(f.ctx, order.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestOrderService_StatusMachine(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(t, map[string]int{"SKU001": 10})

	order, err := f.orders.CreateOrder(f.ctx, core.SalesOrderInput{
		Customer: "Alice", Items: []core.SalesItemInput{{SKU: "SKU001", Quantity: 1}},
	})
	require.NoError(t, err)

	o, err := f.orders.UpdateOrderStatus(f.ctx, order.ID, "Processing")
	require.NoError(t, err)
	assert.Equal(t, core.SalesProcessing, o.Status)

	o, err = f.orders.UpdateOrderStatus(f.ctx, order.ID, "Delivered")
	require.NoError(t, err)
	assert.Equal(t, core.SalesDelivered, o.Status)

	_, err = f.orders.UpdateOrderStatus(f.ctx, order.ID, "Cancelled")
	assert.ErrorIs(t, err, core.ErrInvalidTransition)
	assert.Equal(t, 9, f.quantity(t, "SKU001"))

	_, err = f.orders.UpdateOrderStatus(f.ctx, order.ID, "Teleported")
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestOrderService_UpdateOrderItems(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(t, map[string]int{"SKU001": 10, "SKU002": 3})

	order, err := f.orders.CreateOrder(f.ctx, core.SalesOrderInput{
		Customer: "Alice", Items: []core.SalesItemInput{{SKU: "SKU001", Quantity: 4}},
	})
	require.NoError(t, err)

	// Swapping the reservation checks against stock with the old lines returned.
	updated, err := f.orders.UpdateOrderItems(f.ctx, order.ID, []core.SalesItemInput{
		{SKU: "SKU001", Quantity: 10},
		{SKU: "SKU002", Quantity: 1},
	})
	require.NoError(t, err)
	assert.True(t, dec("110").Equal(updated.TotalAmount))
	assert.Equal(t, 0, f.quantity(t, "SKU001"))
	assert.Equal(t, 2, f.quantity(t, "SKU002"))

	// A failing edit leaves the previous reservation in place.
	_, err = f.orders.UpdateOrderItems(f.ctx, order.ID, []core.SalesItemInput{{SKU: "SKU002", Quantity: 5}})
	assert.ErrorIs(t, err, core.ErrInsufficientStock)
	assert.Equal(t, 0, f.quantity(t, "SKU001"))
	assert.Equal(t, 2, f.quantity(t, "SKU002"))

	got, err := f.orders.GetOrder(f.ctx, order.OrderNumber)
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)

	_, err = f.orders.UpdateOrderStatus(f.ctx, order.ID, "Processing")
	require.NoError(t, err)
	_, err = f.orders.UpdateOrderItems(f.ctx, order.ID, []core.SalesItemInput{{SKU: "SKU001", Quantity: 1}})
	assert.ErrorIs(t, err, core.ErrConflict)
}

func TestOrderService_GetOrdersFilter(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(t, map[string]int{"SKU001": 10})

	for _, date := range []string{"2025-05-01", "2025-05-15", "2025-06-01"} {
		_, err := f.orders.CreateOrder(f.ctx, core.SalesOrderInput{
			Customer: "C " + date, OrderDate: date, Items: []core.SalesItemInput{{SKU: "SKU001", Quantity: 1}},
		})
		require.NoError(t, err)
	}
	_, err := f.orders.UpdateOrderStatus(f.ctx, "SO-0002", "Shipped")
	require.NoError(t, err)

	may, err := f.orders.GetOrders(f.ctx, core.OrderFilter{FromDate: "2025-05-01", ToDate: "2025-05-31"})
	require.NoError(t, err)
	assert.Len(t, may, 2)

	shipped, err := f.orders.GetOrders(f.ctx, core.OrderFilter{Status: "shipped"})
	require.NoError(t, err)
	require.Len(t, shipped, 1)
	assert.Equal(t, "SO-0002", shipped[0].OrderNumber)

	_, err = f.orders.GetOrders(f.ctx, core.OrderFilter{Status: "bogus"})
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestOrderService_ConcurrentOrdersNeverOversell(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(t, map[string]int{"SKU001": 5})

	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.orders.CreateOrder(f.ctx, core.SalesOrderInput{
				Customer: "Racer", Items: []core.SalesItemInput{{SKU: "SKU001", Quantity: 1}},
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	ok, short := 0, 0
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, core.ErrInsufficientStock)
		short++
	}
	assert.Equal(t, 5, ok)
	assert.Equal(t, 5, short)
	assert.Equal(t, 0, f.quantity(t, "SKU001"))
}

func TestOrderService_FourPlacePriceKeepsLineTotal(t *testing.T) {
	f := newFixture(t)
	f.seedProducts(t, map[string]int{"SKU001": 10})

	o, err := f.orders.CreateOrder(f.ctx, core.SalesOrderInput{
		Customer: "A",
		Items:    []core.SalesItemInput{{SKU: "SKU001", Quantity: 3, UnitPrice: decPtr("1.2345")}},
	})
	require.NoError(t, err)
	assert.True(t, dec("1.2345").Equal(o.Items[0].UnitPrice))
	assert.True(t, dec("3.70").Equal(o.Items[0].LineTotal), "line total %s", o.Items[0].LineTotal)
	assert.Equal(t, 10-3, f.quantity(t, "SKU001"))
}

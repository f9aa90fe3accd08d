package repl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"erp-backend/internal/adapters/cli"
	"erp-backend/internal/app"
)

// orderLine is one parsed "<sku> <qty> [price]" line.
type orderLine struct {
	sku   string
	qty   int
	price string
}

// readLines collects order lines until "done". ok is false on "cancel" or EOF.
func (s *session) readLines(format string, priceRequired bool) ([]orderLine, bool) {
	fmt.Fprintln(s.out, "Enter lines. Type 'done' when finished, 'cancel' to abort.")
	fmt.Fprintf(s.out, "Format per line: %s\n", format)

	var lines []orderLine
	for n := 1; ; {
		raw, ok := s.prompt(fmt.Sprintf("  Line %d: ", n))
		if !ok {
			return nil, false
		}
		switch strings.ToLower(raw) {
		case "cancel":
			return nil, false
		case "done":
			return lines, true
		case "":
			continue
		}

		parts := strings.Fields(raw)
		if len(parts) < 2 || (priceRequired && len(parts) < 3) {
			fmt.Fprintf(s.out, "  Invalid format. Use: %s\n", format)
			continue
		}
		qty, err := strconv.Atoi(parts[1])
		if err != nil || qty <= 0 {
			fmt.Fprintln(s.out, "  Invalid quantity.")
			continue
		}
		line := orderLine{sku: strings.ToUpper(parts[0]), qty: qty}
		if len(parts) >= 3 {
			price, err := decimal.NewFromString(parts[2])
			if err != nil || price.IsNegative() {
				fmt.Fprintln(s.out, "  Invalid price.")
				continue
			}
			line.price = price.String()
		}
		lines = append(lines, line)
		n++
	}
}

func (s *session) newSalesOrder(customer string) error {
	fmt.Fprintf(s.out, "Creating sales order for: %s\n", customer)
	lines, ok := s.readLines("<sku> <quantity> [unit-price]", false)
	if !ok {
		fmt.Fprintln(s.out, "Order creation cancelled.")
		return nil
	}
	if len(lines) == 0 {
		fmt.Fprintln(s.out, "No lines entered. Order not created.")
		return nil
	}
	date, _ := s.prompt("Order date (YYYY-MM-DD, leave blank for today): ")
	notes, _ := s.prompt("Notes (optional): ")

	req := app.CreateSalesOrderRequest{CustomerName: customer, OrderDate: date, Notes: notes}
	for _, l := range lines {
		req.Items = append(req.Items, app.SalesItemRequest{SKU: l.sku, Quantity: l.qty, UnitPrice: l.price})
	}
	order, err := s.svc.CreateSalesOrder(s.ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "\nSales order %s created (status %s).\n", order.OrderNumber, order.Status)
	cli.PrintSalesOrder(s.out, order)
	return nil
}

func (s *session) newPurchaseOrder(supplier string) error {
	fmt.Fprintf(s.out, "Creating purchase order for: %s\n", supplier)
	lines, ok := s.readLines("<sku> <quantity> <unit-cost>", true)
	if !ok {
		fmt.Fprintln(s.out, "Purchase order creation cancelled.")
		return nil
	}
	if len(lines) == 0 {
		fmt.Fprintln(s.out, "No lines entered. Purchase order not created.")
		return nil
	}
	date, _ := s.prompt("Order date (YYYY-MM-DD, leave blank for today): ")
	expected, _ := s.prompt("Expected delivery (YYYY-MM-DD, optional): ")
	status, _ := s.prompt("Status [Pending]: ")

	req := app.CreatePurchaseOrderRequest{
		SupplierName:         supplier,
		OrderDate:            date,
		ExpectedDeliveryDate: expected,
		Status:               status,
	}
	for _, l := range lines {
		req.Items = append(req.Items, app.PurchaseItemRequest{SKU: l.sku, Quantity: l.qty, CostPrice: l.price})
	}
	po, err := s.svc.CreatePurchaseOrder(s.ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "\nPurchase order %s created (status %s, total %s).\n", po.PONumber, po.Status, po.TotalAmount.StringFixed(2))
	return nil
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"erp-backend/internal/app"
	"erp-backend/internal/core"
)

const usage = "Available: products, stock [threshold], orders [status], purchase-orders [status], " +
	"order-status <ref> <status>, po-status <ref> <status>, sales-report [from] [to] [group_by], " +
	"purchase-report [from] [to], bal [date], validate, post, seed"

// Run executes a one-shot CLI command. args is os.Args[1:]; the first element
// is the subcommand name. Journal entries for validate and post are read as
// JSON from in.
func Run(ctx context.Context, svc app.ApplicationService, args []string, in io.Reader, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command\n%s", usage)
	}
	arg := func(i int) string {
		if i < len(args) {
			return args[i]
		}
		return ""
	}

	switch args[0] {
	case "products", "prod":
		result, err := svc.ListProducts(ctx)
		if err != nil {
			return fmt.Errorf("failed to list products: %w", err)
		}
		printProducts(out, result.Products)

	case "stock", "inventory":
		var threshold *int
		if raw := arg(1); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return fmt.Errorf("threshold must be an integer: %q", raw)
			}
			threshold = &n
		}
		report, err := svc.InventoryReport(ctx, threshold)
		if err != nil {
			return fmt.Errorf("failed to build inventory report: %w", err)
		}
		printInventory(out, report)

	case "orders", "so":
		result, err := svc.ListSalesOrders(ctx, app.OrderQuery{Status: arg(1)})
		if err != nil {
			return fmt.Errorf("failed to list sales orders: %w", err)
		}
		printSalesOrders(out, result.Orders)

	case "purchase-orders", "pos":
		result, err := svc.ListPurchaseOrders(ctx, app.OrderQuery{Status: arg(1)})
		if err != nil {
			return fmt.Errorf("failed to list purchase orders: %w", err)
		}
		printPurchaseOrders(out, result.Orders)

	case "order-status":
		if arg(2) == "" {
			return fmt.Errorf("usage: order-status <order-ref> <status>")
		}
		order, err := svc.UpdateSalesOrderStatus(ctx, arg(1), app.StatusRequest{Status: arg(2)})
		if err != nil {
			return fmt.Errorf("failed to update sales order: %w", err)
		}
		fmt.Fprintf(out, "Sales order %s is now %s.\n", order.OrderNumber, order.Status)

	case "po-status":
		if arg(2) == "" {
			return fmt.Errorf("usage: po-status <po-ref> <status>")
		}
		po, err := svc.UpdatePurchaseOrderStatus(ctx, arg(1), app.StatusRequest{Status: arg(2)})
		if err != nil {
			return fmt.Errorf("failed to update purchase order: %w", err)
		}
		fmt.Fprintf(out, "Purchase order %s is now %s.\n", po.PONumber, po.Status)

	case "sales-report", "sales":
		report, err := svc.SalesReport(ctx, app.PeriodQuery{StartDate: arg(1), EndDate: arg(2)}, arg(3))
		if err != nil {
			return fmt.Errorf("failed to build sales report: %w", err)
		}
		printSalesReport(out, report)

	case "purchase-report", "purchases":
		report, err := svc.PurchaseReport(ctx, app.PeriodQuery{StartDate: arg(1), EndDate: arg(2)}, true)
		if err != nil {
			return fmt.Errorf("failed to build purchase report: %w", err)
		}
		printPurchaseReport(out, report)

	case "bal", "balances":
		tb, err := svc.GetTrialBalance(ctx, arg(1))
		if err != nil {
			return fmt.Errorf("failed to get balances: %w", err)
		}
		printTrialBalance(out, tb)

	case "validate", "val":
		var entry core.JournalEntryInput
		if err := json.NewDecoder(in).Decode(&entry); err != nil {
			return fmt.Errorf("invalid JSON: %w", err)
		}
		if err := svc.ValidateJournalEntry(ctx, entry); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintln(out, "Journal entry is valid.")

	case "post":
		var entry core.JournalEntryInput
		if err := json.NewDecoder(in).Decode(&entry); err != nil {
			return fmt.Errorf("invalid JSON: %w", err)
		}
		posted, err := svc.CommitJournalEntry(ctx, entry)
		if err != nil {
			return fmt.Errorf("commit failed: %w", err)
		}
		fmt.Fprintf(out, "Journal entry %s posted.\n", posted.ID)

	case "seed":
		res, err := svc.SeedDemoData(ctx)
		if err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}
		fmt.Fprintf(out, "Seeded %d categories, %d products, %d accounts, %d sales orders, %d purchase orders, %d journal entries.\n",
			res.Categories, res.Products, res.Accounts, res.SalesOrders, res.PurchaseOrders, res.JournalEntries)

	default:
		return fmt.Errorf("unknown command: %s\n%s", args[0], usage)
	}
	return nil
}

func rule(out io.Writer, ch string) { fmt.Fprintln(out, strings.Repeat(ch, 78)) }

func printProducts(out io.Writer, products []core.Product) {
	rule(out, "=")
	fmt.Fprintf(out, "  %-10s %-24s %-14s %10s %8s  %s\n", "SKU", "NAME", "CATEGORY", "PRICE", "QTY", "STATUS")
	rule(out, "-")
	for _, p := range products {
		fmt.Fprintf(out, "  %-10s %-24s %-14s %10s %8d  %s\n",
			p.SKU, p.Name, p.CategoryID, p.UnitPrice.StringFixed(2), p.Quantity, p.Status)
	}
	rule(out, "=")
}

// PrintSalesOrder writes one order with its lines.
func PrintSalesOrder(out io.Writer, o *core.SalesOrder) {
	fmt.Fprintf(out, "  %s  %s  %s  %s\n", o.OrderNumber, o.OrderDate, o.Customer, o.Status)
	for _, it := range o.Items {
		fmt.Fprintf(out, "    %3d  %-10s %-24s %6d x %10s = %12s\n",
			it.LineNumber, it.SKU, it.ProductName, it.Quantity, it.UnitPrice.StringFixed(2), it.LineTotal.StringFixed(2))
	}
	fmt.Fprintf(out, "    Total: %s\n", o.TotalAmount.StringFixed(2))
}

func printSalesOrders(out io.Writer, orders []core.SalesOrder) {
	rule(out, "=")
	fmt.Fprintf(out, "  %-10s %-10s %-30s %-11s %12s\n", "NUMBER", "DATE", "CUSTOMER", "STATUS", "TOTAL")
	rule(out, "-")
	for _, o := range orders {
		fmt.Fprintf(out, "  %-10s %-10s %-30s %-11s %12s\n",
			o.OrderNumber, o.OrderDate, o.Customer, o.Status, o.TotalAmount.StringFixed(2))
	}
	if len(orders) == 0 {
		fmt.Fprintln(out, "  No sales orders found.")
	}
	rule(out, "=")
}

func printPurchaseOrders(out io.Writer, orders []core.PurchaseOrder) {
	rule(out, "=")
	fmt.Fprintf(out, "  %-10s %-10s %-30s %-11s %12s\n", "NUMBER", "DATE", "SUPPLIER", "STATUS", "TOTAL")
	rule(out, "-")
	for _, o := range orders {
		fmt.Fprintf(out, "  %-10s %-10s %-30s %-11s %12s\n",
			o.PONumber, o.OrderDate, o.Supplier, o.Status, o.TotalAmount.StringFixed(2))
	}
	if len(orders) == 0 {
		fmt.Fprintln(out, "  No purchase orders found.")
	}
	rule(out, "=")
}

func printInventory(out io.Writer, r *core.InventoryReport) {
	rule(out, "=")
	fmt.Fprintf(out, "  INVENTORY as of %s\n", r.AsOf.Format("2006-01-02 15:04"))
	rule(out, "=")
	fmt.Fprintf(out, "  %-10s %-24s %8s %8s %12s  %s\n", "SKU", "NAME", "QTY", "REORDER", "VALUE", "STATUS")
	rule(out, "-")
	for _, it := range r.Items {
		fmt.Fprintf(out, "  %-10s %-24s %8d %8d %12s  %s\n",
			it.SKU, it.Name, it.Quantity, it.ReorderPoint, it.StockValue.StringFixed(2), it.Status)
	}
	rule(out, "-")
	fmt.Fprintf(out, "  Units in stock: %d   Inventory value: %s   Low stock: %d\n",
		r.TotalItemsInStock, r.TotalInventoryValue.StringFixed(2), len(r.LowStockItems))
	rule(out, "=")
}

func printSalesReport(out io.Writer, r *core.SalesReport) {
	rule(out, "=")
	fmt.Fprintf(out, "  SALES %s .. %s\n", orOpen(r.Period.StartDate), orOpen(r.Period.EndDate))
	rule(out, "=")
	fmt.Fprintf(out, "  Orders: %d   Units: %d   Total: %s\n", r.TotalOrders, r.TotalUnits, r.TotalSalesAmount.StringFixed(2))
	if len(r.Groups) > 0 {
		rule(out, "-")
		for _, g := range r.Groups {
			fmt.Fprintf(out, "  %-30s %6d orders %8d units %14s\n", g.Key, g.Orders, g.Units, g.TotalAmount.StringFixed(2))
		}
	}
	if len(r.TopProducts) > 0 {
		rule(out, "-")
		fmt.Fprintln(out, "  Top products")
		for _, p := range r.TopProducts {
			fmt.Fprintf(out, "  %-10s %-24s %8d %14s\n", p.SKU, p.Name, p.Units, p.Revenue.StringFixed(2))
		}
	}
	rule(out, "=")
}

func printPurchaseReport(out io.Writer, r *core.PurchaseReport) {
	rule(out, "=")
	fmt.Fprintf(out, "  PURCHASES %s .. %s\n", orOpen(r.Period.StartDate), orOpen(r.Period.EndDate))
	rule(out, "=")
	fmt.Fprintf(out, "  Orders: %d   Total: %s\n", r.TotalPurchaseOrders, r.TotalPurchaseAmount.StringFixed(2))
	if len(r.BySupplier) > 0 {
		rule(out, "-")
		for _, s := range r.BySupplier {
			fmt.Fprintf(out, "  %-36s %6d orders %14s\n", s.Supplier, s.Orders, s.TotalAmount.StringFixed(2))
		}
	}
	rule(out, "=")
}

func printTrialBalance(out io.Writer, tb *core.TrialBalance) {
	rule(out, "=")
	fmt.Fprintf(out, "  TRIAL BALANCE as of %s\n", orOpen(tb.AsOfDate))
	rule(out, "=")
	fmt.Fprintf(out, "  %-10s %-30s %15s %15s\n", "CODE", "NAME", "DEBIT", "CREDIT")
	rule(out, "-")
	for _, l := range tb.Lines {
		fmt.Fprintf(out, "  %-10s %-30s %15s %15s\n", l.Code, l.Name, l.Debit.StringFixed(2), l.Credit.StringFixed(2))
	}
	rule(out, "-")
	fmt.Fprintf(out, "  %-41s %15s %15s\n", "TOTAL", tb.TotalDebit.StringFixed(2), tb.TotalCredit.StringFixed(2))
	if !tb.IsBalanced {
		fmt.Fprintln(out, "  WARNING: ledger is out of balance")
	}
	rule(out, "=")
}

func orOpen(date string) string {
	if date == "" {
		return "*"
	}
	return date
}

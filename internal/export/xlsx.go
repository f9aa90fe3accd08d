// Package export renders report projections as spreadsheet workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"erp-backend/internal/core"
)

// ContentType is the MIME type of every workbook written by this package.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// sheet accumulates rows for one worksheet.
type sheet struct {
	f    *excelize.File
	name string
	row  int
	bold int
}

func newWorkbook(firstSheet string) (*excelize.File, *sheet, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", firstSheet); err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("failed to create header style: %w", err)
	}
	return f, &sheet{f: f, name: firstSheet, bold: bold}, nil
}

func (s *sheet) addSheet(name string) (*sheet, error) {
	if _, err := s.f.NewSheet(name); err != nil {
		return nil, fmt.Errorf("failed to add sheet %s: %w", name, err)
	}
	return &sheet{f: s.f, name: name, bold: s.bold}, nil
}

func (s *sheet) append(values ...interface{}) error {
	s.row++
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return err
	}
	return s.f.SetSheetRow(s.name, cell, &values)
}

// header writes a bold row.
func (s *sheet) header(values ...interface{}) error {
	if err := s.append(values...); err != nil {
		return err
	}
	first, _ := excelize.CoordinatesToCellName(1, s.row)
	last, _ := excelize.CoordinatesToCellName(len(values), s.row)
	return s.f.SetCellStyle(s.name, first, last, s.bold)
}

func (s *sheet) blank() { s.row++ }

func money(d decimal.Decimal) float64 { return d.Round(2).InexactFloat64() }

func write(f *excelize.File, w io.Writer) error {
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// ── Reports ──────────────────────────────────────────────────────────────────

// SalesReport writes a Summary sheet, a Groups sheet when the report is
// grouped, and a Top Products sheet.
func SalesReport(w io.Writer, r *core.SalesReport) error {
	f, sum, err := newWorkbook("Summary")
	if err != nil {
		return err
	}
	defer f.Close()

	rows := [][]interface{}{
		{"Start Date", r.Period.StartDate},
		{"End Date", r.Period.EndDate},
		{"Total Orders", r.TotalOrders},
		{"Total Units", r.TotalUnits},
		{"Total Sales", money(r.TotalSalesAmount)},
	}
	if err := sum.header("Sales Report"); err != nil {
		return err
	}
	for _, row := range rows {
		if err := sum.append(row...); err != nil {
			return err
		}
	}

	if r.GroupBy != core.GroupByNone {
		groups, err := sum.addSheet("Groups")
		if err != nil {
			return err
		}
		if err := groups.header(r.GroupBy, "Orders", "Units", "Total"); err != nil {
			return err
		}
		for _, g := range r.Groups {
			if err := groups.append(g.Key, g.Orders, g.Units, money(g.TotalAmount)); err != nil {
				return err
			}
		}
	}

	top, err := sum.addSheet("Top Products")
	if err != nil {
		return err
	}
	if err := top.header("SKU", "Product", "Units", "Revenue"); err != nil {
		return err
	}
	for _, p := range r.TopProducts {
		if err := top.append(p.SKU, p.Name, p.Units, money(p.Revenue)); err != nil {
			return err
		}
	}
	return write(f, w)
}

// InventoryReport writes every product followed by a low-stock section.
func InventoryReport(w io.Writer, r *core.InventoryReport) error {
	f, s, err := newWorkbook("Inventory")
	if err != nil {
		return err
	}
	defer f.Close()

	cols := []interface{}{"SKU", "Product", "Category", "Quantity", "Reorder Point", "Status", "Average Cost", "Stock Value"}
	if err := s.header(cols...); err != nil {
		return err
	}
	for _, it := range r.Items {
		if err := s.append(it.SKU, it.Name, it.CategoryID, it.Quantity, it.ReorderPoint,
			string(it.Status), it.AverageCost.InexactFloat64(), money(it.StockValue)); err != nil {
			return err
		}
	}
	s.blank()
	if err := s.append("Total Products", r.TotalProducts); err != nil {
		return err
	}
	if err := s.append("Total Items In Stock", r.TotalItemsInStock); err != nil {
		return err
	}
	if err := s.append("Total Inventory Value", money(r.TotalInventoryValue)); err != nil {
		return err
	}

	low, err := s.addSheet("Low Stock")
	if err != nil {
		return err
	}
	if err := low.header("SKU", "Product", "Quantity", "Reorder Point", "Status"); err != nil {
		return err
	}
	for _, it := range r.LowStockItems {
		if err := low.append(it.SKU, it.Name, it.Quantity, it.ReorderPoint, string(it.Status)); err != nil {
			return err
		}
	}
	return write(f, w)
}

// PurchaseReport writes totals and, when present, a per-supplier breakdown.
func PurchaseReport(w io.Writer, r *core.PurchaseReport) error {
	f, s, err := newWorkbook("Summary")
	if err != nil {
		return err
	}
	defer f.Close()

	if err := s.header("Purchase Report"); err != nil {
		return err
	}
	for _, row := range [][]interface{}{
		{"Start Date", r.Period.StartDate},
		{"End Date", r.Period.EndDate},
		{"Total Purchase Orders", r.TotalPurchaseOrders},
		{"Total Purchases", money(r.TotalPurchaseAmount)},
	} {
		if err := s.append(row...); err != nil {
			return err
		}
	}

	if len(r.BySupplier) > 0 {
		sup, err := s.addSheet("Suppliers")
		if err != nil {
			return err
		}
		if err := sup.header("Supplier", "Orders", "Total"); err != nil {
			return err
		}
		for _, st := range r.BySupplier {
			if err := sup.append(st.Supplier, st.Orders, money(st.TotalAmount)); err != nil {
				return err
			}
		}
	}
	return write(f, w)
}

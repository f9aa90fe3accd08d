package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"erp-backend/internal/export"
)

// wantsXLSX reports whether the caller asked for a spreadsheet instead of JSON.
func wantsXLSX(r *http.Request) bool {
	return r.URL.Query().Get("format") == "xlsx"
}

// writeWorkbook renders into a buffer first so a rendering failure can still
// produce a JSON error.
func (h *Handler) writeWorkbook(w http.ResponseWriter, r *http.Request, name string, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	filename := fmt.Sprintf("%s-%s.xlsx", name, time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

// apiSalesReport handles GET /api/reports/sales?start_date=&end_date=&group_by=&format=.
func (h *Handler) apiSalesReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.SalesReport(r.Context(), queryPeriod(r), r.URL.Query().Get("group_by"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if wantsXLSX(r) {
		h.writeWorkbook(w, r, "sales-report", func(buf *bytes.Buffer) error {
			return export.SalesReport(buf, report)
		})
		return
	}
	writeJSON(w, report)
}

// apiInventoryReport handles GET /api/reports/inventory?low_stock_threshold=&format=.
func (h *Handler) apiInventoryReport(w http.ResponseWriter, r *http.Request) {
	threshold, ok := queryInt(w, r, "low_stock_threshold")
	if !ok {
		return
	}
	report, err := h.svc.InventoryReport(r.Context(), threshold)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if wantsXLSX(r) {
		h.writeWorkbook(w, r, "inventory-report", func(buf *bytes.Buffer) error {
			return export.InventoryReport(buf, report)
		})
		return
	}
	writeJSON(w, report)
}

// apiPurchaseReport handles GET /api/reports/purchases?start_date=&end_date=&group_by=supplier&format=.
func (h *Handler) apiPurchaseReport(w http.ResponseWriter, r *http.Request) {
	bySupplier := r.URL.Query().Get("group_by") == "supplier"
	report, err := h.svc.PurchaseReport(r.Context(), queryPeriod(r), bySupplier)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if wantsXLSX(r) {
		h.writeWorkbook(w, r, "purchase-report", func(buf *bytes.Buffer) error {
			return export.PurchaseReport(buf, report)
		})
		return
	}
	writeJSON(w, report)
}

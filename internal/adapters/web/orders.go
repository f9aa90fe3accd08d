package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"erp-backend/internal/app"
)

// ── Sales orders ─────────────────────────────────────────────────────────────

// apiListSalesOrders handles GET /api/sales?status=&from=&to=.
func (h *Handler) apiListSalesOrders(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListSalesOrders(r.Context(), queryOrders(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiCreateSalesOrder handles POST /api/sales.
func (h *Handler) apiCreateSalesOrder(w http.ResponseWriter, r *http.Request) {
	var req app.CreateSalesOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	order, err := h.svc.CreateSalesOrder(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, order)
}

// apiGetSalesOrder handles GET /api/sales/{ref}.
func (h *Handler) apiGetSalesOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.svc.GetSalesOrder(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, order)
}

// apiUpdateSalesOrderStatus handles PUT /api/sales/{ref}/status.
func (h *Handler) apiUpdateSalesOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req app.StatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	order, err := h.svc.UpdateSalesOrderStatus(r.Context(), chi.URLParam(r, "ref"), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, order)
}

// apiUpdateSalesOrderItems handles PUT /api/sales/{ref}/items.
func (h *Handler) apiUpdateSalesOrderItems(w http.ResponseWriter, r *http.Request) {
	var req app.UpdateSalesItemsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	order, err := h.svc.UpdateSalesOrderItems(r.Context(), chi.URLParam(r, "ref"), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, order)
}

// apiDeleteSalesOrder handles DELETE /api/sales/{ref} and returns the deleted order.
func (h *Handler) apiDeleteSalesOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.svc.DeleteSalesOrder(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, order)
}

// ── Purchase orders ──────────────────────────────────────────────────────────

// apiListPurchaseOrders handles GET /api/purchases?status=&from=&to=.
func (h *Handler) apiListPurchaseOrders(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListPurchaseOrders(r.Context(), queryOrders(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiCreatePurchaseOrder handles POST /api/purchases.
func (h *Handler) apiCreatePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	var req app.CreatePurchaseOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	po, err := h.svc.CreatePurchaseOrder(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, po)
}

// apiGetPurchaseOrder handles GET /api/purchases/{ref}.
func (h *Handler) apiGetPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	po, err := h.svc.GetPurchaseOrder(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, po)
}

// apiUpdatePurchaseOrderStatus handles PUT /api/purchases/{ref}/status.
func (h *Handler) apiUpdatePurchaseOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req app.StatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	po, err := h.svc.UpdatePurchaseOrderStatus(r.Context(), chi.URLParam(r, "ref"), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, po)
}

// apiDeletePurchaseOrder handles DELETE /api/purchases/{ref}. The response
// carries a warning when the order had already been received.
func (h *Handler) apiDeletePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.DeletePurchaseOrder(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

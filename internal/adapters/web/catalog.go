package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"erp-backend/internal/app"
)

// ── Categories ───────────────────────────────────────────────────────────────

// apiListCategories handles GET /api/categories.
func (h *Handler) apiListCategories(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListCategories(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiCreateCategory handles POST /api/categories.
func (h *Handler) apiCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req app.CreateCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cat, err := h.svc.CreateCategory(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, cat)
}

// apiGetCategory handles GET /api/categories/{id}.
func (h *Handler) apiGetCategory(w http.ResponseWriter, r *http.Request) {
	cat, err := h.svc.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, cat)
}

// apiUpdateCategory handles PUT /api/categories/{id}.
func (h *Handler) apiUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req app.UpdateCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cat, err := h.svc.UpdateCategory(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, cat)
}

// apiDeleteCategory handles DELETE /api/categories/{id}.
func (h *Handler) apiDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Products ─────────────────────────────────────────────────────────────────

// apiListProducts handles GET /api/products.
func (h *Handler) apiListProducts(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListProducts(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiCreateProduct handles POST /api/products.
func (h *Handler) apiCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req app.CreateProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.CreateProduct(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, p)
}

// apiGetProduct handles GET /api/products/{sku}.
func (h *Handler) apiGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetProduct(r.Context(), chi.URLParam(r, "sku"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, p)
}

// apiUpdateProduct handles PUT /api/products/{sku}.
func (h *Handler) apiUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req app.UpdateProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.UpdateProduct(r.Context(), chi.URLParam(r, "sku"), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, p)
}

// apiDeleteProduct handles DELETE /api/products/{sku}.
func (h *Handler) apiDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteProduct(r.Context(), chi.URLParam(r, "sku")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// apiAdjustStock handles POST /api/products/{sku}/adjustments.
func (h *Handler) apiAdjustStock(w http.ResponseWriter, r *http.Request) {
	var req app.StockAdjustmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	adj, err := h.svc.AdjustStock(r.Context(), chi.URLParam(r, "sku"), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, adj)
}

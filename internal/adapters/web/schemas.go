package web

import (
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/invopop/jsonschema"

	"erp-backend/internal/app"
	"erp-backend/internal/core"
)

// requestBodies maps schema names to the request bodies the API accepts.
var requestBodies = map[string]any{
	"category":         app.CreateCategoryRequest{},
	"category-update":  app.UpdateCategoryRequest{},
	"product":          app.CreateProductRequest{},
	"product-update":   app.UpdateProductRequest{},
	"stock-adjustment": app.StockAdjustmentRequest{},
	"sales-order":      app.CreateSalesOrderRequest{},
	"sales-items":      app.UpdateSalesItemsRequest{},
	"purchase-order":   app.CreatePurchaseOrderRequest{},
	"status":           app.StatusRequest{},
	"account":          app.CreateAccountRequest{},
	"journal-entry":    core.JournalEntryInput{},
}

func generateSchema(v any) *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		ExpandedStruct:            true,
	}
	return reflector.Reflect(v)
}

// apiSchema handles GET /api/schemas/{name}.
func (h *Handler) apiSchema(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(chi.URLParam(r, "name"))
	v, ok := requestBodies[name]
	if !ok {
		names := make([]string, 0, len(requestBodies))
		for n := range requestBodies {
			names = append(names, n)
		}
		sort.Strings(names)
		writeError(w, r, "unknown schema "+name+"; available: "+strings.Join(names, ", "), "NOT_FOUND", http.StatusNotFound)
		return
	}
	writeJSON(w, generateSchema(v))
}

package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"erp-backend/internal/app"
	"erp-backend/internal/metrics"
)

// Options configures NewHandler. Zero values are usable.
type Options struct {
	AllowedOrigins string
	RequestTimeout time.Duration
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
}

// Handler holds the ApplicationService and its collaborators.
type Handler struct {
	svc     app.ApplicationService
	log     *zap.Logger
	metrics *metrics.Metrics
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	h := &Handler{svc: svc, log: log, metrics: opts.Metrics}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(log, h.metrics))
	r.Use(Recoverer(log))
	r.Use(CORS(opts.AllowedOrigins))

	// ── Health and metrics ───────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(Timeout(opts.RequestTimeout))
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		r.Get("/api/schemas/{name}", h.apiSchema)

		// ── Catalog ──────────────────────────────────────────────────────────
		r.Route("/api/categories", func(r chi.Router) {
			r.Get("/", h.apiListCategories)
			r.Post("/", h.apiCreateCategory)
			r.Get("/{id}", h.apiGetCategory)
			r.Put("/{id}", h.apiUpdateCategory)
			r.Delete("/{id}", h.apiDeleteCategory)
		})
		r.Route("/api/products", func(r chi.Router) {
			r.Get("/", h.apiListProducts)
			r.Post("/", h.apiCreateProduct)
			r.Get("/{sku}", h.apiGetProduct)
			r.Put("/{sku}", h.apiUpdateProduct)
			r.Delete("/{sku}", h.apiDeleteProduct)
			r.Post("/{sku}/adjustments", h.apiAdjustStock)
		})

		// ── Sales ────────────────────────────────────────────────────────────
		r.Route("/api/sales", func(r chi.Router) {
			r.Get("/", h.apiListSalesOrders)
			r.Post("/", h.apiCreateSalesOrder)
			r.Get("/{ref}", h.apiGetSalesOrder)
			r.Delete("/{ref}", h.apiDeleteSalesOrder)
			r.Put("/{ref}/status", h.apiUpdateSalesOrderStatus)
			r.Put("/{ref}/items", h.apiUpdateSalesOrderItems)
		})

		// ── Purchases ────────────────────────────────────────────────────────
		r.Route("/api/purchases", func(r chi.Router) {
			r.Get("/", h.apiListPurchaseOrders)
			r.Post("/", h.apiCreatePurchaseOrder)
			r.Get("/{ref}", h.apiGetPurchaseOrder)
			r.Delete("/{ref}", h.apiDeletePurchaseOrder)
			r.Put("/{ref}/status", h.apiUpdatePurchaseOrderStatus)
		})

		// ── Reports ──────────────────────────────────────────────────────────
		r.Get("/api/reports/sales", h.apiSalesReport)
		r.Get("/api/reports/inventory", h.apiInventoryReport)
		r.Get("/api/reports/purchases", h.apiPurchaseReport)

		// ── Accounting ───────────────────────────────────────────────────────
		r.Route("/api/accounting", func(r chi.Router) {
			r.Get("/chart-of-accounts", h.apiListAccounts)
			r.Post("/chart-of-accounts", h.apiCreateAccount)
			r.Get("/accounts/{code}/statement", h.apiAccountStatement)
			r.Get("/journal-entries", h.apiListJournalEntries)
			r.Post("/journal-entries", h.apiPostJournalEntry)
			r.Post("/journal-entries/validate", h.apiValidateJournalEntry)
			r.Get("/journal-entries/{id}", h.apiGetJournalEntry)
			r.Get("/reports/trial-balance", h.apiTrialBalance)
			r.Get("/reports/income-statement", h.apiIncomeStatement)
			r.Get("/reports/balance-sheet", h.apiBalanceSheet)
		})
	})

	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string    `json:"status"`
		Time   time.Time `json:"time"`
	}
	writeJSON(w, response{Status: "ok", Time: time.Now().UTC()})
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "VALIDATION_ERROR", http.StatusBadRequest)
		return false
	}
	return true
}

// queryInt parses an optional integer query parameter.
func queryInt(w http.ResponseWriter, r *http.Request, name string) (*int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, r, name+" must be an integer", "VALIDATION_ERROR", http.StatusBadRequest)
		return nil, false
	}
	return &n, true
}

// queryPeriod reads start_date/end_date, accepting from/to as aliases.
func queryPeriod(r *http.Request) app.PeriodQuery {
	q := r.URL.Query()
	p := app.PeriodQuery{StartDate: q.Get("start_date"), EndDate: q.Get("end_date")}
	if p.StartDate == "" {
		p.StartDate = q.Get("from")
	}
	if p.EndDate == "" {
		p.EndDate = q.Get("to")
	}
	return p
}

func queryOrders(r *http.Request) app.OrderQuery {
	q := r.URL.Query()
	return app.OrderQuery{Status: q.Get("status"), FromDate: q.Get("from"), ToDate: q.Get("to")}
}

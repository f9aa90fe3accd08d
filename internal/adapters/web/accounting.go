package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"erp-backend/internal/app"
	"erp-backend/internal/core"
)

// apiListAccounts handles GET /api/accounting/chart-of-accounts.
func (h *Handler) apiListAccounts(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListAccounts(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiCreateAccount handles POST /api/accounting/chart-of-accounts.
func (h *Handler) apiCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req app.CreateAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	account, err := h.svc.CreateAccount(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, account)
}

// apiAccountStatement handles GET /api/accounting/accounts/{code}/statement?from=&to=.
func (h *Handler) apiAccountStatement(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetAccountStatement(r.Context(), chi.URLParam(r, "code"), queryPeriod(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiListJournalEntries handles GET /api/accounting/journal-entries.
func (h *Handler) apiListJournalEntries(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListJournalEntries(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiPostJournalEntry handles POST /api/accounting/journal-entries.
func (h *Handler) apiPostJournalEntry(w http.ResponseWriter, r *http.Request) {
	var in core.JournalEntryInput
	if !decodeJSON(w, r, &in) {
		return
	}
	entry, err := h.svc.CommitJournalEntry(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, entry)
}

// apiValidateJournalEntry handles POST /api/accounting/journal-entries/validate.
func (h *Handler) apiValidateJournalEntry(w http.ResponseWriter, r *http.Request) {
	var in core.JournalEntryInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := h.svc.ValidateJournalEntry(r.Context(), in); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]bool{"valid": true})
}

// apiGetJournalEntry handles GET /api/accounting/journal-entries/{id}.
func (h *Handler) apiGetJournalEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.svc.GetJournalEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, entry)
}

// apiTrialBalance handles GET /api/accounting/reports/trial-balance?date=.
func (h *Handler) apiTrialBalance(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetTrialBalance(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiIncomeStatement handles GET /api/accounting/reports/income-statement?from=&to=.
func (h *Handler) apiIncomeStatement(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetIncomeStatement(r.Context(), queryPeriod(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiBalanceSheet handles GET /api/accounting/reports/balance-sheet?date=.
func (h *Handler) apiBalanceSheet(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetBalanceSheet(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

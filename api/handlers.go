/*
handlers.go - HTTP API handlers for the budget ledger engine

PURPOSE:
  Exposes the budget ledger aggregation engine via REST API. Handles
  HTTP request/response, JSON serialization, and delegates to domain
  logic.

ENDPOINTS:
  Ledgers:
    GET    /api/ledgers                       List ledgers
    POST   /api/ledgers                       Create ledger (budget + initial items)
    GET    /api/ledgers/{id}                  Ledger details
    PUT    /api/ledgers/{id}/budget           Reconfigure total budget
    GET    /api/ledgers/{id}/summary          Maintained summary

  Items:
    GET    /api/ledgers/{id}/items            Filtered item list
    POST   /api/ledgers/{id}/items            Insert item
    PUT    /api/ledgers/{id}/items/{itemID}   Replace item (edit)
    DELETE /api/ledgers/{id}/items/{itemID}   Remove item

  Reporting:
    GET    /api/ledgers/{id}/items/partition  Expense/income partition
    GET    /api/ledgers/{id}/categories       Category totals
    GET    /api/ledgers/{id}/months           Monthly expense buckets

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: SQLite persistence (ledger catalog + item rows)
  - ledgers: Hydrated in-memory engines, one per ledger

  Every mutation goes to the in-memory engine, whose Store view writes
  through to SQLite. The summary is never persisted; it is re-derived
  from the item rows on hydration.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Ledger or item not found
  - 409: Duplicate id
  - 500: Internal errors, invariant violations

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/budget-engine/budget"
	"github.com/warp/budget-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store

	mu      sync.RWMutex
	ledgers map[string]*budget.Ledger
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store:   store,
		ledgers: make(map[string]*budget.Ledger),
	}
}

// LoadLedgers hydrates in-memory engines for all persisted ledgers.
// Summaries are re-derived from the item rows.
func (h *Handler) LoadLedgers(ctx context.Context) error {
	records, err := h.Store.ListLedgers(ctx)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, rec := range records {
		ledger, err := budget.NewLedger(ctx, h.Store.Items(rec.ID), rec.TotalBudget)
		if err != nil {
			return err
		}
		h.ledgers[rec.ID] = ledger
	}
	return nil
}

func (h *Handler) ledger(id string) (*budget.Ledger, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	l, ok := h.ledgers[id]
	return l, ok
}

// =============================================================================
// LEDGER HANDLERS
// =============================================================================

// ListLedgers returns all ledgers.
func (h *Handler) ListLedgers(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListLedgers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list ledgers", err)
		return
	}

	dtos := make([]LedgerDTO, len(records))
	for i, rec := range records {
		dtos[i] = LedgerDTO{
			ID:          rec.ID,
			Name:        rec.Name,
			TotalBudget: rec.TotalBudget.String(),
			CreatedAt:   rec.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateLedger creates a ledger with a configured budget and optional
// initial items.
func (h *Handler) CreateLedger(w http.ResponseWriter, r *http.Request) {
	var req CreateLedgerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	total, err := decimal.NewFromString(req.TotalBudget)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid total_budget", err)
		return
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}

	ctx := r.Context()
	if err := h.Store.SaveLedger(ctx, sqlite.LedgerRecord{
		ID:          id,
		Name:        req.Name,
		TotalBudget: total,
	}); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, budget.ErrDuplicateID) {
			status = http.StatusConflict
		}
		writeError(w, status, "Failed to create ledger", err)
		return
	}

	ledger, err := budget.NewLedger(ctx, h.Store.Items(id), total)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to initialize ledger", err)
		return
	}

	for _, draft := range req.Items {
		item, err := fromDraft(draft)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid initial item", err)
			return
		}
		if _, err := ledger.Insert(ctx, item); err != nil {
			writeError(w, statusFor(err), "Failed to insert initial item", err)
			return
		}
	}

	h.mu.Lock()
	h.ledgers[id] = ledger
	h.mu.Unlock()

	writeJSON(w, http.StatusCreated, LedgerDTO{
		ID:          id,
		Name:        req.Name,
		TotalBudget: total.String(),
		ItemCount:   len(req.Items),
	})
}

// GetLedger returns a single ledger.
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := h.Store.GetLedger(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get ledger", err)
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "Ledger not found", nil)
		return
	}

	ledger, ok := h.ledger(id)
	itemCount := 0
	if ok {
		if items, err := ledger.Items(r.Context()); err == nil {
			itemCount = len(items)
		}
	}

	writeJSON(w, http.StatusOK, LedgerDTO{
		ID:          rec.ID,
		Name:        rec.Name,
		TotalBudget: rec.TotalBudget.String(),
		ItemCount:   itemCount,
		CreatedAt:   rec.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// UpdateBudget reconfigures the ledger's total budget.
func (h *Handler) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ledger, ok := h.ledger(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Ledger not found", nil)
		return
	}

	var req UpdateBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	total, err := decimal.NewFromString(req.TotalBudget)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid total_budget", err)
		return
	}

	if err := h.Store.UpdateTotalBudget(r.Context(), id, total); err != nil {
		writeError(w, statusFor(err), "Failed to update budget", err)
		return
	}
	ledger.SetTotalBudget(total)

	writeJSON(w, http.StatusOK, toSummaryDTO(ledger.Summary()))
}

// GetSummary returns the maintained summary.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ledger, ok := h.ledger(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Ledger not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(ledger.Summary()))
}

// =============================================================================
// ITEM HANDLERS
// =============================================================================

// QueryItems returns the filtered item list.
// Query params: search (free text), kind (expense|income),
// status (paid|pending|overdue).
func (h *Handler) QueryItems(w http.ResponseWriter, r *http.Request) {
	ledger, ok := h.ledger(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Ledger not found", nil)
		return
	}

	spec, err := filterSpecFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}

	all, err := ledger.Items(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list items", err)
		return
	}

	writeJSON(w, http.StatusOK, QueryResponse{
		Items: toItemDTOs(budget.Filter(all, spec)),
		Total: len(all),
	})
}

// PartitionItems returns the filtered set split into expenses and income.
func (h *Handler) PartitionItems(w http.ResponseWriter, r *http.Request) {
	ledger, ok := h.ledger(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Ledger not found", nil)
		return
	}

	spec, err := filterSpecFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}

	filtered, err := ledger.Query(r.Context(), spec)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to query items", err)
		return
	}

	p := budget.PartitionByKind(filtered)
	writeJSON(w, http.StatusOK, PartitionDTO{
		Expenses: toItemDTOs(p.Expenses),
		Income:   toItemDTOs(p.Income),
	})
}

// InsertItem adds a line item and updates the summary incrementally.
func (h *Handler) InsertItem(w http.ResponseWriter, r *http.Request) {
	ledger, ok := h.ledger(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Ledger not found", nil)
		return
	}

	var draft ItemDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	item, err := fromDraft(draft)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid item", err)
		return
	}

	inserted, err := ledger.Insert(r.Context(), item)
	if err != nil {
		writeError(w, statusFor(err), "Failed to insert item", err)
		return
	}
	writeJSON(w, http.StatusCreated, toItemDTO(inserted))
}

// ReplaceItem edits an item: remove + insert with the same id.
func (h *Handler) ReplaceItem(w http.ResponseWriter, r *http.Request) {
	ledger, ok := h.ledger(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Ledger not found", nil)
		return
	}

	var draft ItemDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	draft.ID = chi.URLParam(r, "itemID")
	item, err := fromDraft(draft)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid item", err)
		return
	}

	replaced, err := ledger.Replace(r.Context(), item)
	if err != nil {
		writeError(w, statusFor(err), "Failed to replace item", err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDTO(replaced))
}

// RemoveItem deletes a line item and reverses its summary contribution.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ledger, ok := h.ledger(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Ledger not found", nil)
		return
	}

	removed, err := ledger.Remove(r.Context(), budget.ItemID(chi.URLParam(r, "itemID")))
	if err != nil {
		writeError(w, statusFor(err), "Failed to remove item", err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDTO(removed))
}

// =============================================================================
// REPORTING HANDLERS
// =============================================================================

// CategoryTotals returns per-category sums, computed fresh at read time.
// Query param: kind (default expense).
func (h *Handler) CategoryTotals(w http.ResponseWriter, r *http.Request) {
	ledger, ok := h.ledger(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Ledger not found", nil)
		return
	}

	kind := budget.KindExpense
	if k := r.URL.Query().Get("kind"); k != "" {
		kind = budget.Kind(k)
		if !kind.Valid() {
			writeError(w, http.StatusBadRequest, "Invalid kind", nil)
			return
		}
	}

	totals, err := ledger.CategoryTotals(r.Context(), kind)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute totals", err)
		return
	}
	writeJSON(w, http.StatusOK, totalsToJSON(totals))
}

// MonthlyTotals returns expense totals bucketed by creation month.
func (h *Handler) MonthlyTotals(w http.ResponseWriter, r *http.Request) {
	ledger, ok := h.ledger(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Ledger not found", nil)
		return
	}

	items, err := ledger.Items(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list items", err)
		return
	}
	writeJSON(w, http.StatusOK, totalsToJSON(budget.MonthlyExpenseTotals(items)))
}

// =============================================================================
// HELPERS
// =============================================================================

func filterSpecFromQuery(r *http.Request) (budget.FilterSpec, error) {
	spec := budget.FilterSpec{Text: r.URL.Query().Get("search")}

	if k := r.URL.Query().Get("kind"); k != "" {
		kind := budget.Kind(k)
		if !kind.Valid() {
			return budget.FilterSpec{}, errors.New("kind must be expense or income")
		}
		spec.Kind = &kind
	}
	if st := r.URL.Query().Get("status"); st != "" {
		status := budget.Status(st)
		if !status.Valid() {
			return budget.FilterSpec{}, errors.New("status must be paid, pending or overdue")
		}
		spec.Status = &status
	}
	return spec, nil
}

func statusFor(err error) int {
	switch {
	case budget.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, budget.ErrDuplicateID):
		return http.StatusConflict
	case budget.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

package history

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dukaanbill/backend-billing/internal/common"
	"github.com/dukaanbill/backend-billing/internal/store"
)

// Handler serves the archived invoice list.
type Handler struct {
	Store *store.Store
}

// Routes mounts the history endpoints on a fresh router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	return r
}

// List returns archived invoices, newest first. The q parameter filters by
// invoice number or customer name substring.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Store.SearchHistory(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to load history", nil)
		return
	}
	// Stored oldest first; shopkeepers scan from the most recent sale.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	common.Data(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

// Package api exposes the watchlist core to browser clients over REST.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/watchdeck/watchdeck/internal/ratelimit"
	"github.com/watchdeck/watchdeck/internal/watchlist"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	core *watchlist.Core
}

// NewHandler creates a new Handler
func NewHandler(core *watchlist.Core) *Handler {
	return &Handler{core: core}
}

// GetWatchlist handles GET /watchlist
func (h *Handler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.core.Stocks())
}

// AddStock handles POST /watchlist
func (h *Handler) AddStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol string `json:"symbol"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	err := h.core.AddStock(r.Context(), req.Symbol)
	switch {
	case errors.Is(err, watchlist.ErrEmptySymbol):
		http.Error(w, "symbol is required", http.StatusBadRequest)
		return
	case errors.Is(err, watchlist.ErrDuplicateSymbol):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case errors.Is(err, watchlist.ErrWatchlistFull):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// The entry is a loading placeholder at this point; the quote resolves
	// asynchronously and subsequent GETs see the populated entry.
	respondJSON(w, http.StatusAccepted, h.core.Stocks())
}

// RemoveStock handles DELETE /watchlist/{symbol}
func (h *Handler) RemoveStock(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	symbol := vars["symbol"]

	if err := h.core.RemoveStock(r.Context(), symbol); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RetryStock handles POST /watchlist/{symbol}/retry
func (h *Handler) RetryStock(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	symbol := vars["symbol"]

	if err := h.core.RetryStock(r.Context(), symbol); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"status": "retrying"})
}

// GetSelected handles GET /watchlist/selected
func (h *Handler) GetSelected(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.core.Selected())
}

// SelectStock handles PUT /watchlist/selected
func (h *Handler) SelectStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol string `json:"symbol"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.core.SelectStock(r.Context(), req.Symbol); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, h.core.Selected())
}

// ClearSelection handles DELETE /watchlist/selected
func (h *Handler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	h.core.ClearSelection(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// RefreshAll handles POST /refresh. Manual refreshes go through the rate
// limiter; rejections come back as 429 with the reason and wait time.
func (h *Handler) RefreshAll(w http.ResponseWriter, r *http.Request) {
	res := h.core.RefreshAll(r.Context(), true)
	if !res.Allowed {
		respondJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"allowed":      false,
			"reason":       res.Reason,
			"wait_seconds": int(res.WaitTime.Round(time.Second).Seconds()),
			"message":      ratelimit.ErrorMessage(res),
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"allowed": true})
}

// Search handles GET /search?q=. The response waits for the debounce window
// so rapid keystrokes collapse into a single upstream call; superseded
// requests return an empty list.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	select {
	case results := <-h.core.SearchStocks(query):
		respondJSON(w, http.StatusOK, results)
	case <-r.Context().Done():
		// Client went away before the debounce window elapsed.
	}
}

// GetSummary handles GET /watchlist/summary
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.core.Summarize())
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

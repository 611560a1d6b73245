package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// Watchlist routes
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/watchlist", handler.GetWatchlist).Methods("GET")
	api.HandleFunc("/watchlist", handler.AddStock).Methods("POST")
	api.HandleFunc("/watchlist/summary", handler.GetSummary).Methods("GET")
	api.HandleFunc("/watchlist/selected", handler.GetSelected).Methods("GET")
	api.HandleFunc("/watchlist/selected", handler.SelectStock).Methods("PUT")
	api.HandleFunc("/watchlist/selected", handler.ClearSelection).Methods("DELETE")
	api.HandleFunc("/watchlist/{symbol}", handler.RemoveStock).Methods("DELETE")
	api.HandleFunc("/watchlist/{symbol}/retry", handler.RetryStock).Methods("POST")
	api.HandleFunc("/refresh", handler.RefreshAll).Methods("POST")
	api.HandleFunc("/search", handler.Search).Methods("GET")

	return r
}

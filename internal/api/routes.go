package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// Stock routes. Fixed paths are registered before the {horizon}
	// catch-all so "symbols" is never parsed as a horizon.
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/stocks/symbols", handler.GetSymbols).Methods("GET")
	api.HandleFunc("/stocks/anomalies/{horizon}", handler.GetAnomalies).Methods("GET")
	api.HandleFunc("/stocks/performance/{horizon}", handler.GetPerformance).Methods("GET")
	api.HandleFunc("/stocks/{horizon}", handler.GetSeries).Methods("GET")

	return r
}

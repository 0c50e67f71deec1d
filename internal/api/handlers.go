package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mjaszc/stocks-watcher/internal/analytics"
	"github.com/mjaszc/stocks-watcher/internal/series"
)

// requestTimeout bounds every fast-store and slow-store access made
// on behalf of one request.
const requestTimeout = 15 * time.Second

// SymbolLister provides the distinct symbols known to the bar store.
type SymbolLister interface {
	ListSymbols(ctx context.Context) ([]string, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	fetcher series.Fetcher
	symbols SymbolLister
}

// NewHandler creates a new Handler
func NewHandler(fetcher series.Fetcher, symbols SymbolLister) *Handler {
	return &Handler{
		fetcher: fetcher,
		symbols: symbols,
	}
}

// GetSeries handles GET /stocks/{horizon}?symbols=A,B
func (h *Handler) GetSeries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := h.fetcher.Fetch(ctx, mux.Vars(r)["horizon"], r.URL.Query().Get("symbols"))
	if err != nil {
		respondFetchError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetSymbols handles GET /stocks/symbols
func (h *Handler) GetSymbols(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	symbols, err := h.symbols.ListSymbols(ctx)
	if err != nil {
		log.Printf("Failed to list symbols: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if symbols == nil {
		symbols = []string{}
	}

	respondJSON(w, http.StatusOK, symbols)
}

// GetAnomalies handles GET /stocks/anomalies/{horizon}?symbols=A,B
func (h *Handler) GetAnomalies(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := h.fetcher.Fetch(ctx, mux.Vars(r)["horizon"], r.URL.Query().Get("symbols"))
	if err != nil {
		respondFetchError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, analytics.DetectAnomalies(result))
}

// GetPerformance handles GET /stocks/performance/{horizon}?symbols=A,B
func (h *Handler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := h.fetcher.Fetch(ctx, mux.Vars(r)["horizon"], r.URL.Query().Get("symbols"))
	if err != nil {
		respondFetchError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, analytics.RankPerformance(result))
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// respondFetchError maps the fetcher error taxonomy onto HTTP status
// codes. Validation and not-found messages pass through to the
// caller; anything else is reported generically with the cause logged.
func respondFetchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, series.ErrInvalidHorizon), errors.Is(err, series.ErrNoSymbols):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, series.ErrSymbolNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		log.Printf("Failed to fetch series: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

package series

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mjaszc/stocks-watcher/internal/models"
)

var (
	// ErrInvalidHorizon reports a horizon outside the supported set.
	ErrInvalidHorizon = errors.New("invalid horizon")
	// ErrNoSymbols reports an empty symbol list after parsing.
	ErrNoSymbols = errors.New("at least one symbol must be provided")
	// ErrSymbolNotFound reports a requested symbol with no rows in
	// the horizon's window. The wrapped error names the symbol.
	ErrSymbolNotFound = errors.New("no data for symbol")
)

// Fetcher serves rebased price series for a horizon and a
// comma-separated symbol list.
type Fetcher interface {
	Fetch(ctx context.Context, horizon, symbolsCSV string) (models.SeriesMap, error)
}

// SeriesStore is the slow-store surface the fetcher reads from.
type SeriesStore interface {
	GetRebasedSeries(ctx context.Context, horizon models.Horizon, symbols []string) (models.SeriesMap, error)
}

// StoreFetcher reads rebased series straight from the slow store,
// one batched query per request.
type StoreFetcher struct {
	store SeriesStore
}

// NewStoreFetcher creates a fetcher backed by the given store
func NewStoreFetcher(store SeriesStore) *StoreFetcher {
	return &StoreFetcher{store: store}
}

// Fetch retrieves the rebased series for every requested symbol.
// A symbol without any rows fails the request with ErrSymbolNotFound.
func (f *StoreFetcher) Fetch(ctx context.Context, horizon, symbolsCSV string) (models.SeriesMap, error) {
	h, symbols, err := parseRequest(horizon, symbolsCSV)
	if err != nil {
		return nil, err
	}

	result, err := f.store.GetRebasedSeries(ctx, h, symbols)
	if err != nil {
		return nil, err
	}

	for _, symbol := range symbols {
		if _, ok := result[symbol]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
		}
	}
	return result, nil
}

// parseRequest validates the horizon and normalizes the symbol list:
// whitespace trimmed, uppercased, empty entries dropped.
func parseRequest(horizon, symbolsCSV string) (models.Horizon, []string, error) {
	h, ok := models.HorizonFromString(horizon)
	if !ok {
		return "", nil, fmt.Errorf("%w: %q (must be one of %v)", ErrInvalidHorizon, horizon, models.Horizons)
	}

	var symbols []string
	for _, s := range strings.Split(symbolsCSV, ",") {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			symbols = append(symbols, s)
		}
	}
	if len(symbols) == 0 {
		return "", nil, ErrNoSymbols
	}
	return h, symbols, nil
}

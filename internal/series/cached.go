package series

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mjaszc/stocks-watcher/internal/cache"
	"github.com/mjaszc/stocks-watcher/internal/models"
)

// CachedFetcher decorates a Fetcher with cache-aside behavior: each
// symbol is looked up in the fast store first, the misses are fetched
// from the inner fetcher in one batched call, and every freshly
// fetched series is written back with the configured TTL.
//
// Fast-store failures degrade to misses, so a down cache slows reads
// down but never blocks them. Concurrent requests for the same
// missing symbol may both fetch and both write; the writes carry
// equivalent data, so the race is benign.
type CachedFetcher struct {
	inner Fetcher
	cache cache.FastCache
	ttl   time.Duration
}

// NewCachedFetcher wraps inner with a fast store and entry TTL
func NewCachedFetcher(inner Fetcher, fastCache cache.FastCache, ttl time.Duration) *CachedFetcher {
	return &CachedFetcher{inner: inner, cache: fastCache, ttl: ttl}
}

// Fetch implements Fetcher
func (f *CachedFetcher) Fetch(ctx context.Context, horizon, symbolsCSV string) (models.SeriesMap, error) {
	h, symbols, err := parseRequest(horizon, symbolsCSV)
	if err != nil {
		return nil, err
	}

	final := make(models.SeriesMap, len(symbols))
	var missing []string

	for _, symbol := range symbols {
		if _, ok := final[symbol]; ok {
			continue
		}
		key := CacheKey(h, symbol)

		data, err := f.cache.Get(ctx, key)
		if err != nil {
			if !errors.Is(err, cache.ErrCacheMiss) {
				log.Printf("Fast store degraded, treating %s as a miss: %v", key, err)
			}
			missing = append(missing, symbol)
			continue
		}

		var points []models.SeriesPoint
		if err := json.Unmarshal(data, &points); err != nil {
			log.Printf("Discarding malformed cache entry %s: %v", key, err)
			missing = append(missing, symbol)
			continue
		}
		final[symbol] = points
	}

	if len(missing) > 0 {
		fetched, err := f.inner.Fetch(ctx, string(h), strings.Join(missing, ","))
		if err != nil {
			return nil, err
		}

		for symbol, points := range fetched {
			if data, err := json.Marshal(points); err == nil {
				if err := f.cache.Set(ctx, CacheKey(h, symbol), data, f.ttl); err != nil {
					log.Printf("Failed to repopulate fast store for %s: %v", symbol, err)
				}
			}
			final[symbol] = points
		}
	}

	return final, nil
}

// CacheKey builds the fast-store key for one symbol at one horizon,
// e.g. "stock:1mo:AAPL.US".
func CacheKey(h models.Horizon, symbol string) string {
	return fmt.Sprintf("stock:%s:%s", h, symbol)
}

package ingest

import (
	"context"
	"fmt"
	"log"

	"github.com/mjaszc/stocks-watcher/internal/models"
	"github.com/mjaszc/stocks-watcher/internal/normalize"
)

// BarStore is the persistence surface the loader writes through.
type BarStore interface {
	InsertBarsBatch(ctx context.Context, bars []*models.Bar) (int64, error)
}

// Publisher announces ingestion progress to downstream consumers.
type Publisher interface {
	PublishBarsIngested(ctx context.Context, symbol string, rows int) error
	PublishBarsRebased(ctx context.Context, symbol string) error
}

// Loader runs the refresh cycle for a symbol: download the latest
// dataset, store the new bars, recompute the rebased series against
// the advanced as-of date, and notify downstream consumers.
type Loader struct {
	downloader *Downloader
	store      BarStore
	engine     *normalize.Engine
	producer   Publisher // optional
}

// NewLoader creates a loader; producer may be nil when Kafka is not configured
func NewLoader(downloader *Downloader, store BarStore, engine *normalize.Engine, producer Publisher) *Loader {
	return &Loader{
		downloader: downloader,
		store:      store,
		engine:     engine,
		producer:   producer,
	}
}

// RefreshSymbol ingests and renormalizes one symbol
func (l *Loader) RefreshSymbol(ctx context.Context, symbol string) error {
	bars, err := l.downloader.FetchDaily(ctx, symbol)
	if err != nil {
		return err
	}
	if len(bars) == 0 {
		return fmt.Errorf("empty dataset for %s", symbol)
	}

	inserted, err := l.store.InsertBarsBatch(ctx, bars)
	if err != nil {
		return err
	}
	log.Printf("Ingested %d new bars for %s (%d rows in dataset)", inserted, symbol, len(bars))

	if l.producer != nil {
		if err := l.producer.PublishBarsIngested(ctx, symbol, int(inserted)); err != nil {
			log.Printf("Failed to publish ingest event for %s: %v", symbol, err)
		}
	}

	if err := l.engine.Recompute(ctx, symbol); err != nil {
		return err
	}

	if l.producer != nil {
		if err := l.producer.PublishBarsRebased(ctx, symbol); err != nil {
			log.Printf("Failed to publish rebase event for %s: %v", symbol, err)
		}
	}
	return nil
}

// RefreshAll refreshes every symbol, isolating per-symbol failures
func (l *Loader) RefreshAll(ctx context.Context, symbols []string) {
	for _, symbol := range symbols {
		if err := l.RefreshSymbol(ctx, symbol); err != nil {
			log.Printf("Skipping refresh for %s: %v", symbol, err)
		}
	}
}

package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/mjaszc/stocks-watcher/internal/ingest"
)

// Scheduler runs the periodic bar refresh. The cron fires at most one
// refresh cycle at a time per process, which keeps normalization
// at-most-once per symbol as long as a single worker owns a symbol.
type Scheduler struct {
	Cron    *cron.Cron
	Loader  *ingest.Loader
	Symbols []string
	Ctx     context.Context
}

// NewScheduler creates a new Scheduler
func NewScheduler(ctx context.Context, loader *ingest.Loader, symbols []string) *Scheduler {
	return &Scheduler{
		Cron:    cron.New(),
		Loader:  loader,
		Symbols: symbols,
		Ctx:     ctx,
	}
}

// Register adds the refresh task under the given cron spec
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the refresh task immediately (for RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.refreshTask()
}

func (s *Scheduler) refreshTask() {
	log.Printf("[INFO] refreshing %d symbols", len(s.Symbols))
	s.Loader.RefreshAll(s.Ctx, s.Symbols)
	log.Println("[INFO] refresh cycle finished")
}

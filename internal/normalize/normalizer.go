package normalize

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mjaszc/stocks-watcher/internal/models"
)

// ErrZeroBasePrice reports a data-integrity problem: the anchor bar
// for some horizon closed at zero, so no rebased value can be derived
// from it. The symbol's normalization is aborted rather than letting
// an inf/NaN-equivalent propagate.
var ErrZeroBasePrice = errors.New("zero base price")

var oneHundred = decimal.NewFromInt(100)

// BarStore is the slice of the persistence layer the engine needs.
type BarStore interface {
	GetBarsBySymbol(ctx context.Context, symbol string) ([]*models.Bar, error)
	ReplaceRebased(ctx context.Context, symbol string, rebased []models.RebasedRow) error
}

// Engine recomputes base-100 rebased price series. Recomputation is
// whole-symbol: previously stored values never survive a shift of the
// as-of date.
type Engine struct {
	store BarStore
}

// NewEngine creates a normalization engine backed by the given store
func NewEngine(store BarStore) *Engine {
	return &Engine{store: store}
}

// Recompute recalculates the rebased values for every horizon of one
// symbol and replaces the stored ones in a single transaction.
func (e *Engine) Recompute(ctx context.Context, symbol string) error {
	bars, err := e.store.GetBarsBySymbol(ctx, symbol)
	if err != nil {
		return fmt.Errorf("failed to load bars for %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil
	}

	asOf := bars[len(bars)-1].Date
	rebased, err := Compute(symbol, bars, asOf)
	if err != nil {
		return err
	}

	if err := e.store.ReplaceRebased(ctx, symbol, rebased); err != nil {
		return fmt.Errorf("failed to store rebased values for %s: %w", symbol, err)
	}
	return nil
}

// RecomputeAll runs Recompute for each symbol. Failures are isolated:
// a bad symbol is logged and skipped, the rest still get recomputed.
func (e *Engine) RecomputeAll(ctx context.Context, symbols []string) {
	for _, symbol := range symbols {
		if err := e.Recompute(ctx, symbol); err != nil {
			log.Printf("Skipping normalization for %s: %v", symbol, err)
		}
	}
}

// basePoint is the per-invocation anchor selected for one horizon.
// Base prices are never shared state between symbols.
type basePoint struct {
	date  time.Time
	price decimal.Decimal
}

// Compute derives the rebased values for all horizons from a symbol's
// full bar history, ordered by date ascending. For each horizon the
// anchor is the bar closest to the calendar lookback date (earliest
// bar wins a distance tie), every bar dated on or after the window
// start is rebased to close/anchor*100 in exact decimal arithmetic,
// and bars outside the window carry no value for that horizon.
func Compute(symbol string, bars []*models.Bar, asOf time.Time) ([]models.RebasedRow, error) {
	rows := make([]models.RebasedRow, len(bars))
	for i, b := range bars {
		rows[i] = models.RebasedRow{Date: b.Date, Values: make(map[models.Horizon]decimal.Decimal)}
	}

	for _, h := range models.Horizons {
		windowStart := h.Shift(asOf)

		base := selectBase(bars, windowStart)
		if base.price.IsZero() {
			return nil, fmt.Errorf("%w for %s at %s (horizon %s)",
				ErrZeroBasePrice, symbol, base.date.Format("2006-01-02"), h)
		}

		for i, b := range bars {
			if b.Date.Before(windowStart) {
				continue
			}
			rows[i].Values[h] = b.Close.Div(base.price).Mul(oneHundred)
		}
	}

	out := rows[:0]
	for _, row := range rows {
		if len(row.Values) > 0 {
			out = append(out, row)
		}
	}
	return out, nil
}

// selectBase picks the bar whose date is nearest to the lookback
// date. Bars arrive in ascending date order, so on equal distance the
// earlier bar is kept, which makes the choice deterministic.
func selectBase(bars []*models.Bar, lookback time.Time) basePoint {
	best := basePoint{date: bars[0].Date, price: bars[0].Close}
	bestDist := absDuration(bars[0].Date.Sub(lookback))
	for _, b := range bars[1:] {
		if d := absDuration(b.Date.Sub(lookback)); d < bestDist {
			best = basePoint{date: b.Date, price: b.Close}
			bestDist = d
		}
	}
	return best
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bar represents one trading day of OHLCV data for a stock.
// Bars are immutable once ingested: re-ingesting the same
// (symbol, date) pair is discarded, never updated.
type Bar struct {
	ID        int64           `json:"id"`
	Symbol    string          `json:"symbol"`
	Date      time.Time       `json:"date"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    int64           `json:"volume"`
	CreatedAt time.Time       `json:"created_at"`
}

// SeriesPoint is one dated rebased value served to clients.
// The rebased price equals 100 at the horizon's anchor bar.
type SeriesPoint struct {
	Date    time.Time       `json:"date"`
	Rebased decimal.Decimal `json:"rebased"`
}

// SeriesMap groups rebased series by symbol.
type SeriesMap map[string][]SeriesPoint

// RebasedRow holds the recomputed rebased values for a single bar.
// Values contains only the horizons whose window includes the bar's
// date; absent horizons persist as NULL.
type RebasedRow struct {
	Date   time.Time
	Values map[Horizon]decimal.Decimal
}

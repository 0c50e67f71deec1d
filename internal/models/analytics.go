package models

import "github.com/shopspring/decimal"

// AnomalyRecord flags one statistically unusual daily move in a
// rebased series. DateIndex points into the price series, so it is
// offset by one from the index of the offending return.
type AnomalyRecord struct {
	DateIndex int             `json:"date_index"`
	Price     decimal.Decimal `json:"price"`
	ReturnPct float64         `json:"return_pct"`
	ZScore    float64         `json:"z_score"`
}

// PerformanceRecord summarizes one symbol's performance over a
// horizon. Rebased series start at 100, so performance is simply
// the latest value minus 100, already in percent.
type PerformanceRecord struct {
	Symbol         string          `json:"symbol"`
	PerformancePct decimal.Decimal `json:"performance_pct"`
	LatestValue    decimal.Decimal `json:"latest_value"`
}

// PerformanceExtremes carries the single best and single worst
// performer. Both fields are nil when no symbol had data, which
// marshals as an empty object rather than an error.
type PerformanceExtremes struct {
	Best  *PerformanceRecord `json:"best,omitempty"`
	Worst *PerformanceRecord `json:"worst,omitempty"`
}

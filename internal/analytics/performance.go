package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mjaszc/stocks-watcher/internal/models"
)

var baseline = decimal.NewFromInt(100)

// RankPerformance picks the single best and single worst performer
// from a set of rebased series. Performance is the latest rebased
// value minus the 100 baseline, so it is already a percentage.
// Symbols with empty series are skipped; if none have data the result
// is empty rather than an error. Symbols are ranked in alphabetical
// insertion order and the descending sort is stable, so equal
// performers keep that order; no secondary tie-break key is applied.
func RankPerformance(seriesMap models.SeriesMap) models.PerformanceExtremes {
	symbols := make([]string, 0, len(seriesMap))
	for symbol := range seriesMap {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	var ranking []models.PerformanceRecord
	for _, symbol := range symbols {
		points := seriesMap[symbol]
		if len(points) == 0 {
			continue
		}
		latest := points[len(points)-1].Rebased
		ranking = append(ranking, models.PerformanceRecord{
			Symbol:         symbol,
			PerformancePct: latest.Sub(baseline).Round(2),
			LatestValue:    latest,
		})
	}

	if len(ranking) == 0 {
		return models.PerformanceExtremes{}
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].PerformancePct.GreaterThan(ranking[j].PerformancePct)
	})

	return models.PerformanceExtremes{
		Best:  &ranking[0],
		Worst: &ranking[len(ranking)-1],
	}
}

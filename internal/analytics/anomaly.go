package analytics

import (
	"fmt"
	"log"
	"math"

	"github.com/mjaszc/stocks-watcher/internal/models"
)

// zScoreThreshold is the number of standard deviations a daily return
// must deviate from the mean to count as anomalous.
const zScoreThreshold = 2.5

// DetectAnomalies flags statistically unusual daily moves in each
// symbol's rebased series. Symbols producing no anomalies are omitted
// from the result. A symbol whose series cannot be analyzed is logged
// and skipped; one bad symbol never aborts the batch.
func DetectAnomalies(seriesMap models.SeriesMap) map[string][]models.AnomalyRecord {
	results := make(map[string][]models.AnomalyRecord)

	for symbol, points := range seriesMap {
		anomalies, err := scoreSeries(points)
		if err != nil {
			log.Printf("Skipping anomaly detection for %s: %v", symbol, err)
			continue
		}
		if len(anomalies) > 0 {
			results[symbol] = anomalies
		}
	}
	return results
}

// scoreSeries computes daily returns, their population mean and
// standard deviation, and flags every return whose z-score exceeds
// the threshold. Fewer than two points yield no returns and no
// anomalies. Zero variance yields none either: when every return is
// identical there is nothing to deviate from.
func scoreSeries(points []models.SeriesPoint) ([]models.AnomalyRecord, error) {
	if len(points) < 2 {
		return nil, nil
	}

	prices := make([]float64, len(points))
	for i, p := range points {
		prices[i], _ = p.Rebased.Float64()
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		prev := prices[i-1]
		if prev == 0 {
			return nil, fmt.Errorf("zero price at index %d", i-1)
		}
		returns[i-1] = (prices[i] - prev) / prev
	}

	mean, stddev := populationStats(returns)
	if stddev == 0 {
		return nil, nil
	}
	if math.IsNaN(mean) || math.IsNaN(stddev) {
		return nil, fmt.Errorf("malformed return series")
	}

	var anomalies []models.AnomalyRecord
	for i, ret := range returns {
		z := (ret - mean) / stddev
		if math.Abs(z) > zScoreThreshold {
			// Return i is the move into price i+1.
			priceIndex := i + 1
			anomalies = append(anomalies, models.AnomalyRecord{
				DateIndex: priceIndex,
				Price:     points[priceIndex].Rebased,
				ReturnPct: round2(ret * 100),
				ZScore:    round2(z),
			})
		}
	}
	return anomalies, nil
}

func populationStats(values []float64) (mean, stddev float64) {
	n := float64(len(values))
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / n

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / n)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

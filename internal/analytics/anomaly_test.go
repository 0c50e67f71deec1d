package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjaszc/stocks-watcher/internal/models"
)

func seriesOf(values ...float64) []models.SeriesPoint {
	points := make([]models.SeriesPoint, len(values))
	date := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, v := range values {
		points[i] = models.SeriesPoint{Date: date.AddDate(0, 0, i), Rebased: decimal.NewFromFloat(v)}
	}
	return points
}

func TestDetectAnomaliesFlagsSingleOutlier(t *testing.T) {
	// Steady +1% drift with one large drop planted at price index 5.
	values := []float64{100, 101, 102.01, 103.03, 104.06, 52.03, 52.55, 53.08, 53.61, 54.15}
	result := DetectAnomalies(models.SeriesMap{"AAPL.US": seriesOf(values...)})

	require.Contains(t, result, "AAPL.US")
	anomalies := result["AAPL.US"]
	require.Len(t, anomalies, 1)

	a := anomalies[0]
	assert.Equal(t, 5, a.DateIndex)
	assert.True(t, decimal.NewFromFloat(52.03).Equal(a.Price))
	assert.InDelta(t, -50.0, a.ReturnPct, 0.1)
	assert.Greater(t, a.ZScore, -3.5)
	assert.Less(t, a.ZScore, -2.5)
}

func TestDetectAnomaliesZeroVarianceYieldsNone(t *testing.T) {
	// Constant +10% each day: every return identical, no deviation to
	// measure regardless of the move's magnitude.
	result := DetectAnomalies(models.SeriesMap{
		"AAPL.US": seriesOf(100, 110, 121, 133.1),
	})
	assert.Empty(t, result)
}

func TestDetectAnomaliesOmitsQuietSymbols(t *testing.T) {
	quiet := seriesOf(100, 100.5, 101, 100.7, 101.2, 100.9, 101.4)
	spiky := seriesOf(100, 100.2, 100.4, 100.6, 100.8, 101.0, 101.2, 101.4, 101.6, 101.8, 160, 160.2, 160.4, 160.6, 160.8)

	result := DetectAnomalies(models.SeriesMap{
		"QUIET.US": quiet,
		"SPIKY.US": spiky,
	})

	assert.NotContains(t, result, "QUIET.US")
	require.Contains(t, result, "SPIKY.US")
	assert.Equal(t, 10, result["SPIKY.US"][0].DateIndex)
}

func TestDetectAnomaliesShortSeriesYieldsNone(t *testing.T) {
	result := DetectAnomalies(models.SeriesMap{
		"ONE.US":   seriesOf(100),
		"EMPTY.US": nil,
	})
	assert.Empty(t, result)
}

func TestDetectAnomaliesSkipsMalformedSymbol(t *testing.T) {
	// A zero price makes the return series undefined for that symbol;
	// the other symbol must still be analyzed.
	spiky := seriesOf(100, 100.2, 100.4, 100.6, 100.8, 101.0, 101.2, 101.4, 101.6, 101.8, 160, 160.2, 160.4, 160.6, 160.8)
	result := DetectAnomalies(models.SeriesMap{
		"BAD.US":   seriesOf(100, 0, 100),
		"SPIKY.US": spiky,
	})

	assert.NotContains(t, result, "BAD.US")
	assert.Contains(t, result, "SPIKY.US")
}

func TestDetectAnomaliesRoundsToTwoDecimals(t *testing.T) {
	spiky := seriesOf(100, 100.2, 100.4, 100.6, 100.8, 101.0, 101.2, 101.4, 101.6, 101.8, 160, 160.2, 160.4, 160.6, 160.8)
	result := DetectAnomalies(models.SeriesMap{"SPIKY.US": spiky})

	require.Contains(t, result, "SPIKY.US")
	a := result["SPIKY.US"][0]
	assert.Equal(t, a.ReturnPct, round2(a.ReturnPct))
	assert.Equal(t, a.ZScore, round2(a.ZScore))
}

package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjaszc/stocks-watcher/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testBar(symbol string, date time.Time, close float64) *models.Bar {
	return &models.Bar{
		Symbol: symbol,
		Date:   date,
		Open:   decimal.NewFromFloat(close - 1),
		High:   decimal.NewFromFloat(close + 2),
		Low:    decimal.NewFromFloat(close - 2),
		Close:  decimal.NewFromFloat(close),
		Volume: 1000000,
	}
}

func TestBarRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)
	ctx := context.Background()

	t.Run("InsertBarsBatch inserts multiple bars", func(t *testing.T) {
		testDB.TruncateAll(t)

		bars := []*models.Bar{
			testBar("AAPL.US", day(2024, 1, 15), 177.00),
			testBar("AAPL.US", day(2024, 1, 16), 179.00),
			testBar("AAPL.US", day(2024, 1, 17), 181.00),
		}

		inserted, err := testDB.InsertBarsBatch(ctx, bars)
		require.NoError(t, err)
		assert.Equal(t, int64(3), inserted)

		retrieved, err := testDB.GetBarsBySymbol(ctx, "AAPL.US")
		require.NoError(t, err)
		assert.Len(t, retrieved, 3)
	})

	t.Run("InsertBarsBatch discards duplicate (symbol, date)", func(t *testing.T) {
		testDB.TruncateAll(t)

		date := day(2024, 1, 15)
		_, err := testDB.InsertBarsBatch(ctx, []*models.Bar{testBar("AAPL.US", date, 177.00)})
		require.NoError(t, err)

		// Same day with a different close: bars are immutable, the
		// re-ingestion is dropped rather than updating the row.
		inserted, err := testDB.InsertBarsBatch(ctx, []*models.Bar{testBar("AAPL.US", date, 999.00)})
		require.NoError(t, err)
		assert.Equal(t, int64(0), inserted)

		retrieved, err := testDB.GetBarsBySymbol(ctx, "AAPL.US")
		require.NoError(t, err)
		require.Len(t, retrieved, 1)
		assert.True(t, decimal.NewFromFloat(177.00).Equal(retrieved[0].Close))
	})

	t.Run("GetBarsBySymbol orders by date ascending", func(t *testing.T) {
		testDB.TruncateAll(t)

		bars := []*models.Bar{
			testBar("MSFT.US", day(2024, 1, 17), 375.00),
			testBar("MSFT.US", day(2024, 1, 15), 373.00),
			testBar("MSFT.US", day(2024, 1, 16), 374.00),
		}
		_, err := testDB.InsertBarsBatch(ctx, bars)
		require.NoError(t, err)

		retrieved, err := testDB.GetBarsBySymbol(ctx, "MSFT.US")
		require.NoError(t, err)
		require.Len(t, retrieved, 3)
		assert.Equal(t, 15, retrieved[0].Date.Day())
		assert.Equal(t, 17, retrieved[2].Date.Day())
	})

	t.Run("MaxDate returns the as-of date", func(t *testing.T) {
		testDB.TruncateAll(t)

		_, err := testDB.InsertBarsBatch(ctx, []*models.Bar{
			testBar("GOOGL.US", day(2024, 1, 15), 140.00),
			testBar("GOOGL.US", day(2024, 1, 19), 142.00),
		})
		require.NoError(t, err)

		max, err := testDB.MaxDate(ctx, "GOOGL.US")
		require.NoError(t, err)
		assert.Equal(t, 19, max.Day())
	})

	t.Run("MaxDate returns ErrNoRows for unknown symbol", func(t *testing.T) {
		testDB.TruncateAll(t)

		_, err := testDB.MaxDate(ctx, "NONEXISTENT")
		require.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("ListSymbols returns distinct symbols", func(t *testing.T) {
		testDB.TruncateAll(t)

		_, err := testDB.InsertBarsBatch(ctx, []*models.Bar{
			testBar("AAPL.US", day(2024, 1, 15), 177.00),
			testBar("AAPL.US", day(2024, 1, 16), 178.00),
			testBar("MSFT.US", day(2024, 1, 15), 373.00),
		})
		require.NoError(t, err)

		symbols, err := testDB.ListSymbols(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"AAPL.US", "MSFT.US"}, symbols)
	})

	t.Run("ReplaceRebased writes values and clears stale ones", func(t *testing.T) {
		testDB.TruncateAll(t)

		_, err := testDB.InsertBarsBatch(ctx, []*models.Bar{
			testBar("AAPL.US", day(2024, 1, 15), 100.00),
			testBar("AAPL.US", day(2024, 1, 16), 110.00),
		})
		require.NoError(t, err)

		first := []models.RebasedRow{
			{Date: day(2024, 1, 15), Values: map[models.Horizon]decimal.Decimal{
				models.Horizon1Mo: decimal.NewFromInt(100),
			}},
			{Date: day(2024, 1, 16), Values: map[models.Horizon]decimal.Decimal{
				models.Horizon1Mo: decimal.NewFromInt(110),
			}},
		}
		require.NoError(t, testDB.ReplaceRebased(ctx, "AAPL.US", first))

		result, err := testDB.GetRebasedSeries(ctx, models.Horizon1Mo, []string{"AAPL.US"})
		require.NoError(t, err)
		require.Len(t, result["AAPL.US"], 2)
		assert.True(t, decimal.NewFromInt(100).Equal(result["AAPL.US"][0].Rebased))

		// Recompute with a shifted window: only the later bar keeps a
		// value, the earlier one must be cleared back to NULL.
		second := []models.RebasedRow{
			{Date: day(2024, 1, 16), Values: map[models.Horizon]decimal.Decimal{
				models.Horizon1Mo: decimal.NewFromInt(100),
			}},
		}
		require.NoError(t, testDB.ReplaceRebased(ctx, "AAPL.US", second))

		result, err = testDB.GetRebasedSeries(ctx, models.Horizon1Mo, []string{"AAPL.US"})
		require.NoError(t, err)
		require.Len(t, result["AAPL.US"], 1)
		assert.Equal(t, 16, result["AAPL.US"][0].Date.Day())
	})

	t.Run("ReplaceRebased does not touch other symbols", func(t *testing.T) {
		testDB.TruncateAll(t)

		_, err := testDB.InsertBarsBatch(ctx, []*models.Bar{
			testBar("AAPL.US", day(2024, 1, 15), 100.00),
			testBar("MSFT.US", day(2024, 1, 15), 200.00),
		})
		require.NoError(t, err)

		both := map[models.Horizon]decimal.Decimal{models.Horizon1Mo: decimal.NewFromInt(100)}
		require.NoError(t, testDB.ReplaceRebased(ctx, "AAPL.US", []models.RebasedRow{{Date: day(2024, 1, 15), Values: both}}))
		require.NoError(t, testDB.ReplaceRebased(ctx, "MSFT.US", []models.RebasedRow{{Date: day(2024, 1, 15), Values: both}}))

		// Clearing AAPL.US must leave MSFT.US intact.
		require.NoError(t, testDB.ReplaceRebased(ctx, "AAPL.US", nil))

		result, err := testDB.GetRebasedSeries(ctx, models.Horizon1Mo, []string{"AAPL.US", "MSFT.US"})
		require.NoError(t, err)
		assert.NotContains(t, result, "AAPL.US")
		assert.Contains(t, result, "MSFT.US")
	})

	t.Run("GetRebasedSeries batches multiple symbols and skips NULLs", func(t *testing.T) {
		testDB.TruncateAll(t)

		_, err := testDB.InsertBarsBatch(ctx, []*models.Bar{
			testBar("AAPL.US", day(2024, 1, 15), 100.00),
			testBar("AAPL.US", day(2024, 1, 16), 110.00),
			testBar("MSFT.US", day(2024, 1, 15), 200.00),
		})
		require.NoError(t, err)

		require.NoError(t, testDB.ReplaceRebased(ctx, "AAPL.US", []models.RebasedRow{
			{Date: day(2024, 1, 16), Values: map[models.Horizon]decimal.Decimal{
				models.Horizon1Mo: decimal.NewFromInt(100),
				models.Horizon1Y:  decimal.NewFromInt(105),
			}},
		}))

		result, err := testDB.GetRebasedSeries(ctx, models.Horizon1Mo, []string{"AAPL.US", "MSFT.US"})
		require.NoError(t, err)
		// MSFT.US has bars but no rebased values, so it is absent.
		assert.NotContains(t, result, "MSFT.US")
		require.Len(t, result["AAPL.US"], 1)

		// The 1y column is independent of the 1mo one.
		result, err = testDB.GetRebasedSeries(ctx, models.Horizon1Y, []string{"AAPL.US"})
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(105).Equal(result["AAPL.US"][0].Rebased))
	})
}

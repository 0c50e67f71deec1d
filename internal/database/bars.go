package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/mjaszc/stocks-watcher/internal/models"
)

// rebasedColumns lists the nullable per-horizon columns in window order.
var rebasedColumns = []string{"norm_1mo", "norm_3mo", "norm_6mo", "norm_1y", "norm_5y", "norm_20y"}

// InsertBarsBatch inserts bars inside one transaction. Bars are
// immutable: a (symbol, date) pair already present is discarded, not
// updated. Returns the number of rows actually inserted.
func (db *DB) InsertBarsBatch(ctx context.Context, bars []*models.Bar) (int64, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO stock_bars (symbol, date, open, high, low, close, volume, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (symbol, date) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	var inserted int64
	for _, b := range bars {
		res, err := stmt.ExecContext(ctx, b.Symbol, b.Date, b.Open, b.High, b.Low, b.Close, b.Volume, now)
		if err != nil {
			return 0, fmt.Errorf("failed to insert bar for %s on %s: %w", b.Symbol, b.Date.Format("2006-01-02"), err)
		}
		n, _ := res.RowsAffected()
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return inserted, nil
}

// GetBarsBySymbol retrieves the full bar history for a symbol, ordered by date ascending
func (db *DB) GetBarsBySymbol(ctx context.Context, symbol string) ([]*models.Bar, error) {
	query := `
		SELECT id, symbol, date, open, high, low, close, volume, created_at
		FROM stock_bars
		WHERE symbol = $1
		ORDER BY date ASC
	`
	rows, err := db.conn.QueryContext(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to get bars: %w", err)
	}
	defer rows.Close()

	var bars []*models.Bar
	for rows.Next() {
		var b models.Bar
		err := rows.Scan(&b.ID, &b.Symbol, &b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume, &b.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bar: %w", err)
		}
		bars = append(bars, &b)
	}
	return bars, rows.Err()
}

// MaxDate returns the latest trade date stored for a symbol, i.e. the
// symbol's as-of date. sql.ErrNoRows is returned when the symbol has
// no bars at all.
func (db *DB) MaxDate(ctx context.Context, symbol string) (time.Time, error) {
	query := `SELECT max(date) FROM stock_bars WHERE symbol = $1`
	var max sql.NullTime
	if err := db.conn.QueryRowContext(ctx, query, symbol).Scan(&max); err != nil {
		return time.Time{}, fmt.Errorf("failed to get max date for %s: %w", symbol, err)
	}
	if !max.Valid {
		return time.Time{}, sql.ErrNoRows
	}
	return max.Time, nil
}

// ListSymbols returns the distinct symbols present in the bar store
func (db *DB) ListSymbols(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT DISTINCT symbol FROM stock_bars ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to list symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}

// GetRebasedSeries fetches the rebased series for every requested
// symbol at the given horizon in a single query. Rows whose rebased
// value is NULL fall outside the horizon's window and are not
// returned. Symbols with no qualifying rows are simply absent from
// the map.
func (db *DB) GetRebasedSeries(ctx context.Context, horizon models.Horizon, symbols []string) (models.SeriesMap, error) {
	col := horizon.Column()
	query := fmt.Sprintf(`
		SELECT symbol, date, %s
		FROM stock_bars
		WHERE symbol = ANY($1) AND %s IS NOT NULL
		ORDER BY symbol, date ASC
	`, col, col)

	rows, err := db.conn.QueryContext(ctx, query, pq.Array(symbols))
	if err != nil {
		return nil, fmt.Errorf("failed to get rebased series: %w", err)
	}
	defer rows.Close()

	result := make(models.SeriesMap)
	for rows.Next() {
		var symbol string
		var date time.Time
		var rebased decimal.Decimal
		if err := rows.Scan(&symbol, &date, &rebased); err != nil {
			return nil, fmt.Errorf("failed to scan rebased row: %w", err)
		}
		result[symbol] = append(result[symbol], models.SeriesPoint{Date: date, Rebased: rebased})
	}
	return result, rows.Err()
}

// ReplaceRebased atomically replaces every rebased value for a symbol:
// all norm columns are cleared first, then the supplied rows are
// written, all inside one transaction. A failure mid-update leaves the
// previous values untouched.
func (db *DB) ReplaceRebased(ctx context.Context, symbol string, rebased []models.RebasedRow) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	assignments := make([]string, len(rebasedColumns))
	for i, col := range rebasedColumns {
		assignments[i] = col + " = NULL"
	}
	clear := fmt.Sprintf(`UPDATE stock_bars SET %s WHERE symbol = $1`, strings.Join(assignments, ", "))
	if _, err := tx.ExecContext(ctx, clear, symbol); err != nil {
		return fmt.Errorf("failed to clear rebased values for %s: %w", symbol, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE stock_bars
		SET norm_1mo = $3, norm_3mo = $4, norm_6mo = $5, norm_1y = $6, norm_5y = $7, norm_20y = $8
		WHERE symbol = $1 AND date = $2
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, row := range rebased {
		args := make([]interface{}, 0, 8)
		args = append(args, symbol, row.Date)
		for _, h := range models.Horizons {
			if v, ok := row.Values[h]; ok {
				args = append(args, decimal.NullDecimal{Decimal: v, Valid: true})
			} else {
				args = append(args, decimal.NullDecimal{})
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to update rebased values for %s on %s: %w", symbol, row.Date.Format("2006-01-02"), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mjaszc/stocks-watcher/internal/models"
)

// Downloader fetches daily OHLCV datasets from the stooq CSV export.
type Downloader struct {
	baseURL string
	client  *http.Client
}

// NewDownloader creates a downloader against the given export URL
func NewDownloader(baseURL string) *Downloader {
	return &Downloader{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// FetchDaily downloads the full daily history for a symbol
func (d *Downloader) FetchDaily(ctx context.Context, symbol string) ([]*models.Bar, error) {
	u := fmt.Sprintf("%s?s=%s&i=d", d.baseURL, url.QueryEscape(strings.ToLower(symbol)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", symbol, err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download dataset for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download dataset for %s: status %d", symbol, resp.StatusCode)
	}

	return ParseBars(resp.Body, strings.ToUpper(symbol))
}

// ParseBars reads a stooq daily CSV (Date,Open,High,Low,Close,Volume)
// into bars for one symbol. Malformed rows are logged and skipped so
// one bad line never discards a whole dataset.
func ParseBars(r io.Reader, symbol string) ([]*models.Bar, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header for %s: %w", symbol, err)
	}
	if len(header) < 6 || !strings.EqualFold(header[0], "Date") {
		return nil, fmt.Errorf("unexpected csv header for %s: %v", symbol, header)
	}

	var bars []*models.Bar
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row for %s: %w", symbol, err)
		}
		if len(record) < 6 {
			log.Printf("Skipping short csv row for %s: %v", symbol, record)
			continue
		}

		bar, err := parseBar(record, symbol)
		if err != nil {
			log.Printf("Skipping malformed csv row for %s: %v", symbol, err)
			continue
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func parseBar(record []string, symbol string) (*models.Bar, error) {
	date, err := time.Parse("2006-01-02", record[0])
	if err != nil {
		return nil, fmt.Errorf("bad date %q: %w", record[0], err)
	}

	prices := make([]decimal.Decimal, 4)
	for i, field := range record[1:5] {
		p, err := decimal.NewFromString(field)
		if err != nil {
			return nil, fmt.Errorf("bad price %q: %w", field, err)
		}
		if p.IsNegative() {
			return nil, fmt.Errorf("negative price %q", field)
		}
		prices[i] = p
	}

	// Stooq leaves volume empty for some instruments.
	var volume int64
	if record[5] != "" {
		v, err := decimal.NewFromString(record[5])
		if err != nil || v.IsNegative() {
			return nil, fmt.Errorf("bad volume %q", record[5])
		}
		volume = v.IntPart()
	}

	return &models.Bar{
		Symbol: symbol,
		Date:   date,
		Open:   prices[0],
		High:   prices[1],
		Low:    prices[2],
		Close:  prices[3],
		Volume: volume,
	}, nil
}

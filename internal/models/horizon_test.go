package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHorizonFromString(t *testing.T) {
	for _, h := range Horizons {
		parsed, ok := HorizonFromString(string(h))
		assert.True(t, ok)
		assert.Equal(t, h, parsed)
	}

	for _, bad := range []string{"13mo", "10y", "", "1MO", "2d"} {
		_, ok := HorizonFromString(bad)
		assert.False(t, ok, "%q must not parse", bad)
	}
}

func TestHorizonColumn(t *testing.T) {
	assert.Equal(t, "norm_1mo", Horizon1Mo.Column())
	assert.Equal(t, "norm_20y", Horizon20Y.Column())
}

func TestHorizonShift(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name    string
		horizon Horizon
		from    time.Time
		want    time.Time
	}{
		{"one month back", Horizon1Mo, day(2025, 3, 15), day(2025, 2, 15)},
		{"three months back", Horizon3Mo, day(2025, 1, 1), day(2024, 10, 1)},
		{"six months across year boundary", Horizon6Mo, day(2025, 2, 10), day(2024, 8, 10)},
		{"one year across leap year", Horizon1Y, day(2025, 3, 15), day(2024, 3, 15)},
		{"five years back", Horizon5Y, day(2025, 1, 1), day(2020, 1, 1)},
		{"twenty years back", Horizon20Y, day(2025, 1, 1), day(2005, 1, 1)},
		{"month end clamps", Horizon1Mo, day(2025, 3, 31), day(2025, 2, 28)},
		{"leap day clamps on year boundary", Horizon1Y, day(2024, 2, 29), day(2023, 2, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(tt.horizon.Shift(tt.from)),
				"got %s", tt.horizon.Shift(tt.from).Format("2006-01-02"))
		})
	}
}

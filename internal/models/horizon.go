package models

import "time"

// Horizon is a fixed lookback window used both to select the
// rebasing anchor and to bound the series returned to clients.
type Horizon string

const (
	Horizon1Mo Horizon = "1mo"
	Horizon3Mo Horizon = "3mo"
	Horizon6Mo Horizon = "6mo"
	Horizon1Y  Horizon = "1y"
	Horizon5Y  Horizon = "5y"
	Horizon20Y Horizon = "20y"
)

// Horizons is the closed set of supported lookback windows.
var Horizons = []Horizon{Horizon1Mo, Horizon3Mo, Horizon6Mo, Horizon1Y, Horizon5Y, Horizon20Y}

var horizonOffsets = map[Horizon]struct{ years, months int }{
	Horizon1Mo: {0, 1},
	Horizon3Mo: {0, 3},
	Horizon6Mo: {0, 6},
	Horizon1Y:  {1, 0},
	Horizon5Y:  {5, 0},
	Horizon20Y: {20, 0},
}

// HorizonFromString validates a horizon label.
func HorizonFromString(s string) (Horizon, bool) {
	h := Horizon(s)
	_, ok := horizonOffsets[h]
	return h, ok
}

// Column returns the rebased-price column for this horizon.
func (h Horizon) Column() string {
	return "norm_" + string(h)
}

// Shift returns t moved back by the horizon's calendar offset.
// The day of month clamps to the last day of the target month:
// AddDate would roll 2025-03-31 minus one month into March 3rd,
// and 2024-02-29 minus one year into March 1st, while the
// lookback for those dates is the end of February.
func (h Horizon) Shift(t time.Time) time.Time {
	off := horizonOffsets[h]
	months := off.years*12 + off.months
	y, m, d := t.Date()
	firstOfTarget := time.Date(y, m-time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(firstOfTarget); d > last {
		d = last
	}
	return firstOfTarget.AddDate(0, 0, d-1)
}

func daysIn(firstOfMonth time.Time) int {
	return firstOfMonth.AddDate(0, 1, -1).Day()
}

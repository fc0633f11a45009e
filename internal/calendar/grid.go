// Package calendar builds the Monday-first month grid shown on the site.
package calendar

import (
	"time"

	"agehasite/internal/model"
)

// DefaultClosedWeekday is the regular holiday in Monday-indexed form
// (0 = Monday ... 6 = Sunday).
const DefaultClosedWeekday = 6

// DateLayout is the canonical date form used to join days with events.
const DateLayout = "2006-01-02"

// DaysInMonth returns the number of days in month, computed as day 0 of the
// following month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstWeekdayOffset returns the weekday of the 1st with Monday = 0 and
// Sunday = 6.
func FirstWeekdayOffset(year int, month time.Month) int {
	return mondayIndex(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday())
}

func mondayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// CanonicalDate formats a calendar day as YYYY-MM-DD.
func CanonicalDate(year int, month time.Month, day int) string {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(DateLayout)
}

// BuildGrid lays out month as FirstWeekdayOffset blanks followed by one cell
// per day. A cell carries the event indexed for its date, if any; cells
// without an event on the regular holiday are marked DefaultClosed.
func BuildGrid(year int, month time.Month, idx Index) model.MonthGrid {
	blanks := FirstWeekdayOffset(year, month)
	days := DaysInMonth(year, month)

	grid := make(model.MonthGrid, blanks, blanks+days)
	for d := 1; d <= days; d++ {
		cell := &model.DayCell{Day: d}
		if ev, ok := idx.Lookup(CanonicalDate(year, month, d)); ok {
			cell.Event = &ev
		} else if (blanks+d-1)%7 == DefaultClosedWeekday {
			cell.DefaultClosed = true
		}
		grid = append(grid, cell)
	}
	return grid
}

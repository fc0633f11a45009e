package calendar

import (
	"fmt"
	"strings"
	"time"

	"agehasite/internal/model"
)

// Month identifies a displayed calendar month. Navigation always targets
// day 1, so no day-of-month clamping is needed.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t in t's location.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses "YYYY-MM".
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return Month{}, fmt.Errorf("calendar: invalid month %q: %w", s, err)
	}
	return MonthOf(t), nil
}

func (m Month) first() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Prev returns the previous month, rolling the year over in January.
func (m Month) Prev() Month {
	return MonthOf(m.first().AddDate(0, -1, 0))
}

// Next returns the following month, rolling the year over in December.
func (m Month) Next() Month {
	return MonthOf(m.first().AddDate(0, 1, 0))
}

// String formats the month as YYYY-MM.
func (m Month) String() string {
	return m.first().Format("2006-01")
}

// Contains reports whether a canonical date string lies in m.
func (m Month) Contains(date string) bool {
	return strings.HasPrefix(date, m.String()+"-")
}

// Days returns the number of days in m.
func (m Month) Days() int {
	return DaysInMonth(m.Year, m.Month)
}

// Grid builds the month grid for m.
func (m Month) Grid(idx Index) model.MonthGrid {
	return BuildGrid(m.Year, m.Month, idx)
}

package ics

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"

	"agehasite/internal/calendar"
)

// weekdays maps the Monday-indexed weekday used by the grid to rrule's.
var weekdays = [7]rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA, rrule.SU}

// RegularHolidayRule returns the weekly RRULE for the regular holiday,
// anchored at start.
func RegularHolidayRule(start time.Time) (*rrule.RRule, error) {
	return rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: []rrule.Weekday{weekdays[calendar.DefaultClosedWeekday]},
		Dtstart:   start,
	})
}

// ClosureDates expands the regular holiday over [from, to] and drops days
// that carry an explicit event, matching how the month grid marks
// DefaultClosed.
func ClosureDates(from, to time.Time, idx calendar.Index) ([]time.Time, error) {
	if to.Before(from) {
		return nil, errors.New("ics: range end is before range start")
	}

	from = startOfDay(from)
	r, err := RegularHolidayRule(from)
	if err != nil {
		return nil, err
	}

	out := make([]time.Time, 0)
	for _, t := range r.Between(from, to, true) {
		if _, ok := idx.Lookup(t.Format(calendar.DateLayout)); ok {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

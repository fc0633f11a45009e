package calendar

import (
	"sort"

	appLog "agehasite/internal/log"
	"agehasite/internal/model"
)

// Index maps a canonical date to the event shown on that day. It is built
// once per fetch so grid construction does constant-time lookups.
type Index map[string]model.CalendarEvent

// NewIndex indexes events by date. When the feed lists the same date more
// than once, the later record wins.
func NewIndex(events []model.CalendarEvent) Index {
	idx := make(Index, len(events))
	for _, ev := range events {
		if prev, dup := idx[ev.Date]; dup {
			appLog.Debug("duplicate feed date; later record wins",
				"date", ev.Date,
				"dropped", prev.Title,
				"kept", ev.Title,
			)
		}
		idx[ev.Date] = ev
	}
	return idx
}

// Lookup returns the event for a canonical date.
func (idx Index) Lookup(date string) (model.CalendarEvent, bool) {
	ev, ok := idx[date]
	return ev, ok
}

// InMonth returns the indexed events that fall in m, ordered by date.
func (idx Index) InMonth(m Month) []model.CalendarEvent {
	out := make([]model.CalendarEvent, 0)
	for date, ev := range idx {
		if m.Contains(date) {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Events returns every indexed event ordered by date.
func (idx Index) Events() []model.CalendarEvent {
	out := make([]model.CalendarEvent, 0, len(idx))
	for _, ev := range idx {
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

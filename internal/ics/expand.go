package ics

import (
	"errors"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	"agehasite/internal/calendar"
	appLog "agehasite/internal/log"
	"agehasite/internal/model"
)

const maxOccurrencesPerEntry = 5000

// Expand turns parsed entries into one calendar record per covered day
// within [from, to], in loc. RRULE, EXDATE and RECURRENCE-ID overrides
// are honored; a multi-day entry yields a record for each day.
func Expand(entries []Entry, src Source, from, to time.Time, loc *time.Location) ([]model.CalendarEvent, error) {
	if to.Before(from) {
		return nil, errors.New("ics: range end is before range start")
	}
	if loc == nil {
		loc = time.Local
	}

	overrides := make(map[string][]Entry)
	for _, e := range entries {
		if e.RecurrenceID != nil {
			overrides[e.UID] = append(overrides[e.UID], e)
		}
	}

	out := make([]model.CalendarEvent, 0)
	for _, e := range entries {
		if e.RecurrenceID != nil {
			continue
		}
		for _, occ := range occurrences(e, overrides[e.UID], from, to) {
			out = append(out, dayRecords(occ, src, from, to, loc)...)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// occurrences returns the concrete instances of e that may touch the
// range, with overrides already substituted.
func occurrences(e Entry, ovs []Entry, from, to time.Time) []Entry {
	if e.RRule == "" {
		if e.End.Before(from) || e.Start.After(to) {
			return nil
		}
		return []Entry{e}
	}

	r, err := rrule.StrToRRule(e.RRule)
	if err != nil {
		appLog.Error("calendar entry has invalid RRULE", err, "uid", e.UID, "rrule", e.RRule)
		return nil
	}
	r.DTStart(e.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range e.ExDates {
		set.ExDate(ex.In(e.Start.Location()))
	}

	dur := e.End.Sub(e.Start)
	starts := set.Between(from.Add(-dur), to, true)
	if len(starts) > maxOccurrencesPerEntry {
		appLog.Error("calendar entry truncated", errors.New("too many occurrences"),
			"uid", e.UID, "cap", maxOccurrencesPerEntry)
		starts = starts[:maxOccurrencesPerEntry]
	}

	out := make([]Entry, 0, len(starts))
	for _, s := range starts {
		inst := e
		inst.Start, inst.End = s, s.Add(dur)
		for _, ov := range ovs {
			if ov.RecurrenceID.Equal(s) {
				inst = ov
				break
			}
		}
		out = append(out, inst)
	}
	return out
}

// dayRecords emits one record per local day covered by occ. End is
// exclusive, so an all-day entry ending at midnight does not spill over.
func dayRecords(occ Entry, src Source, from, to time.Time, loc *time.Location) []model.CalendarEvent {
	start := occ.Start.In(loc)
	last := occ.End.In(loc)
	if last.After(start) {
		last = last.Add(-time.Nanosecond)
	}
	first := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	lo := startOfDay(from.In(loc))

	out := make([]model.CalendarEvent, 0, 1)
	for d := first; !d.After(last) && !d.After(to); d = d.AddDate(0, 0, 1) {
		if d.Before(lo) {
			continue
		}
		out = append(out, model.CalendarEvent{
			Date:        d.Format(calendar.DateLayout),
			Type:        entryType(occ, src),
			Title:       occ.Summary,
			Description: occ.Description,
		})
	}
	return out
}

// entryType prefers a recognized CATEGORIES value over the source default.
func entryType(e Entry, src Source) model.EventType {
	for _, c := range e.Categories {
		if t := model.ParseEventType(c); t != model.EventUnspecified {
			return t
		}
	}
	if src.Type != "" {
		return src.Type
	}
	return model.EventUnspecified
}

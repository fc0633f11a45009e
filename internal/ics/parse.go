package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
)

// Entry is one VEVENT from a subscribed calendar, before recurrence
// expansion.
type Entry struct {
	UID         string
	Summary     string
	Description string
	Categories  []string

	Start  time.Time
	End    time.Time
	AllDay bool

	RRule   string
	ExDates []time.Time
	// RecurrenceID is set on an override of one recurring instance.
	RecurrenceID *time.Time
}

// Parse reads every VEVENT in body. Floating and date-only values are
// interpreted in loc. Entries without a UID or DTSTART are skipped.
func Parse(body []byte, loc *time.Location) ([]Entry, error) {
	if len(body) == 0 {
		return nil, errors.New("ics: empty calendar body")
	}
	if loc == nil {
		loc = time.Local
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0)
	for _, ve := range cal.Events() {
		e, ok := parseEntry(ve, loc)
		if !ok {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func parseEntry(ve *ical.VEvent, loc *time.Location) (Entry, bool) {
	var e Entry

	p := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if p == nil || p.Value == "" {
		return e, false
	}
	e.UID = p.Value

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return e, false
	}
	e.AllDay = isDateValue(dtStart)
	start, err := propTime(dtStart, loc)
	if err != nil {
		return e, false
	}
	e.Start = start

	if dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil {
		if end, err := propTime(dtEnd, loc); err == nil {
			e.End = end
		}
	}
	if e.End.IsZero() || e.End.Before(e.Start) {
		// DTEND is exclusive; a missing one means a single day.
		e.End = e.Start
		if e.AllDay {
			e.End = e.Start.AddDate(0, 0, 1)
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		e.Summary = strings.TrimSpace(p.Value)
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		e.Description = strings.TrimSpace(p.Value)
	}
	for _, p := range ve.GetProperties(ical.ComponentPropertyCategories) {
		for _, c := range strings.Split(p.Value, ",") {
			if c = strings.TrimSpace(c); c != "" {
				e.Categories = append(e.Categories, c)
			}
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		e.RRule = p.Value
	}
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		tz := tzParam(p, loc)
		for _, v := range strings.Split(p.Value, ",") {
			if t, err := parseValue(strings.TrimSpace(v), tz); err == nil {
				e.ExDates = append(e.ExDates, t)
			}
		}
	}
	if p := ve.GetProperty(ical.ComponentPropertyRecurrenceId); p != nil {
		if t, err := propTime(p, loc); err == nil {
			e.RecurrenceID = &t
		}
	}

	return e, true
}

func isDateValue(p *ical.IANAProperty) bool {
	if vs := p.ICalParameters[string(ical.ParameterValue)]; len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

func tzParam(p *ical.IANAProperty, fallback *time.Location) *time.Location {
	if tzs := p.ICalParameters[string(ical.ParameterTzid)]; len(tzs) > 0 {
		if loc, err := time.LoadLocation(tzs[0]); err == nil {
			return loc
		}
	}
	return fallback
}

func propTime(p *ical.IANAProperty, fallback *time.Location) (time.Time, error) {
	return parseValue(strings.TrimSpace(p.Value), tzParam(p, fallback))
}

// parseValue accepts the DATE, floating DATE-TIME and UTC DATE-TIME forms.
func parseValue(v string, loc *time.Location) (time.Time, error) {
	switch {
	case v == "":
		return time.Time{}, errors.New("ics: empty time value")
	case strings.HasSuffix(v, "Z"):
		t, err := time.Parse("20060102T150405Z", v)
		return t.In(loc), err
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, loc)
	default:
		return time.ParseInLocation("20060102", v, loc)
	}
}

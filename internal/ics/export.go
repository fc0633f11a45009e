// Package ics renders the restaurant calendar as an iCalendar feed so
// guests can subscribe to closures and events, and imports subscribed
// calendars into the event list.
package ics

import (
	"errors"
	"time"

	ical "github.com/arran4/golang-ical"

	"agehasite/internal/calendar"
	appLog "agehasite/internal/log"
	"agehasite/internal/model"
)

const (
	ProductID    = "-//Obanzai Ageha Shokudo//agehasite//JA"
	CalendarName = "おばんざいアゲハ食堂 営業カレンダー"
	uidDomain    = "@agehasite"
)

// ExportConfig controls what Export includes.
type ExportConfig struct {
	// Location is the zone the calendar is published in. Nil = time.Local.
	Location *time.Location

	// RangeStart / RangeEnd bound the expanded regular closures. Feed
	// events are always included.
	RangeStart time.Time
	RangeEnd   time.Time

	// SiteURL is attached to every event, if set.
	SiteURL string

	// Now stamps DTSTAMP; zero means time.Now().
	Now time.Time
}

// Export builds the iCalendar document for the indexed feed events plus
// the regular holidays in range. Events whose date could not be
// normalized are skipped.
func Export(idx calendar.Index, cfg ExportConfig) (string, error) {
	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return "", errors.New("ics: RangeEnd is before RangeStart")
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)
	cal.SetXWRCalName(CalendarName)
	cal.SetXWRTimezone(cfg.Location.String())

	for _, ev := range idx.Events() {
		day, err := time.ParseInLocation(calendar.DateLayout, ev.Date, cfg.Location)
		if err != nil {
			appLog.Debug("ics export: skipping event with raw date", "date", ev.Date, "title", ev.Title)
			continue
		}
		addEvent(cal, ev.Date+uidDomain, ev, day, cfg)
	}

	closures, err := ClosureDates(cfg.RangeStart.In(cfg.Location), cfg.RangeEnd.In(cfg.Location), idx)
	if err != nil {
		return "", err
	}
	for _, day := range closures {
		date := day.Format(calendar.DateLayout)
		addEvent(cal, "closed-"+date+uidDomain, model.CalendarEvent{
			Date:  date,
			Type:  model.EventClosed,
			Title: "定休日",
		}, day, cfg)
	}

	return cal.Serialize(), nil
}

func addEvent(cal *ical.Calendar, uid string, ev model.CalendarEvent, day time.Time, cfg ExportConfig) {
	vev := cal.AddEvent(uid)
	vev.SetDtStampTime(cfg.Now)
	vev.SetAllDayStartAt(day)
	vev.SetAllDayEndAt(day.AddDate(0, 0, 1))
	vev.SetSummary(summary(ev))
	if ev.Description != "" {
		vev.SetDescription(ev.Description)
	}
	if label := ev.Type.Label(); label != "" {
		vev.SetProperty(ical.ComponentPropertyCategories, label)
	}
	if cfg.SiteURL != "" {
		vev.SetURL(cfg.SiteURL)
	}
}

// summary prefixes the badge label unless the title already says it.
func summary(ev model.CalendarEvent) string {
	label := ev.Type.Label()
	switch {
	case ev.Title == "":
		return label
	case label == "" || ev.Title == label:
		return ev.Title
	default:
		return "[" + label + "] " + ev.Title
	}
}

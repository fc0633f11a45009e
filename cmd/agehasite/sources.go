package main

import (
	"agehasite/internal/config"
	"agehasite/internal/feed"
	"agehasite/internal/ics"
	"agehasite/internal/model"
)

// eventSources holds the spreadsheet client and the calendar importer
// so config reloads can update them in place.
type eventSources struct {
	sheet    *feed.Client
	importer *ics.Importer
}

func newEventSources(c *config.Config) *eventSources {
	return &eventSources{
		sheet:    feed.NewClient(c.Feed.URL, c.FeedTimeout(), c.Location()),
		importer: ics.NewImporter(ics.NewFetcher(c.Feed.CacheDir, c.FeedTimeout()), calendarSources(c), c.Location()),
	}
}

// fetcher lists the spreadsheet last so its records win shared dates.
func (s *eventSources) fetcher() feed.Fetcher {
	return feed.Merge(s.importer, s.sheet)
}

// apply updates the sources from a reloaded config and reports whether
// anything changed.
func (s *eventSources) apply(c *config.Config) bool {
	changed := false
	if c.Feed.URL != s.sheet.URL() {
		s.sheet.SetURL(c.Feed.URL)
		changed = true
	}
	next := calendarSources(c)
	if !sameSources(next, s.importer.Sources()) {
		s.importer.SetSources(next)
		changed = true
	}
	return changed
}

func calendarSources(c *config.Config) []ics.Source {
	out := make([]ics.Source, 0, len(c.Feed.Calendars))
	for _, cs := range c.Feed.Calendars {
		src := ics.Source{ID: cs.ID, URL: cs.URL}
		if cs.Type != "" {
			src.Type = model.ParseEventType(cs.Type)
		}
		out = append(out, src)
	}
	return out
}

func sameSources(a, b []ics.Source) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

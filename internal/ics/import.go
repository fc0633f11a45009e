package ics

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	appLog "agehasite/internal/log"
	"agehasite/internal/model"
)

const (
	importMonthsBack  = 1
	importMonthsAhead = 6
	importParallelism = 4
)

// Importer merges subscribed calendars into calendar records. It
// satisfies feed.Fetcher.
type Importer struct {
	fetcher  *Fetcher
	location *time.Location
	now      func() time.Time

	mu      sync.Mutex
	sources []Source
}

// NewImporter creates an Importer for sources; loc decides which local
// day an entry lands on (nil = time.Local).
func NewImporter(f *Fetcher, sources []Source, loc *time.Location) *Importer {
	if loc == nil {
		loc = time.Local
	}
	im := &Importer{fetcher: f, location: loc, now: time.Now}
	im.SetSources(sources)
	return im
}

// SetSources replaces the subscription list.
func (im *Importer) SetSources(sources []Source) {
	im.mu.Lock()
	defer im.mu.Unlock()
	im.sources = append([]Source(nil), sources...)
}

// Sources returns a copy of the subscription list.
func (im *Importer) Sources() []Source {
	im.mu.Lock()
	defer im.mu.Unlock()
	return append([]Source(nil), im.sources...)
}

// FetchEvents fetches every subscription and returns the expanded records
// from the previous month through six months ahead, in source order. A
// failing source is logged and contributes nothing.
func (im *Importer) FetchEvents(ctx context.Context) []model.CalendarEvent {
	sources := im.Sources()
	if len(sources) == 0 {
		return []model.CalendarEvent{}
	}

	now := im.now().In(im.location)
	from := time.Date(now.Year(), now.Month()-importMonthsBack, 1, 0, 0, 0, 0, im.location)
	to := time.Date(now.Year(), now.Month()+importMonthsAhead+1, 1, 0, 0, 0, 0, im.location).Add(-time.Nanosecond)

	results := make([][]model.CalendarEvent, len(sources))
	var g errgroup.Group
	g.SetLimit(importParallelism)
	for i, src := range sources {
		g.Go(func() error {
			events, err := im.importOne(ctx, src, from, to)
			if err != nil {
				appLog.Error("calendar import failed", err, "id", src.ID, "url", redactURL(src.URL))
				return nil
			}
			results[i] = events
			return nil
		})
	}
	_ = g.Wait()

	out := make([]model.CalendarEvent, 0)
	for _, events := range results {
		out = append(out, events...)
	}
	return out
}

func (im *Importer) importOne(ctx context.Context, src Source, from, to time.Time) ([]model.CalendarEvent, error) {
	body, fromCache, err := im.fetcher.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	entries, err := Parse(body, im.location)
	if err != nil {
		return nil, err
	}
	events, err := Expand(entries, src, from, to, im.location)
	if err != nil {
		return nil, err
	}
	appLog.Info("calendar imported", "id", src.ID, "entries", len(entries), "days", len(events), "from_cache", fromCache)
	return events, nil
}

package feed

import (
	"context"

	"golang.org/x/sync/errgroup"

	"agehasite/internal/model"
)

type mergedFetcher []Fetcher

// Merge returns a Fetcher that runs fs concurrently and concatenates their
// records in argument order. Since a later record wins a date in the
// index, list the authoritative source last.
func Merge(fs ...Fetcher) Fetcher {
	if len(fs) == 1 {
		return fs[0]
	}
	return mergedFetcher(fs)
}

func (m mergedFetcher) FetchEvents(ctx context.Context) []model.CalendarEvent {
	results := make([][]model.CalendarEvent, len(m))
	var g errgroup.Group
	for i, f := range m {
		g.Go(func() error {
			results[i] = f.FetchEvents(ctx)
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

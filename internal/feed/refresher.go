package feed

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"

	"agehasite/internal/calendar"
	appLog "agehasite/internal/log"
	"agehasite/internal/model"
)

// Snapshot is one published fetch result. It is never mutated after
// publication.
type Snapshot struct {
	Events    []model.CalendarEvent
	Index     calendar.Index
	FetchedAt time.Time
	// Loaded is false until the first fetch has completed, successfully
	// or not; the page shows a loading state until then.
	Loaded bool
}

// Fetcher is the part of Client the Refresher needs.
type Fetcher interface {
	FetchEvents(ctx context.Context) []model.CalendarEvent
}

// Refresher keeps the latest Snapshot and refreshes it on demand or on a
// cron schedule. Concurrent refreshes share a single fetch.
type Refresher struct {
	fetcher Fetcher
	timeout time.Duration

	current atomic.Pointer[Snapshot]
	group   singleflight.Group
	now     func() time.Time
}

// NewRefresher wraps f. timeout bounds each refresh (0 = no extra bound
// beyond the fetcher's own).
func NewRefresher(f Fetcher, timeout time.Duration) *Refresher {
	r := &Refresher{
		fetcher: f,
		timeout: timeout,
		now:     time.Now,
	}
	r.current.Store(&Snapshot{Events: []model.CalendarEvent{}, Index: calendar.Index{}})
	return r
}

// Snapshot returns the most recently published result.
func (r *Refresher) Snapshot() *Snapshot {
	return r.current.Load()
}

// Refresh fetches the feed and publishes a new snapshot. Callers arriving
// while a refresh is in flight wait for and share its result. The fetch is
// detached from ctx's cancellation: a caller going away must not publish
// an empty snapshot over good data. Only the refresher's timeout bounds it.
func (r *Refresher) Refresh(ctx context.Context) *Snapshot {
	v, _, _ := r.group.Do("refresh", func() (any, error) {
		fctx := context.WithoutCancel(ctx)
		if r.timeout > 0 {
			var cancel context.CancelFunc
			fctx, cancel = context.WithTimeout(fctx, r.timeout)
			defer cancel()
		}

		events := r.fetcher.FetchEvents(fctx)
		snap := &Snapshot{
			Events:    events,
			Index:     calendar.NewIndex(events),
			FetchedAt: r.now(),
			Loaded:    true,
		}
		r.current.Store(snap)
		return snap, nil
	})
	return v.(*Snapshot)
}

// EnsureLoaded triggers the first fetch if no snapshot has loaded yet.
func (r *Refresher) EnsureLoaded(ctx context.Context) *Snapshot {
	if s := r.Snapshot(); s.Loaded {
		return s
	}
	return r.Refresh(ctx)
}

// Run refreshes once, then on every tick of the cron schedule spec until
// ctx is done.
func (r *Refresher) Run(ctx context.Context, spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		snap := r.Refresh(ctx)
		appLog.Info("feed refreshed", "event_count", len(snap.Events))
	}); err != nil {
		return err
	}

	r.Refresh(ctx)

	c.Start()
	appLog.Info("feed refresh scheduler started", "schedule", spec)

	<-ctx.Done()
	stopped := c.Stop()
	<-stopped.Done()
	return nil
}

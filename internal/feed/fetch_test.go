package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"agehasite/internal/model"
)

const sampleFeed = `[
	{"日付": "2025/12/20", "種類": "貸切", "タイトル": "貸切営業"},
	{"日付": "2025-12-24", "種類": "イベント", "タイトル": "クリスマス"}
]`

func TestFetchEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, time.UTC)
	events := c.FetchEvents(context.Background())
	require.Len(t, events, 2)
	assert.Equal(t, "2025-12-20", events[0].Date)
	assert.Equal(t, model.EventPrivateBooking, events[0].Type)
}

func TestFetchEventsFailuresYieldEmpty(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"malformed json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[{"日付": `))
		}},
		{"not an array", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"events": []}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			events := NewClient(srv.URL, time.Second, time.UTC).FetchEvents(context.Background())
			assert.NotNil(t, events)
			assert.Empty(t, events)
		})
	}
}

func TestFetchEventsNetworkErrorAndNoURL(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	assert.Empty(t, NewClient(url, time.Second, time.UTC).FetchEvents(context.Background()))

	_, err := NewClient("", time.Second, time.UTC).Fetch(context.Background())
	assert.ErrorIs(t, err, ErrNoURL)
}

func TestFetchTimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	_, err := NewClient(srv.URL, 50*time.Millisecond, time.UTC).Fetch(context.Background())
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestFetchRevalidatesWithETag(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, time.UTC)
	first, err := c.Fetch(context.Background())
	require.NoError(t, err)
	second, err := c.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.EqualValues(t, 2, atomic.LoadInt32(&hits))
}

func TestNotModifiedWithoutCacheFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second, time.UTC).Fetch(context.Background())
	assert.Error(t, err)
}

func TestSetURLDropsCache(t *testing.T) {
	c := NewClient("https://a.example/exec", time.Second, time.UTC)
	c.cache = cacheEntry{url: "https://a.example/exec", etag: "x", body: []byte("[]")}
	c.SetURL("https://b.example/exec")
	assert.Equal(t, "https://b.example/exec", c.URL())
	assert.Empty(t, c.cache.etag)
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://script.google.com/...(redacted)",
		redactURL("https://script.google.com/macros/s/SECRET/exec"))
	assert.Equal(t, "https://example.com/...(redacted)", redactURL("https://example.com/exec?token=abc"))
	assert.Equal(t, "feed://...(redacted)", redactURL("nonsense"))
}

type stubFetcher struct {
	mu     sync.Mutex
	calls  int
	delay  time.Duration
	events []model.CalendarEvent
}

func (s *stubFetcher) FetchEvents(ctx context.Context) []model.CalendarEvent {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return []model.CalendarEvent{}
	}
	return s.events
}

func TestRefresherPublishesSnapshot(t *testing.T) {
	stub := &stubFetcher{events: []model.CalendarEvent{
		{Date: "2025-12-20", Title: "a"},
		{Date: "2025-12-20", Title: "b"},
	}}
	r := NewRefresher(stub, time.Second)

	initial := r.Snapshot()
	assert.False(t, initial.Loaded)
	assert.Empty(t, initial.Events)

	snap := r.EnsureLoaded(context.Background())
	assert.True(t, snap.Loaded)
	assert.Len(t, snap.Events, 2)
	ev, ok := snap.Index.Lookup("2025-12-20")
	require.True(t, ok)
	assert.Equal(t, "b", ev.Title)

	assert.Same(t, snap, r.EnsureLoaded(context.Background()), "loaded snapshots are not refetched")
	assert.Equal(t, 1, stub.calls)
}

func TestRefresherIgnoresCallerCancellation(t *testing.T) {
	stub := &stubFetcher{delay: 50 * time.Millisecond, events: []model.CalendarEvent{
		{Date: "2025-12-14", Title: "マルシェ"},
	}}
	r := NewRefresher(stub, time.Second)
	require.Len(t, r.Refresh(context.Background()).Events, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	snap := r.Refresh(ctx)

	assert.Len(t, snap.Events, 1, "a departed caller must not wipe the snapshot")
	assert.Len(t, r.Snapshot().Events, 1)
}

func TestRefresherCollapsesConcurrentRefreshes(t *testing.T) {
	stub := &stubFetcher{delay: 100 * time.Millisecond}
	r := NewRefresher(stub, time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Refresh(context.Background())
		}()
	}
	wg.Wait()

	stub.mu.Lock()
	defer stub.mu.Unlock()
	assert.Less(t, stub.calls, 8)
	assert.True(t, r.Snapshot().Loaded)
}

func TestRefresherRunStopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	stub := &stubFetcher{events: []model.CalendarEvent{{Date: "2025-12-01", Title: "x"}}}
	r := NewRefresher(stub, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, "@every 1h") }()

	require.Eventually(t, func() bool { return r.Snapshot().Loaded }, 2*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Error(t, NewRefresher(stub, 0).Run(context.Background(), "not a schedule"))
}

func TestMergeKeepsArgumentOrder(t *testing.T) {
	imported := &stubFetcher{delay: 20 * time.Millisecond, events: []model.CalendarEvent{
		{Date: "2025-12-20", Type: model.EventClosed, Title: "imported"},
		{Date: "2025-12-21", Type: model.EventClosed, Title: "holiday"},
	}}
	sheet := &stubFetcher{events: []model.CalendarEvent{
		{Date: "2025-12-20", Type: model.EventEvent, Title: "sheet"},
	}}

	r := NewRefresher(Merge(imported, sheet), time.Second)
	snap := r.Refresh(context.Background())

	require.Len(t, snap.Events, 3)
	assert.Equal(t, "imported", snap.Events[0].Title)
	ev, ok := snap.Index.Lookup("2025-12-20")
	require.True(t, ok)
	assert.Equal(t, "sheet", ev.Title, "the last fetcher wins a shared date")

	assert.Same(t, Fetcher(sheet), Merge(sheet))
}

// Package feed fetches and normalizes the restaurant's event feed.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	appLog "agehasite/internal/log"
	"agehasite/internal/model"
)

const defaultTimeout = 15 * time.Second

// maxBodyBytes caps how much of a feed response is read.
const maxBodyBytes = 4 << 20

// ErrNoURL is returned when the client has no feed endpoint configured.
var ErrNoURL = errors.New("feed: source URL is empty")

// cacheEntry holds the validators and body of the last 200 response.
type cacheEntry struct {
	url          string
	etag         string
	lastModified string
	body         []byte
}

// Client fetches the event feed, revalidating with ETag / Last-Modified
// when the server supports it.
type Client struct {
	client   *http.Client
	location *time.Location

	mu    sync.Mutex
	url   string
	cache cacheEntry
}

// NewClient creates a feed client for url. timeout bounds each request and
// defaults to 15s; loc is used for dates without a zone (nil = time.Local).
func NewClient(url string, timeout time.Duration, loc *time.Location) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if loc == nil {
		loc = time.Local
	}
	return &Client{
		client:   &http.Client{Timeout: timeout},
		location: loc,
		url:      url,
	}
}

// SetURL switches the feed endpoint, dropping any cached validators.
func (c *Client) SetURL(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if url != c.url {
		c.url = url
		c.cache = cacheEntry{}
	}
}

// URL returns the current feed endpoint.
func (c *Client) URL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.url
}

// FetchEvents returns the normalized events, or an empty slice on any
// failure. Failures are logged, never returned.
func (c *Client) FetchEvents(ctx context.Context) []model.CalendarEvent {
	events, err := c.Fetch(ctx)
	if err != nil {
		appLog.Error("feed fetch failed; showing no events", err, "url", redactURL(c.URL()))
		return []model.CalendarEvent{}
	}
	return events
}

// Fetch performs one GET against the feed and parses the result.
func (c *Client) Fetch(ctx context.Context) ([]model.CalendarEvent, error) {
	body, err := c.fetchBody(ctx)
	if err != nil {
		return nil, err
	}
	events, err := ParseRecords(body, c.location)
	if err != nil {
		return nil, err
	}
	appLog.Info("feed parse completed", "url", redactURL(c.URL()), "event_count", len(events))
	return events, nil
}

func (c *Client) fetchBody(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	url := c.url
	cached := c.cache
	c.mu.Unlock()

	if url == "" {
		return nil, ErrNoURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	// Conditional headers from the previous response.
	if cached.url == url {
		if cached.etag != "" {
			req.Header.Set("If-None-Match", cached.etag)
		}
		if cached.lastModified != "" {
			req.Header.Set("If-Modified-Since", cached.lastModified)
		}
	}

	appLog.Debug("feed fetch start", "url", redactURL(url))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed: request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified:
		if cached.url != url || len(cached.body) == 0 {
			return nil, errors.New("feed: 304 Not Modified but no cached body available")
		}
		appLog.Debug("feed not modified; using cached body", "url", redactURL(url))
		return cached.body, nil

	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("feed: read body: %w", err)
		}

		c.mu.Lock()
		if c.url == url {
			c.cache = cacheEntry{
				url:          url,
				etag:         resp.Header.Get("ETag"),
				lastModified: resp.Header.Get("Last-Modified"),
				body:         body,
			}
		}
		c.mu.Unlock()

		return body, nil

	default:
		return nil, fmt.Errorf("feed: unexpected status %s", resp.Status)
	}
}

// redactURL keeps only scheme and host; Apps Script deployment ids in the
// path act as credentials.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "feed://...(redacted)"
	}
	return u.Scheme + "://" + u.Host + "/...(redacted)"
}

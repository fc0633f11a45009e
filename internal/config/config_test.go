package config

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.Listen)
	assert.Equal(t, "Asia/Tokyo", cfg.Timezone)
	assert.Equal(t, "*/15 * * * *", cfg.Feed.Refresh)
	assert.True(t, cfg.Chat.Enabled)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadNormalizesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `listen: ":9000"
feed:
  url: https://example.com/exec
log_level: verbose
basic_auth:
  username: admin
  password: ""
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, "https://example.com/exec", cfg.Feed.URL)
	assert.Equal(t, 15, cfg.Feed.TimeoutSeconds)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "gemini-2.5-flash", cfg.Chat.Model)
	assert.Equal(t, DefaultPersona, cfg.Chat.Persona)
	assert.Equal(t, "http://:9000/", cfg.Capture.URL)
	assert.Nil(t, cfg.BasicAuth, "incomplete credentials disable basic auth")
	assert.Equal(t, 15*time.Second, cfg.FeedTimeout())
}

func TestNormalizeCalendarSources(t *testing.T) {
	cfg := &Config{Feed: FeedConfig{Calendars: []CalendarSource{
		{URL: "https://example.com/holidays.ics", Type: "closed"},
		{ID: "blank"},
		{ID: "staff", URL: "https://example.com/staff.ics"},
	}}}
	cfg.Normalize()

	require.Len(t, cfg.Feed.Calendars, 2)
	assert.Equal(t, "calendar-1", cfg.Feed.Calendars[0].ID)
	assert.Equal(t, "staff", cfg.Feed.Calendars[1].ID)
	assert.Equal(t, "./var/ics-cache", cfg.Feed.CacheDir)
}

func TestLoadRejectsEmptyPathAndBadYAML(t *testing.T) {
	_, err := Load("")
	assert.ErrorIs(t, err, ErrEmptyPath)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: [unclosed"), 0o600))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestAPIKeyComesFromEnvironment(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "fallback-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "fallback-key", cfg.Chat.APIKey)

	t.Setenv("GEMINI_API_KEY", "primary-key")
	cfg, err = Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "primary-key", cfg.Chat.APIKey)
}

func TestSaveRoundTripKeepsKeyOutOfFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Chat.APIKey = "secret"
	cfg.Feed.URL = "https://example.com/feed"
	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
	assert.Contains(t, string(data), "https://example.com/feed")
}

func TestLocationFallsBackToLocal(t *testing.T) {
	cfg := &Config{Timezone: "Not/AZone"}
	assert.Equal(t, time.Local, cfg.Location())

	cfg.Timezone = "Asia/Tokyo"
	assert.Equal(t, "Asia/Tokyo", cfg.Location().String())
}

func TestWatchReloadsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	require.NoError(t, Save(path, cfg))

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(c *Config) { got <- c })
	}()

	// Give the watcher a moment to register the directory.
	time.Sleep(100 * time.Millisecond)

	cfg.Feed.URL = "https://example.com/updated"
	require.NoError(t, Save(path, cfg))

	select {
	case c := <-got:
		assert.Equal(t, "https://example.com/updated", c.Feed.URL)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not report the change")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestWatchIgnoresMovedFile(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Feed.URL = "https://example.com/feed"
	require.NoError(t, Save(path, cfg))

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(c *Config) { got <- c })
	}()
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.Rename(path, path+".bak"))

	select {
	case c := <-got:
		t.Fatalf("reload delivered after the file moved away: feed.url=%q", c.Feed.URL)
	case <-time.After(time.Second):
	}
	_, err := os.Stat(path)
	assert.ErrorIs(t, err, fs.ErrNotExist, "a moved config must not be recreated")

	cancel()
	require.NoError(t, <-done)
}

func TestReloadDoesNotCreateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	_, err := Reload(path)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	_, err = os.Stat(path)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

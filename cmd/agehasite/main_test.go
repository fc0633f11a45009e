package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agehasite/internal/config"
	"agehasite/internal/model"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		calendarMonth, calendarPlain, askRaw = "", false, false
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCalendarPlainWithoutFeed(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")

	out, err := execute(t, "--config", cfgPath, "calendar", "--plain", "--month", "2025-12")
	require.NoError(t, err)
	assert.Contains(t, out, "2025年12月")
	assert.Contains(t, out, "  1   2   3   4   5   6   7x")

	// First run writes the default config.
	_, err = os.Stat(cfgPath)
	assert.NoError(t, err)
}

func TestCalendarRejectsBadMonth(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	_, err := execute(t, "--config", cfgPath, "calendar", "--plain", "--month", "12/2025")
	assert.Error(t, err)
}

func TestAskRequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")

	_, err := execute(t, "--config", cfgPath, "ask", "hello")
	assert.ErrorContains(t, err, "GEMINI_API_KEY")
}

func TestEventSourcesApply(t *testing.T) {
	cfg := config.DefaultConfig()
	s := newEventSources(cfg)
	assert.False(t, s.apply(cfg))

	next := config.DefaultConfig()
	next.Feed.Calendars = []config.CalendarSource{{ID: "holidays", URL: "https://example.com/h.ics", Type: "休業日"}}
	assert.True(t, s.apply(next))
	require.Len(t, s.importer.Sources(), 1)
	assert.Equal(t, model.EventClosed, s.importer.Sources()[0].Type)
	assert.False(t, s.apply(next))

	next.Feed.URL = "https://example.com/exec"
	assert.True(t, s.apply(next))
	assert.Equal(t, "https://example.com/exec", s.sheet.URL())
}

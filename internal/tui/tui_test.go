package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agehasite/internal/calendar"
	"agehasite/internal/model"
)

var tuiEvents = []model.CalendarEvent{
	{Date: "2025-12-14", Type: model.EventEvent, Title: "マルシェ", Description: "島の野菜"},
	{Date: "2025-12-31", Type: model.EventClosed, Title: "年末休業"},
}

func dec10() time.Time {
	return time.Date(2025, time.December, 10, 9, 0, 0, 0, time.UTC)
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestRenderPlain(t *testing.T) {
	m := calendar.Month{Year: 2025, Month: time.December}
	out := RenderPlain(m, calendar.NewIndex(tuiEvents))
	lines := strings.Split(out, "\n")

	assert.Equal(t, "2025年12月", lines[0])
	assert.Equal(t, "  月  火  水  木  金  土  日", lines[1])
	assert.Equal(t, "  1   2   3   4   5   6   7x", lines[2])
	assert.Equal(t, "  8   9  10  11  12  13  14*", lines[3])
	assert.Contains(t, out, "12/14 [イベント] マルシェ")
	assert.Contains(t, out, "12/31 [休業日] 年末休業")
	assert.Contains(t, out, "定休日 日曜日")
}

func TestRenderPlainPadsLeadingBlanks(t *testing.T) {
	out := RenderPlain(calendar.Month{Year: 2025, Month: time.June}, calendar.Index{})
	lines := strings.Split(out, "\n")
	assert.Equal(t, strings.Repeat(" ", 24)+"  1x", lines[2])
}

func TestViewLockReleasesOnce(t *testing.T) {
	var l viewLock
	pos := viewPos{Month: calendar.Month{Year: 2025, Month: time.May}, Cursor: 3}

	require.True(t, l.acquire(pos))
	assert.False(t, l.acquire(viewPos{Cursor: 9}), "second acquire is refused")

	got, ok := l.release()
	assert.True(t, ok)
	assert.Equal(t, pos, got)

	_, ok = l.release()
	assert.False(t, ok, "second release is a no-op")
	assert.False(t, l.locked())
}

func TestModelNavigation(t *testing.T) {
	m := New(nil, dec10()).WithEvents(tuiEvents)
	assert.Equal(t, 10, m.cursor)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 18, m.cursor)

	// Rolls into January.
	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, calendar.Month{Year: 2026, Month: time.January}, m.month)
	assert.Equal(t, 1, m.cursor)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, calendar.Month{Year: 2025, Month: time.December}, m.month)
	assert.Equal(t, 31, m.cursor)

	// Month jump clamps the cursor.
	m = press(t, m, runes("p"), runes("p"))
	assert.Equal(t, calendar.Month{Year: 2025, Month: time.October}, m.month)
	m = press(t, m, runes("n"))
	assert.Equal(t, 30, m.cursor)

	m = press(t, m, runes("t"))
	assert.Equal(t, calendar.Month{Year: 2025, Month: time.December}, m.month)
	assert.Equal(t, 10, m.cursor)
}

func TestModelDetailLocksNavigation(t *testing.T) {
	m := New(nil, dec10()).WithEvents(tuiEvents)

	// No event on the 10th: enter does nothing.
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, m.detail)

	m = press(t, m, runes("l"), runes("l"), runes("l"), runes("l"))
	require.Equal(t, 14, m.cursor)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, m.detail)
	assert.Equal(t, "マルシェ", m.detail.Title)
	assert.True(t, m.lock.locked())
	assert.Contains(t, m.View(), "マルシェ")

	// Navigation is ignored while the modal is open.
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight}, runes("n"))
	assert.Equal(t, 14, m.cursor)
	assert.Equal(t, time.December, m.month.Month)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, m.detail)
	assert.False(t, m.lock.locked())
	assert.Equal(t, 14, m.cursor)

	// Esc with no modal quits.
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModelLoads(t *testing.T) {
	called := false
	m := New(func(context.Context) []model.CalendarEvent {
		called = true
		return tuiEvents
	}, dec10())
	assert.True(t, m.loading)
	assert.Contains(t, m.View(), "読み込み中")

	cmd := m.Init()
	require.NotNil(t, cmd)
	msg := cmd()
	assert.True(t, called)

	next, _ := m.Update(msg)
	m = next.(Model)
	assert.False(t, m.loading)
	_, ok := m.idx.Lookup("2025-12-14")
	assert.True(t, ok)
	assert.Contains(t, m.View(), "12月")
}

// Package tui is the terminal month view of the restaurant calendar.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"agehasite/internal/model"
)

// Palette follows the site's colors.
var (
	colorPrimary   = lipgloss.Color("#8a6d3b")
	colorMuted     = lipgloss.Color("#777777")
	colorClosedBg  = lipgloss.Color("#3a3a36")
	colorSaturday  = lipgloss.Color("#4a6fa5")
	colorSunday    = lipgloss.Color("#b5473a")
	colorBorder    = lipgloss.Color("#5c5c55")
	colorHighlight = lipgloss.Color("#f7f6f2")

	typeColors = map[model.EventType]lipgloss.Color{
		model.EventSpecialMenu:    lipgloss.Color("#d9a441"),
		model.EventEvent:          lipgloss.Color("#6aa36a"),
		model.EventClosed:         lipgloss.Color("#9a9a9a"),
		model.EventPrivateBooking: lipgloss.Color("#c8645a"),
		model.EventNotice:         lipgloss.Color("#5a86c8"),
	}
)

// Styles groups the lipgloss styles used by the view.
type Styles struct {
	Title    lipgloss.Style
	Weekday  lipgloss.Style
	Day      lipgloss.Style
	Blank    lipgloss.Style
	Closed   lipgloss.Style
	Saturday lipgloss.Style
	Sunday   lipgloss.Style
	Today    lipgloss.Style
	Cursor   lipgloss.Style
	Info     lipgloss.Style
	Modal    lipgloss.Style
	Badge    lipgloss.Style
}

const cellWidth = 6

// DefaultStyles returns the standard styles.
func DefaultStyles() Styles {
	cell := lipgloss.NewStyle().Width(cellWidth).Align(lipgloss.Right).PaddingRight(1)
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).MarginBottom(1),
		Weekday:  cell.Foreground(colorMuted),
		Day:      cell,
		Blank:    cell,
		Closed:   cell.Background(colorClosedBg).Foreground(colorMuted),
		Saturday: cell.Foreground(colorSaturday),
		Sunday:   cell.Foreground(colorSunday),
		Today:    cell.Underline(true).Bold(true),
		Cursor:   cell.Reverse(true).Foreground(colorHighlight),
		Info:     lipgloss.NewStyle().Foreground(colorMuted).MarginTop(1),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2),
		Badge: lipgloss.NewStyle().Bold(true).Padding(0, 1),
	}
}

// badge renders the event type label in its color.
func (s Styles) badge(t model.EventType) string {
	label := t.Label()
	if label == "" {
		return ""
	}
	st := s.Badge
	if c, ok := typeColors[t]; ok {
		st = st.Foreground(c)
	}
	return st.Render(label)
}

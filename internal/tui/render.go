package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"agehasite/internal/calendar"
	"agehasite/internal/model"
	"agehasite/internal/site"
)

var weekdayNames = [7]string{"月", "火", "水", "木", "金", "土", "日"}

func monthTitle(m calendar.Month) string {
	return fmt.Sprintf("%d年%d月", m.Year, int(m.Month))
}

// RenderPlain renders the month as uncolored text for pipes and logs.
// Markers: '*' the day has an event, 'x' regular holiday.
func RenderPlain(m calendar.Month, idx calendar.Index) string {
	var b strings.Builder
	b.WriteString(monthTitle(m))
	b.WriteString("\n")
	for _, wd := range weekdayNames {
		b.WriteString("  " + wd)
	}
	b.WriteString("\n")

	for _, week := range m.Grid(idx).Weeks() {
		var line strings.Builder
		for _, c := range week {
			if c == nil {
				line.WriteString("    ")
				continue
			}
			fmt.Fprintf(&line, "%3d%c", c.Day, plainMarker(c))
		}
		b.WriteString(strings.TrimRight(line.String(), " "))
		b.WriteString("\n")
	}

	if events := idx.InMonth(m); len(events) > 0 {
		b.WriteString("\n")
		for _, ev := range events {
			b.WriteString(eventLine(ev))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(hoursText())
	return b.String()
}

func plainMarker(c *model.DayCell) rune {
	switch {
	case c.Event != nil:
		return '*'
	case c.DefaultClosed:
		return 'x'
	default:
		return ' '
	}
}

func eventLine(ev model.CalendarEvent) string {
	date := ev.Date
	if len(date) == len(calendar.DateLayout) {
		date = strings.TrimPrefix(date[5:7], "0") + "/" + strings.TrimPrefix(date[8:], "0")
	}
	if label := ev.Type.Label(); label != "" && label != ev.Title {
		return fmt.Sprintf("%s [%s] %s", date, label, ev.Title)
	}
	return fmt.Sprintf("%s %s", date, ev.Title)
}

func hoursText() string {
	parts := make([]string, 0, len(site.OpeningHours))
	for _, h := range site.OpeningHours {
		parts = append(parts, h.Days+" "+h.Time)
	}
	return "営業時間 " + strings.Join(parts, " / ") + "\n定休日 " + site.RegularHoliday + "\n"
}

// renderGrid draws the styled month with the cursor on day cursor.
func renderGrid(s Styles, m calendar.Month, idx calendar.Index, cursor int, today string) string {
	header := make([]string, 0, 7)
	for _, wd := range weekdayNames {
		header = append(header, s.Weekday.Render(wd))
	}
	rows := []string{lipgloss.JoinHorizontal(lipgloss.Top, header...)}

	for _, week := range m.Grid(idx).Weeks() {
		cells := make([]string, 0, 7)
		for col, c := range week {
			if c == nil {
				cells = append(cells, s.Blank.Render(""))
				continue
			}
			cells = append(cells, dayStyle(s, c, col, cursor, today, m).Render(dayText(c)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func dayText(c *model.DayCell) string {
	switch {
	case c.Event != nil:
		return fmt.Sprintf("%d●", c.Day)
	case c.DefaultClosed:
		return fmt.Sprintf("%d休", c.Day)
	default:
		return fmt.Sprintf("%d", c.Day)
	}
}

func dayStyle(s Styles, c *model.DayCell, col, cursor int, today string, m calendar.Month) lipgloss.Style {
	switch {
	case c.Day == cursor:
		return s.Cursor
	case calendar.CanonicalDate(m.Year, m.Month, c.Day) == today:
		return s.Today
	case c.Closed():
		return s.Closed
	case c.Event != nil:
		if color, ok := typeColors[c.Event.Type]; ok {
			return s.Day.Foreground(color)
		}
		return s.Day
	case col == 5:
		return s.Saturday
	case col == 6:
		return s.Sunday
	default:
		return s.Day
	}
}

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"agehasite/internal/calendar"
	"agehasite/internal/feed"
	"agehasite/internal/model"
	"agehasite/internal/site"
)

// Loader fetches the events to display.
type Loader func(ctx context.Context) []model.CalendarEvent

// loadTimeout bounds the initial fetch.
const loadTimeout = 30 * time.Second

type eventsLoadedMsg struct {
	events []model.CalendarEvent
}

type keyMap struct {
	Left      key.Binding
	Right     key.Binding
	Up        key.Binding
	Down      key.Binding
	PrevMonth key.Binding
	NextMonth key.Binding
	Today     key.Binding
	Open      key.Binding
	Close     key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "前日")),
		Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "翌日")),
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "前週")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "翌週")),
		PrevMonth: key.NewBinding(key.WithKeys("p", "["), key.WithHelp("p", "前月")),
		NextMonth: key.NewBinding(key.WithKeys("n", "]"), key.WithHelp("n", "翌月")),
		Today:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "今日")),
		Open:      key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "詳細")),
		Close:     key.NewBinding(key.WithKeys("esc", "enter", "q"), key.WithHelp("esc", "閉じる")),
		Quit:      key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "終了")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.PrevMonth, k.NextMonth, k.Open, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down},
		{k.PrevMonth, k.NextMonth, k.Today},
		{k.Open, k.Close, k.Quit},
	}
}

// Model is the bubbletea model for the calendar view.
type Model struct {
	load    Loader
	loading bool
	idx     calendar.Index

	month  calendar.Month
	cursor int
	today  time.Time

	// The detail modal holds the lock; navigation keys are ignored
	// until it is released.
	lock     viewLock
	detail   *model.CalendarEvent
	viewport viewport.Model

	keys   keyMap
	help   help.Model
	styles Styles
	width  int
}

// New builds a view positioned on now. If load is nil the view starts
// empty and not loading.
func New(load Loader, now time.Time) Model {
	return Model{
		load:     load,
		loading:  load != nil,
		idx:      calendar.Index{},
		month:    calendar.MonthOf(now),
		cursor:   now.Day(),
		today:    now,
		viewport: viewport.New(60, 10),
		keys:     defaultKeyMap(),
		help:     help.New(),
		styles:   DefaultStyles(),
	}
}

// WithEvents returns m showing events without loading.
func (m Model) WithEvents(events []model.CalendarEvent) Model {
	m.idx = calendar.NewIndex(events)
	m.loading = false
	return m
}

// WithMonth moves the view to month, keeping the cursor in range.
func (m Model) WithMonth(month calendar.Month) Model {
	m.month = month
	m.cursor = min(max(m.cursor, 1), month.Days())
	return m
}

func (m Model) Init() tea.Cmd {
	if m.load == nil {
		return nil
	}
	load := m.load
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		return eventsLoadedMsg{events: load(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.viewport.Width = min(msg.Width-6, 72)
		m.viewport.Height = max(msg.Height-12, 5)
		return m, nil

	case eventsLoadedMsg:
		m.idx = calendar.NewIndex(msg.events)
		m.loading = false
		return m, nil

	case tea.KeyMsg:
		if m.lock.locked() {
			return m.updateDetail(msg)
		}
		return m.updateGrid(msg)
	}
	return m, nil
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.Close):
		m.closeDetail()
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) updateGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Left):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Right):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-7)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(7)
	case key.Matches(msg, m.keys.PrevMonth):
		m = m.WithMonth(m.month.Prev())
	case key.Matches(msg, m.keys.NextMonth):
		m = m.WithMonth(m.month.Next())
	case key.Matches(msg, m.keys.Today):
		m.month = calendar.MonthOf(m.today)
		m.cursor = m.today.Day()
	case key.Matches(msg, m.keys.Open):
		m.openDetail()
	}
	return m, nil
}

// moveCursor shifts the cursor by delta days (|delta| <= 7), rolling over
// into the neighbouring month.
func (m *Model) moveCursor(delta int) {
	d := m.cursor + delta
	switch {
	case d < 1:
		m.month = m.month.Prev()
		m.cursor = m.month.Days() + d
	case d > m.month.Days():
		d -= m.month.Days()
		m.month = m.month.Next()
		m.cursor = d
	default:
		m.cursor = d
	}
}

func (m *Model) selectedDate() string {
	return calendar.CanonicalDate(m.month.Year, m.month.Month, m.cursor)
}

func (m *Model) openDetail() {
	ev, ok := m.idx.Lookup(m.selectedDate())
	if !ok {
		return
	}
	if !m.lock.acquire(viewPos{Month: m.month, Cursor: m.cursor}) {
		return
	}
	m.detail = &ev
	m.viewport.SetContent(m.detailContent(ev))
	m.viewport.GotoTop()
}

func (m *Model) closeDetail() {
	m.detail = nil
	if pos, ok := m.lock.release(); ok {
		m.month = pos.Month
		m.cursor = pos.Cursor
	}
}

func (m Model) detailContent(ev model.CalendarEvent) string {
	var b strings.Builder
	if badge := m.styles.badge(ev.Type); badge != "" {
		b.WriteString(badge)
		b.WriteString("\n")
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(ev.Title))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(colorMuted).Render(ev.Date))
	b.WriteString("\n")
	if ev.Description != "" {
		b.WriteString("\n")
		b.WriteString(ev.Description)
		b.WriteString("\n")
	}
	if ev.ImageURL != "" {
		b.WriteString("\n画像: ")
		b.WriteString(feed.RewriteImageURL(ev.ImageURL))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(site.Name + "  " + monthTitle(m.month)))
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString("読み込み中...\n")
	case m.detail != nil:
		b.WriteString(m.styles.Modal.Render(m.viewport.View()))
		b.WriteString("\n")
	default:
		today := m.today.Format(calendar.DateLayout)
		b.WriteString(renderGrid(m.styles, m.month, m.idx, m.cursor, today))
		b.WriteString("\n")
		if ev, ok := m.idx.Lookup(m.selectedDate()); ok {
			b.WriteString(fmt.Sprintf("\n%s\n", eventLine(ev)))
		}
		b.WriteString(m.styles.Info.Render(strings.TrimRight(hoursText(), "\n")))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// Run starts the interactive view and blocks until the user quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

package web

import (
	"bytes"
	"html/template"
	"net/http"
	"time"

	"agehasite/internal/calendar"
	"agehasite/internal/feed"
	appLog "agehasite/internal/log"
	"agehasite/internal/model"
	"agehasite/internal/site"
)

// eventDTO is the JSON/template view of a feed event. Image URLs are
// already rewritten for display.
type eventDTO struct {
	Date             string          `json:"date"`
	Type             model.EventType `json:"type"`
	Label            string          `json:"label"`
	Title            string          `json:"title"`
	Description      string          `json:"description,omitempty"`
	ImageURL         string          `json:"image_url,omitempty"`
	FallbackImageURL string          `json:"fallback_image_url,omitempty"`
}

func newEventDTO(ev model.CalendarEvent) eventDTO {
	return eventDTO{
		Date:             ev.Date,
		Type:             ev.Type,
		Label:            ev.Type.Label(),
		Title:            ev.Title,
		Description:      ev.Description,
		ImageURL:         feed.RewriteImageURL(ev.ImageURL),
		FallbackImageURL: feed.FallbackImageURL(ev.ImageURL),
	}
}

// eventsResponse is the JSON response shape for /api/events.
type eventsResponse struct {
	Loading   bool       `json:"loading"`
	FetchedAt *time.Time `json:"fetched_at,omitempty"`
	Events    []eventDTO `json:"events"`
}

func newEventsResponse(snap *feed.Snapshot) eventsResponse {
	resp := eventsResponse{
		Loading: !snap.Loaded,
		Events:  make([]eventDTO, 0, len(snap.Events)),
	}
	if snap.Loaded {
		t := snap.FetchedAt
		resp.FetchedAt = &t
	}
	for _, ev := range snap.Events {
		resp.Events = append(resp.Events, newEventDTO(ev))
	}
	return resp
}

// cellDTO is one day of the month view.
type cellDTO struct {
	Day           int       `json:"day"`
	Date          string    `json:"date"`
	Weekday       int       `json:"weekday"`
	DefaultClosed bool      `json:"default_closed"`
	Closed        bool      `json:"closed"`
	Today         bool      `json:"today,omitempty"`
	Event         *eventDTO `json:"event,omitempty"`
}

// calendarView backs both /api/calendar and the calendar template.
type calendarView struct {
	Month         string       `json:"month"`
	Year          int          `json:"year"`
	MonthNumber   int          `json:"month_number"`
	Prev          string       `json:"prev"`
	Next          string       `json:"next"`
	Loading       bool         `json:"loading"`
	LeadingBlanks int          `json:"leading_blanks"`
	DaysInMonth   int          `json:"days_in_month"`
	Cells         []cellDTO    `json:"cells"`
	Weeks         [][]*cellDTO `json:"-"`

	Hours          []site.Hours `json:"-"`
	RegularHoliday string       `json:"-"`
	ChangeNote     string       `json:"-"`
}

func (s *Server) buildCalendarView(m calendar.Month, snap *feed.Snapshot) calendarView {
	today := s.now().In(s.cfg.Location()).Format(calendar.DateLayout)

	view := calendarView{
		Month:          m.String(),
		Year:           m.Year,
		MonthNumber:    int(m.Month),
		Prev:           m.Prev().String(),
		Next:           m.Next().String(),
		Loading:        !snap.Loaded,
		DaysInMonth:    m.Days(),
		Hours:          site.OpeningHours,
		RegularHoliday: site.RegularHoliday,
		ChangeNote:     site.ChangeNote,
	}
	if view.Loading {
		// The grid is not rendered until the feed has loaded once.
		view.Cells = []cellDTO{}
		return view
	}

	grid := m.Grid(snap.Index)
	view.LeadingBlanks = grid.LeadingBlanks()
	view.Cells = make([]cellDTO, 0, len(grid))
	for i, c := range grid {
		if c == nil {
			continue
		}
		cell := cellDTO{
			Day:           c.Day,
			Date:          calendar.CanonicalDate(m.Year, m.Month, c.Day),
			Weekday:       i % 7,
			DefaultClosed: c.DefaultClosed,
			Closed:        c.Closed(),
		}
		cell.Today = cell.Date == today
		if c.Event != nil {
			ev := newEventDTO(*c.Event)
			cell.Event = &ev
		}
		view.Cells = append(view.Cells, cell)
	}

	// Template rows: blanks stay nil.
	padded := make([]*cellDTO, view.LeadingBlanks, view.LeadingBlanks+len(view.Cells))
	for i := range view.Cells {
		padded = append(padded, &view.Cells[i])
	}
	for i := 0; i < len(padded); i += 7 {
		row := make([]*cellDTO, 7)
		copy(row, padded[i:min(i+7, len(padded))])
		view.Weeks = append(view.Weeks, row)
	}
	return view
}

// monthParam resolves ?month=YYYY-MM, defaulting to the current month.
// ok is false when the parameter is present but malformed.
func (s *Server) monthParam(r *http.Request) (calendar.Month, bool) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		return calendar.MonthOf(s.now().In(s.cfg.Location())), true
	}
	m, err := calendar.ParseMonth(raw)
	if err != nil {
		return calendar.MonthOf(s.now().In(s.cfg.Location())), false
	}
	return m, true
}

// handleCalendar returns the month view as JSON.
//
// GET /api/calendar?month=2025-12
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}
	m, ok := s.monthParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "month must be YYYY-MM")
		return
	}
	writeJSON(w, http.StatusOK, s.buildCalendarView(m, s.refresher.Snapshot()))
}

// handleEvents returns every event of the current snapshot.
//
// GET /api/events
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, newEventsResponse(s.refresher.Snapshot()))
}

// pageData is the root template's data.
type pageData struct {
	Name            string
	Nav             []site.NavItem
	HeroImages      []string
	HeroMain        string
	HeroSub         string
	ConceptText     string
	ConceptImage    string
	MenuText        string
	MenuImage       string
	Menu            []site.MenuLine
	VisualImages    []string
	AccessText      string
	AccessImage     string
	PostalCode      string
	Address         string
	Directions      []string
	MapURL          string
	Phone           string
	PhoneTel        string
	Instagram       string
	ReservationNote string
	ChangeNote      string
	CarouselMillis  int64

	Calendar     calendarView
	ChatEnabled  bool
	ChatGreeting string
}

// handleIndex renders the page.
//
// GET /?month=2025-12
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	m, _ := s.monthParam(r)

	data := pageData{
		Name:            site.Name,
		Nav:             site.Nav,
		HeroImages:      site.HeroImages,
		HeroMain:        site.HeroMain,
		HeroSub:         site.HeroSub,
		ConceptText:     site.ConceptText,
		ConceptImage:    site.ConceptImage,
		MenuText:        site.MenuText,
		MenuImage:       site.MenuImage,
		Menu:            site.Menu,
		VisualImages:    site.VisualImages,
		AccessText:      site.AccessText,
		AccessImage:     site.AccessImage,
		PostalCode:      site.PostalCode,
		Address:         site.Address,
		Directions:      site.Directions,
		MapURL:          site.MapURL,
		Phone:           site.Phone,
		PhoneTel:        site.PhoneTel,
		Instagram:       site.Instagram,
		ReservationNote: site.ReservationNote,
		ChangeNote:      site.ChangeNote,
		CarouselMillis:  site.CarouselInterval.Milliseconds(),
		Calendar:        s.buildCalendarView(m, s.refresher.Snapshot()),
		ChatEnabled:     s.sessions != nil,
		ChatGreeting:    s.cfg.Chat.Greeting,
	}
	s.render(w, "index.html", data)
}

// handleCalendarPartial renders only the calendar block; the page script
// swaps it in on month navigation and while the feed is loading.
//
// GET /partials/calendar?month=2025-12
func (s *Server) handleCalendarPartial(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}
	m, ok := s.monthParam(r)
	if !ok {
		http.Error(w, "month must be YYYY-MM", http.StatusBadRequest)
		return
	}
	s.render(w, "calendar", s.buildCalendarView(m, s.refresher.Snapshot()))
}

// render executes into a buffer first so a template error never leaves a
// half-written page.
func (s *Server) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		appLog.Error("template render failed", err, "template", name)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = buf.WriteTo(w)
}

var weekdayHeaders = []string{"月", "火", "水", "木", "金", "土", "日"}

func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"lines":    site.Lines,
		"weekdays": func() []string { return weekdayHeaders },
	}).ParseFS(embeddedTemplates, "templates/*.html")
}

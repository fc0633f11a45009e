package model

import "strings"

// EventType classifies a calendar entry from the feed.
type EventType string

const (
	EventSpecialMenu    EventType = "special_menu"
	EventEvent          EventType = "event"
	EventClosed         EventType = "closed"
	EventPrivateBooking EventType = "private_booking"
	EventNotice         EventType = "notice"
	EventUnspecified    EventType = "unspecified"
)

// typeAliases maps the spreadsheet's category column (Japanese as typed by
// staff, or the ASCII key) to an EventType.
var typeAliases = map[string]EventType{
	"特別メニュー":          EventSpecialMenu,
	"限定メニュー":          EventSpecialMenu,
	"special_menu":    EventSpecialMenu,
	"specialmenu":     EventSpecialMenu,
	"イベント":            EventEvent,
	"event":           EventEvent,
	"休業日":             EventClosed,
	"休業":              EventClosed,
	"臨時休業":            EventClosed,
	"定休日":             EventClosed,
	"closed":          EventClosed,
	"貸切":              EventPrivateBooking,
	"貸し切り":            EventPrivateBooking,
	"private_booking": EventPrivateBooking,
	"privatebooking":  EventPrivateBooking,
	"お知らせ":            EventNotice,
	"notice":          EventNotice,
}

// ParseEventType maps a raw feed category onto an EventType.
// Unknown and empty values become EventUnspecified.
func ParseEventType(raw string) EventType {
	key := strings.ToLower(strings.TrimSpace(raw))
	if t, ok := typeAliases[key]; ok {
		return t
	}
	return EventUnspecified
}

// Label returns the Japanese text shown on the calendar badge.
func (t EventType) Label() string {
	switch t {
	case EventSpecialMenu:
		return "特別メニュー"
	case EventEvent:
		return "イベント"
	case EventClosed:
		return "休業日"
	case EventPrivateBooking:
		return "貸切"
	case EventNotice:
		return "お知らせ"
	default:
		return ""
	}
}

// CalendarEvent is a normalized feed record. Date is the canonical
// YYYY-MM-DD form (or the raw value when it could not be parsed).
type CalendarEvent struct {
	Date        string    `json:"date"`
	Type        EventType `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
}

// DayCell is one day in a month grid. It is derived, never stored.
type DayCell struct {
	Day           int            `json:"day"`
	DefaultClosed bool           `json:"default_closed"`
	Event         *CalendarEvent `json:"event,omitempty"`
}

// Closed reports whether the restaurant is closed that day, either by the
// regular holiday or by an explicit closure in the feed.
func (c *DayCell) Closed() bool {
	if c == nil {
		return false
	}
	return c.DefaultClosed || (c.Event != nil && c.Event.Type == EventClosed)
}

// MonthGrid is the Monday-first padded sequence of cells; nil entries are
// the blanks before day 1.
type MonthGrid []*DayCell

// LeadingBlanks counts the nil padding at the start of the grid.
func (g MonthGrid) LeadingBlanks() int {
	n := 0
	for _, c := range g {
		if c != nil {
			break
		}
		n++
	}
	return n
}

// Weeks splits the grid into rows of seven, padding the last row with nils.
func (g MonthGrid) Weeks() [][]*DayCell {
	var weeks [][]*DayCell
	for i := 0; i < len(g); i += 7 {
		row := make([]*DayCell, 7)
		copy(row, g[i:min(i+7, len(g))])
		weeks = append(weeks, row)
	}
	return weeks
}

package feed

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"agehasite/internal/model"
)

// timestampShift reinterprets the feed's UTC timestamps as Japan calendar
// dates. The spreadsheet exports midnight JST as 15:00Z the previous day.
const timestampShift = 9 * time.Hour

const canonicalLayout = "2006-01-02"

var (
	reCanonical = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reSlashed   = regexp.MustCompile(`^\d{4}/\d{2}/\d{2}$`)
)

// looseLayouts are tried, in order, for values that are neither canonical
// nor timestamps. Their calendar fields are read in the caller's location.
var looseLayouts = []string{
	"2006/1/2",
	"2006-1-2",
	"2006年1月2日",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
	time.RFC1123,
	time.RFC1123Z,
	time.RFC850,
	time.ANSIC,
	"Mon Jan 02 2006 15:04:05 GMT-0700",
	"Jan 2, 2006",
	"January 2, 2006",
}

// Localized column names, primary first.
var (
	dateFields        = []string{"日付", "date", "Date"}
	typeFields        = []string{"種類", "種別", "type", "Type"}
	titleFields       = []string{"タイトル", "title", "Title"}
	descriptionFields = []string{"詳細", "説明", "description", "Description"}
	imageFields       = []string{"画像", "画像URL", "image", "imageUrl", "Image"}
)

// NormalizeDate converts a raw feed date to YYYY-MM-DD. It accepts, in
// order: canonical dates, YYYY/MM/DD, ISO-8601 timestamps (shifted +9h from
// UTC before taking the date), and any looseLayouts value read in loc.
// Anything else is returned trimmed but otherwise unchanged.
func NormalizeDate(raw string, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	s := strings.TrimSpace(raw)

	switch {
	case reCanonical.MatchString(s):
		return s
	case reSlashed.MatchString(s):
		return strings.ReplaceAll(s, "/", "-")
	}

	if strings.Contains(s, "T") {
		if t, ok := parseTimestamp(s); ok {
			return t.UTC().Add(timestampShift).Format(canonicalLayout)
		}
	}

	for _, layout := range looseLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			continue
		}
		return t.In(loc).Format(canonicalLayout)
	}

	return s
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseRecords decodes a feed body into events. Bodies that are not a JSON
// array yield no events; array elements that are not objects or have no
// date are skipped.
func ParseRecords(body []byte, loc *time.Location) ([]model.CalendarEvent, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("feed: decode body: %w", err)
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("feed: expected JSON array, got %T", raw)
	}

	events := make([]model.CalendarEvent, 0, len(items))
	for _, item := range items {
		rec, ok := item.(map[string]any)
		if !ok {
			continue
		}
		ev, ok := recordToEvent(rec, loc)
		if !ok {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func recordToEvent(rec map[string]any, loc *time.Location) (model.CalendarEvent, bool) {
	date := field(rec, dateFields)
	if date == "" {
		return model.CalendarEvent{}, false
	}
	return model.CalendarEvent{
		Date:        NormalizeDate(date, loc),
		Type:        model.ParseEventType(field(rec, typeFields)),
		Title:       field(rec, titleFields),
		Description: field(rec, descriptionFields),
		ImageURL:    field(rec, imageFields),
	}, true
}

// field returns the first non-empty value among names, stringified.
func field(rec map[string]any, names []string) string {
	for _, name := range names {
		v, ok := rec[name]
		if !ok || v == nil {
			continue
		}
		var s string
		switch x := v.(type) {
		case string:
			s = x
		case float64:
			s = strconv.FormatFloat(x, 'f', -1, 64)
		default:
			s = fmt.Sprint(x)
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

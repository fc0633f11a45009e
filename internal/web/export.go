package web

import (
	"net/http"
	"time"

	"agehasite/internal/calendar"
	"agehasite/internal/feed"
	"agehasite/internal/ics"
	appLog "agehasite/internal/log"
)

// icsCache holds the rendered export for one snapshot and month.
type icsCache struct {
	snap  *feed.Snapshot
	month calendar.Month
	body  string
}

// exportMonths is how far ahead regular closures are expanded.
const exportMonths = 6

// handleICS serves the calendar as text/calendar. Regular closures cover
// the previous month through exportMonths ahead.
//
// GET /calendar.ics
func (s *Server) handleICS(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodHead) {
		return
	}

	loc := s.cfg.Location()
	snap := s.refresher.EnsureLoaded(r.Context())
	month := calendar.MonthOf(s.now().In(loc))

	s.icsMu.RLock()
	c := s.icsCache
	s.icsMu.RUnlock()
	if c != nil && c.snap == snap && c.month == month {
		writeCalendar(w, c.body)
		return
	}

	start := time.Date(month.Year, month.Month, 1, 0, 0, 0, 0, loc).AddDate(0, -1, 0)
	end := time.Date(month.Year, month.Month, 1, 0, 0, 0, 0, loc).AddDate(0, exportMonths+1, -1)

	body, err := ics.Export(snap.Index, ics.ExportConfig{
		Location:   loc,
		RangeStart: start,
		RangeEnd:   end,
		SiteURL:    s.cfg.SiteURL,
		Now:        snap.FetchedAt,
	})
	if err != nil {
		appLog.Error("ics export failed", err)
		writeError(w, http.StatusInternalServerError, "failed to export calendar")
		return
	}

	s.icsMu.Lock()
	s.icsCache = &icsCache{snap: snap, month: month, body: body}
	s.icsMu.Unlock()

	writeCalendar(w, body)
}

func writeCalendar(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="agehasite.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

package tui

import "agehasite/internal/calendar"

// viewPos is the part of the view a modal must hand back untouched.
type viewPos struct {
	Month  calendar.Month
	Cursor int
}

// viewLock freezes navigation while the detail modal is open. acquire
// saves the position; release hands it back exactly once, and further
// releases report false.
type viewLock struct {
	held  bool
	saved viewPos
}

func (l *viewLock) acquire(pos viewPos) bool {
	if l.held {
		return false
	}
	l.held = true
	l.saved = pos
	return true
}

func (l *viewLock) release() (viewPos, bool) {
	if !l.held {
		return viewPos{}, false
	}
	l.held = false
	return l.saved, true
}

func (l *viewLock) locked() bool { return l.held }

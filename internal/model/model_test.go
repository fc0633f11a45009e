package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEventType(t *testing.T) {
	tests := []struct {
		raw  string
		want EventType
	}{
		{"特別メニュー", EventSpecialMenu},
		{" イベント ", EventEvent},
		{"休業日", EventClosed},
		{"貸切", EventPrivateBooking},
		{"お知らせ", EventNotice},
		{"Closed", EventClosed},
		{"", EventUnspecified},
		{"なにか", EventUnspecified},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseEventType(tt.raw), tt.raw)
	}
}

func TestDayCellClosed(t *testing.T) {
	var nilCell *DayCell
	assert.False(t, nilCell.Closed())
	assert.True(t, (&DayCell{Day: 7, DefaultClosed: true}).Closed())
	assert.True(t, (&DayCell{Day: 8, Event: &CalendarEvent{Type: EventClosed}}).Closed())
	assert.False(t, (&DayCell{Day: 9, Event: &CalendarEvent{Type: EventPrivateBooking}}).Closed())
}

func TestGridWeeks(t *testing.T) {
	g := MonthGrid{nil, nil, {Day: 1}, {Day: 2}, {Day: 3}, {Day: 4}, {Day: 5}, {Day: 6}, {Day: 7}}
	assert.Equal(t, 2, g.LeadingBlanks())

	weeks := g.Weeks()
	assert.Len(t, weeks, 2)
	assert.Equal(t, 6, weeks[1][0].Day)
	assert.Nil(t, weeks[1][2])
}

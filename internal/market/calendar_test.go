package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeCalendar marks specific dates as closed; every other weekday
// counts as open.
type fakeCalendar struct {
	closed map[string]bool
}

func (f *fakeCalendar) IsOpen(date time.Time) (bool, bool) {
	key := date.Format("2006-01-02")
	if f.closed[key] {
		return false, true
	}
	wd := date.Weekday()
	return wd != time.Saturday && wd != time.Sunday, true
}

func cstTime(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, cst)
}

func TestAnalysisDate(t *testing.T) {
	// 2025-06-11 is a Wednesday.
	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{name: "before open", now: cstTime(2025, 6, 11, 8, 0), want: "2025-06-10"},
		{name: "during session", now: cstTime(2025, 6, 11, 10, 30), want: "2025-06-10"},
		{name: "lunch break still in session window", now: cstTime(2025, 6, 11, 12, 0), want: "2025-06-10"},
		{name: "after close", now: cstTime(2025, 6, 11, 15, 30), want: "2025-06-11"},
		{name: "exactly at close", now: cstTime(2025, 6, 11, 15, 0), want: "2025-06-11"},
		{name: "saturday", now: cstTime(2025, 6, 14, 12, 0), want: "2025-06-13"},
		{name: "sunday", now: cstTime(2025, 6, 15, 12, 0), want: "2025-06-13"},
		{name: "monday before open", now: cstTime(2025, 6, 16, 9, 0), want: "2025-06-13"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalysisDate(tt.now, nil)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
		})
	}
}

func TestAnalysisDateHonorsCalendarHolidays(t *testing.T) {
	// Treat Friday 2025-06-13 as a public holiday. The prior session
	// is Thursday the 12th even though the 13th is a weekday.
	cal := &fakeCalendar{closed: map[string]bool{"2025-06-13": true}}

	got := AnalysisDate(cstTime(2025, 6, 14, 12, 0), cal)
	assert.Equal(t, "2025-06-12", got.Format("2006-01-02"))

	// After close on the holiday itself: still the prior session.
	got = AnalysisDate(cstTime(2025, 6, 13, 16, 0), cal)
	assert.Equal(t, "2025-06-12", got.Format("2006-01-02"))
}

func TestInSession(t *testing.T) {
	assert.True(t, InSession(cstTime(2025, 6, 11, 10, 0), nil))
	assert.True(t, InSession(cstTime(2025, 6, 11, 14, 59), nil))
	assert.False(t, InSession(cstTime(2025, 6, 11, 9, 0), nil))
	assert.False(t, InSession(cstTime(2025, 6, 11, 15, 0), nil))
	assert.False(t, InSession(cstTime(2025, 6, 14, 10, 0), nil))
}

func TestPrevTradingDay(t *testing.T) {
	// Monday walks back to Friday.
	got := PrevTradingDay(cstTime(2025, 6, 16, 0, 0), nil)
	assert.Equal(t, "2025-06-13", got.Format("2006-01-02"))
}

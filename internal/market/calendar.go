package market

import (
	"time"
)

// A-share trading session, China Standard Time. The afternoon close
// is what matters for deciding whether today's bar is final.
const (
	sessionOpenHour   = 9
	sessionOpenMinute = 30
	sessionCloseHour  = 15
)

// cst is fixed UTC+8; mainland China has no daylight saving.
var cst = time.FixedZone("CST", 8*60*60)

// Calendar answers whether a given date is a trading day. The cache
// layer's trade_calendar table implements this; a nil Calendar falls
// back to weekend logic only, which is wrong across public holidays
// but lets the very first run bootstrap before any calendar has been
// fetched.
type Calendar interface {
	IsOpen(date time.Time) (open bool, known bool)
}

// AnalysisDate returns the most recent date whose market data is
// complete at the given wall-clock instant:
//
//   - during the session, or before the open: the previous session
//   - after the close on a trading day: that same day
//   - non-trading days: the most recent prior session
func AnalysisDate(now time.Time, cal Calendar) time.Time {
	now = now.In(cst)
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, cst)

	if isTradingDay(day, cal) && afterClose(now) {
		return day
	}
	return prevTradingDay(day, cal)
}

// PrevTradingDay returns the last trading day strictly before date.
func PrevTradingDay(date time.Time, cal Calendar) time.Time {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, cst)
	return prevTradingDay(day, cal)
}

// InSession reports whether the instant falls inside an active
// trading session.
func InSession(now time.Time, cal Calendar) bool {
	now = now.In(cst)
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, cst)
	if !isTradingDay(day, cal) {
		return false
	}
	return afterOpen(now) && !afterClose(now)
}

func afterOpen(now time.Time) bool {
	open := time.Date(now.Year(), now.Month(), now.Day(), sessionOpenHour, sessionOpenMinute, 0, 0, cst)
	return !now.Before(open)
}

func afterClose(now time.Time) bool {
	close := time.Date(now.Year(), now.Month(), now.Day(), sessionCloseHour, 0, 0, 0, cst)
	return !now.Before(close)
}

func prevTradingDay(day time.Time, cal Calendar) time.Time {
	d := day.AddDate(0, 0, -1)
	// 30 days is far beyond the longest holiday break.
	for i := 0; i < 30; i++ {
		if isTradingDay(d, cal) {
			return d
		}
		d = d.AddDate(0, 0, -1)
	}
	return d
}

func isTradingDay(day time.Time, cal Calendar) bool {
	if cal != nil {
		if open, known := cal.IsOpen(day); known {
			return open
		}
	}
	wd := day.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

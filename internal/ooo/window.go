package ooo

import (
	"time"

	"github.com/theakshaypant/oooasis/internal/core"
)

// lookaheadWindow returns the fixed query window shared by the check, disable
// and is-today paths: start of today (UTC) through the last second of the
// last day of next month. The policy is not configurable.
func lookaheadWindow(now time.Time) (time.Time, time.Time) {
	today := core.DateOf(now.UTC())
	firstOfMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastOfNextMonth := firstOfMonth.AddDate(0, 2, 0).AddDate(0, 0, -1)

	timeMin := today
	timeMax := time.Date(lastOfNextMonth.Year(), lastOfNextMonth.Month(), lastOfNextMonth.Day(), 23, 59, 59, 0, time.UTC)
	return timeMin, timeMax
}

// isWeekend reports whether the date falls on a Saturday or Sunday.
func isWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

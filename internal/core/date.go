package core

import (
	"fmt"
	"time"
)

// Calendar dates are carried as time.Time values pinned to midnight UTC.
// Only the year/month/day components are meaningful.

const dateLayout = "2006-01-02"

// NewDate returns the calendar date for the given components.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf strips the time-of-day and location from t, keeping its calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a YYYY-MM-DD string into a calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// DateRange is an inclusive range of calendar dates. Both bounds are part of
// the range; backends that use exclusive end dates get the +1-day conversion
// applied by the reconciler, never here.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Validate reports an error when the range is inverted.
func (r DateRange) Validate() error {
	if r.End.Before(r.Start) {
		return fmt.Errorf("invalid date range: start %s is after end %s", FormatDate(r.Start), FormatDate(r.End))
	}
	return nil
}

// ExclusiveEnd returns the half-open end date (inclusive end + 1 day), the
// convention calendar backends use for all-day events.
func (r DateRange) ExclusiveEnd() time.Time {
	return r.End.AddDate(0, 0, 1)
}

// Contains reports whether the calendar date d falls inside the range.
func (r DateRange) Contains(d time.Time) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

func (r DateRange) String() string {
	return FormatDate(r.Start) + " to " + FormatDate(r.End)
}

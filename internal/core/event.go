package core

import (
	"time"
)

// Calendar identifies a calendar on the backend.
type Calendar struct {
	// Backend identifier (e.g., "primary", "team@group.calendar.google.com")
	ID string
	// Human-readable name (e.g., "Team Availability")
	Name string
	// IANA zone the calendar is configured with, when the backend reports one
	TimeZone string
}

type eventTimeKind int

const (
	timeUnset eventTimeKind = iota
	timeAllDay
	timeZoned
)

// EventTime is the start or end of a backend event. Backends express these
// either as a bare date (all-day events) or as a zoned timestamp; EventTime
// keeps the two shapes apart so the extraction to a calendar date can be
// timezone-correct.
type EventTime struct {
	kind    eventTimeKind
	date    time.Time
	instant time.Time
	zone    string
}

// AllDay builds an EventTime from a bare calendar date.
func AllDay(date time.Time) EventTime {
	return EventTime{kind: timeAllDay, date: DateOf(date)}
}

// Zoned builds an EventTime from an instant and the IANA zone named on the
// event. An empty zone means the instant's own offset is authoritative.
func Zoned(instant time.Time, zone string) EventTime {
	return EventTime{kind: timeZoned, instant: instant, zone: zone}
}

// IsAllDay reports whether this is a bare-date value.
func (t EventTime) IsAllDay() bool { return t.kind == timeAllDay }

// IsZero reports whether the value was never populated.
func (t EventTime) IsZero() bool { return t.kind == timeUnset }

// LocalDate extracts the calendar date. All-day values are returned as-is;
// zoned values are converted into the zone named on the event before the date
// is taken. An unset value or an unknown zone fails with MalformedEventTimeError.
func (t EventTime) LocalDate() (time.Time, error) {
	switch t.kind {
	case timeAllDay:
		return t.date, nil
	case timeZoned:
		if t.zone == "" {
			return DateOf(t.instant), nil
		}
		loc, err := time.LoadLocation(t.zone)
		if err != nil {
			return time.Time{}, &MalformedEventTimeError{Reason: "unknown time zone " + t.zone}
		}
		return DateOf(t.instant.In(loc)), nil
	default:
		return time.Time{}, &MalformedEventTimeError{Reason: "event time has neither a date nor a timestamp"}
	}
}

// OOOEvent is a backend-owned event record. The reconciler never mutates one
// in place; events are created whole and deleted by ID.
type OOOEvent struct {
	ID        string
	Summary   string
	Organizer string
	EventType string
	// Link to the event in the provider's web UI, when available
	URL   string
	Start EventTime
	End   EventTime
}

// EventBody is the payload for creating a new all-day event.
type EventBody struct {
	Summary     string
	Description string
	// Start is the first day; End is the exclusive end date (day after the
	// last covered day), matching the backend convention.
	Start    time.Time
	End      time.Time
	TimeZone string

	Status       string
	Transparency string
	Visibility   string
	EventType    string
}

// EventQuery bounds an event listing. TimeMin/TimeMax are sent to the backend
// as UTC timestamps.
type EventQuery struct {
	TimeMin time.Time
	TimeMax time.Time
	// Free-text match against event content, backend-interpreted
	Text string
	// Zero means the backend default
	MaxResults int64
	// Order results by start time (requires expanding to single events)
	OrderByStart bool
}

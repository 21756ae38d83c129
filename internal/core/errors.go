package core

import (
	"errors"
	"fmt"
)

// ErrCalendarNotFound is returned when neither the direct probe nor the
// fallback name scan can locate a calendar.
var ErrCalendarNotFound = errors.New("calendar not found")

// ConfigMissingError reports a required configuration key that is absent.
type ConfigMissingError struct {
	Key string
}

func (e *ConfigMissingError) Error() string {
	return fmt.Sprintf("missing required config key %q", e.Key)
}

// MalformedEventTimeError reports a backend event time that is neither an
// all-day date nor a zoned timestamp.
type MalformedEventTimeError struct {
	Reason string
}

func (e *MalformedEventTimeError) Error() string {
	return "malformed event time: " + e.Reason
}

// BackendOp names the backend call that failed.
type BackendOp string

const (
	OpGetCalendar   BackendOp = "get calendar"
	OpListCalendars BackendOp = "list calendars"
	OpListEvents    BackendOp = "list events"
	OpInsertEvent   BackendOp = "insert event"
	OpDeleteEvent   BackendOp = "delete event"
)

// BackendError wraps a transport or API failure from the calendar backend.
// The Op distinguishes create failures from delete failures from plain
// read-path unavailability; not-found conditions are NOT BackendErrors.
type BackendError struct {
	Op  BackendOp
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// IsBackendOp reports whether err is a BackendError for the given operation.
func IsBackendOp(err error, op BackendOp) bool {
	var be *BackendError
	return errors.As(err, &be) && be.Op == op
}

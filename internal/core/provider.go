package core

import (
	"context"
)

// Backend is the calendar service the reconciler talks to. All adapters
// (Google, Outlook) must present their calendars and events through this
// surface; authentication happens before a Backend is handed over.
type Backend interface {
	// GetCalendar fetches a calendar by its backend identifier.
	// A missing calendar yields an error matching ErrCalendarNotFound.
	GetCalendar(ctx context.Context, id string) (Calendar, error)
	// ListCalendars returns every calendar visible to the authenticated
	// principal. Ordering is backend-defined.
	ListCalendars(ctx context.Context) ([]Calendar, error)
	// ListEvents returns events in the query window, expanded to single
	// events when the backend distinguishes recurrences.
	ListEvents(ctx context.Context, calendarID string, q EventQuery) ([]OOOEvent, error)
	// InsertEvent creates a new event and returns it with the
	// backend-assigned identifier.
	InsertEvent(ctx context.Context, calendarID string, body EventBody) (OOOEvent, error)
	// DeleteEvent removes an event by identifier.
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}

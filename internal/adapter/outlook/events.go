package outlook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	abstractions "github.com/microsoft/kiota-abstractions-go"
	msgraphcore "github.com/microsoftgraph/msgraph-sdk-go-core"
	"github.com/microsoftgraph/msgraph-sdk-go/models"
	"github.com/microsoftgraph/msgraph-sdk-go/models/odataerrors"
	"github.com/microsoftgraph/msgraph-sdk-go/users"

	"github.com/theakshaypant/oooasis/internal/core"
)

// GetCalendar probes an identifier directly. A 404 maps to
// core.ErrCalendarNotFound so callers can fall back to a name scan.
func (o *OutlookAdapter) GetCalendar(ctx context.Context, id string) (core.Calendar, error) {
	cal, err := o.client.Me().Calendars().ByCalendarId(id).Get(ctx, nil)
	if err != nil {
		if isGraphNotFound(err) {
			return core.Calendar{}, core.ErrCalendarNotFound
		}
		return core.Calendar{}, &core.BackendError{Op: core.OpGetCalendar, Err: err}
	}
	return core.Calendar{
		ID:   derefStr(cal.GetId()),
		Name: derefStr(cal.GetName()),
	}, nil
}

// ListCalendars returns the user's calendars. Graph does not expose a
// per-calendar timezone, so that field stays empty.
func (o *OutlookAdapter) ListCalendars(ctx context.Context) ([]core.Calendar, error) {
	result, err := o.client.Me().Calendars().Get(ctx, nil)
	if err != nil {
		return nil, &core.BackendError{Op: core.OpListCalendars, Err: err}
	}

	var results []core.Calendar
	for _, cal := range result.GetValue() {
		results = append(results, core.Calendar{
			ID:   derefStr(cal.GetId()),
			Name: derefStr(cal.GetName()),
		})
	}
	return results, nil
}

// ListEvents queries the calendar view for the window. Graph's calendarView
// has no free-text parameter, so the query text is matched client-side
// against the subject, mirroring the server-side containment semantics of
// the Google adapter's q filter.
func (o *OutlookAdapter) ListEvents(ctx context.Context, calendarID string, q core.EventQuery) ([]core.OOOEvent, error) {
	startStr := q.TimeMin.UTC().Format(time.RFC3339)
	endStr := q.TimeMax.UTC().Format(time.RFC3339)
	selectFields := []string{
		"id", "subject", "organizer", "start", "end", "isAllDay", "isCancelled", "showAs", "webLink",
	}
	top := int32(100)
	if q.MaxResults > 0 && q.MaxResults < int64(top) {
		top = int32(q.MaxResults)
	}

	headers := abstractions.NewRequestHeaders()
	headers.Add("Prefer", `outlook.timezone="UTC"`)

	params := &users.ItemCalendarsItemCalendarViewRequestBuilderGetQueryParameters{
		StartDateTime: &startStr,
		EndDateTime:   &endStr,
		Select:        selectFields,
		Top:           &top,
	}
	if q.OrderByStart {
		params.Orderby = []string{"start/dateTime"}
	}
	config := &users.ItemCalendarsItemCalendarViewRequestBuilderGetRequestConfiguration{
		QueryParameters: params,
		Headers:         headers,
	}

	result, err := o.client.Me().Calendars().ByCalendarId(calendarID).CalendarView().Get(ctx, config)
	if err != nil {
		return nil, &core.BackendError{Op: core.OpListEvents, Err: fmt.Errorf("calendar %s: %w", calendarID, err)}
	}

	pageIterator, err := msgraphcore.NewPageIterator[models.Eventable](
		result,
		o.client.GetAdapter(),
		models.CreateEventCollectionResponseFromDiscriminatorValue,
	)
	if err != nil {
		return nil, &core.BackendError{Op: core.OpListEvents, Err: fmt.Errorf("create page iterator: %w", err)}
	}

	var results []core.OOOEvent
	err = pageIterator.Iterate(ctx, func(item models.Eventable) bool {
		if derefBool(item.GetIsCancelled()) {
			return true
		}
		ev := parseGraphEvent(item)
		if q.Text != "" && !strings.Contains(ev.Summary, q.Text) {
			return true
		}
		results = append(results, ev)
		if q.MaxResults > 0 && int64(len(results)) >= q.MaxResults {
			return false
		}
		return true
	})
	if err != nil {
		return nil, &core.BackendError{Op: core.OpListEvents, Err: fmt.Errorf("iterate events: %w", err)}
	}

	return results, nil
}

// InsertEvent creates an all-day event. The caller supplies the end date in
// the exclusive convention, which is also what Graph expects for isAllDay
// events.
func (o *OutlookAdapter) InsertEvent(ctx context.Context, calendarID string, body core.EventBody) (core.OOOEvent, error) {
	ev := models.NewEvent()
	ev.SetSubject(&body.Summary)

	if body.Description != "" {
		content := models.NewItemBody()
		contentType := models.TEXT_BODYTYPE
		content.SetContentType(&contentType)
		content.SetContent(&body.Description)
		ev.SetBody(content)
	}

	startStr := body.Start.Format("2006-01-02T15:04:05")
	endStr := body.End.Format("2006-01-02T15:04:05")
	tz := body.TimeZone
	if tz == "" {
		tz = "UTC"
	}

	start := models.NewDateTimeTimeZone()
	start.SetDateTime(&startStr)
	start.SetTimeZone(&tz)
	ev.SetStart(start)

	end := models.NewDateTimeTimeZone()
	end.SetDateTime(&endStr)
	end.SetTimeZone(&tz)
	ev.SetEnd(end)

	isAllDay := true
	ev.SetIsAllDay(&isAllDay)

	// Busy-state equivalent of an opaque event
	showAs := models.OOF_FREEBUSYSTATUS
	ev.SetShowAs(&showAs)

	created, err := o.client.Me().Calendars().ByCalendarId(calendarID).Events().Post(ctx, ev, nil)
	if err != nil {
		return core.OOOEvent{}, &core.BackendError{Op: core.OpInsertEvent, Err: fmt.Errorf("calendar %s: %w", calendarID, err)}
	}
	return parseGraphEvent(created), nil
}

func (o *OutlookAdapter) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	err := o.client.Me().Calendars().ByCalendarId(calendarID).Events().ByEventId(eventID).Delete(ctx, nil)
	if err != nil {
		return &core.BackendError{Op: core.OpDeleteEvent, Err: fmt.Errorf("event %s: %w", eventID, err)}
	}
	return nil
}

func isGraphNotFound(err error) bool {
	var odataErr *odataerrors.ODataError
	if errors.As(err, &odataErr) {
		return odataErr.ResponseStatusCode == http.StatusNotFound
	}
	return false
}

// parseGraphEvent converts a Graph SDK event into the unified OOO event.
func parseGraphEvent(item models.Eventable) core.OOOEvent {
	ev := core.OOOEvent{
		ID:        derefStr(item.GetId()),
		Summary:   derefStr(item.GetSubject()),
		EventType: "default",
		URL:       derefStr(item.GetWebLink()),
	}
	if showAs := item.GetShowAs(); showAs != nil && *showAs == models.OOF_FREEBUSYSTATUS {
		ev.EventType = "outOfOffice"
	}
	if org := item.GetOrganizer(); org != nil {
		if addr := org.GetEmailAddress(); addr != nil {
			ev.Organizer = derefStr(addr.GetAddress())
		}
	}

	allDay := derefBool(item.GetIsAllDay())
	ev.Start = parseGraphTime(item.GetStart(), allDay)
	ev.End = parseGraphTime(item.GetEnd(), allDay)
	return ev
}

// parseGraphTime converts a Graph DateTimeTimeZone to an EventTime. Instants
// arrive in UTC because of the Prefer: outlook.timezone="UTC" header; all-day
// events carry midnight boundaries that reduce to plain dates.
func parseGraphTime(dt models.DateTimeTimeZoneable, allDay bool) core.EventTime {
	if dt == nil {
		return core.EventTime{}
	}
	raw := dt.GetDateTime()
	if raw == nil {
		return core.EventTime{}
	}

	var parsed time.Time
	ok := false
	for _, layout := range []string{
		"2006-01-02T15:04:05.0000000",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.Parse(layout, *raw); err == nil {
			parsed = t.UTC()
			ok = true
			break
		}
	}
	if !ok {
		return core.EventTime{}
	}

	if allDay {
		return core.AllDay(parsed)
	}
	zone := "UTC"
	if tz := dt.GetTimeZone(); tz != nil && *tz != "" {
		zone = *tz
	}
	return core.Zoned(parsed, zone)
}

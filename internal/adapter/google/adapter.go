package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/theakshaypant/oooasis/internal/core"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const dateLayout = "2006-01-02"

// GoogleAdapter implements core.Backend on top of the Google Calendar API.
type GoogleAdapter struct {
	client    *http.Client
	service   *calendar.Service
	config    *oauth2.Config
	credsFile string
	tokenFile string
}

func NewGoogleAdapter(credsFile, tokenFile string) *GoogleAdapter {
	return &GoogleAdapter{
		credsFile: credsFile,
		tokenFile: tokenFile,
	}
}

// Login loads credentials and token, then initializes the Calendar service.
// Run `oooasis auth google` first to generate the token file.
func (g *GoogleAdapter) Login(ctx context.Context) error {
	b, err := os.ReadFile(g.credsFile)
	if err != nil {
		return fmt.Errorf("read credentials file: %w", err)
	}

	// Full calendar scope: enable/disable write to the team calendar.
	config, err := google.ConfigFromJSON(b, calendar.CalendarScope)
	if err != nil {
		return fmt.Errorf("parse credentials: %w", err)
	}
	g.config = config

	tok, err := tokenFromFile(g.tokenFile)
	if err != nil {
		return fmt.Errorf("read token file (run `oooasis auth google` first): %w", err)
	}

	g.client = g.config.Client(ctx, tok)
	g.service, err = calendar.NewService(ctx, option.WithHTTPClient(g.client))
	if err != nil {
		return fmt.Errorf("init calendar service: %w", err)
	}

	return nil
}

// tokenFromFile reads an OAuth token from a JSON file.
func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

// GetCalendar probes an identifier directly. A 404 maps to
// core.ErrCalendarNotFound so callers can fall back to a name scan.
func (g *GoogleAdapter) GetCalendar(ctx context.Context, id string) (core.Calendar, error) {
	cal, err := g.service.Calendars.Get(id).Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return core.Calendar{}, core.ErrCalendarNotFound
		}
		return core.Calendar{}, &core.BackendError{Op: core.OpGetCalendar, Err: err}
	}
	return core.Calendar{
		ID:       cal.Id,
		Name:     cal.Summary,
		TimeZone: cal.TimeZone,
	}, nil
}

// ListCalendars returns the calendars on the user's calendar list, in the
// API's own order.
func (g *GoogleAdapter) ListCalendars(ctx context.Context) ([]core.Calendar, error) {
	var results []core.Calendar
	pageToken := ""

	for {
		req := g.service.CalendarList.List().Context(ctx)
		if pageToken != "" {
			req = req.PageToken(pageToken)
		}

		list, err := req.Do()
		if err != nil {
			return nil, &core.BackendError{Op: core.OpListCalendars, Err: err}
		}

		for _, item := range list.Items {
			results = append(results, core.Calendar{
				ID:       item.Id,
				Name:     item.Summary,
				TimeZone: item.TimeZone,
			})
		}

		pageToken = list.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return results, nil
}

func (g *GoogleAdapter) ListEvents(ctx context.Context, calendarID string, q core.EventQuery) ([]core.OOOEvent, error) {
	var results []core.OOOEvent
	pageToken := ""

	for {
		// The API requires RFC3339 bounds and only allows startTime ordering
		// with singleEvents set.
		req := g.service.Events.List(calendarID).
			ShowDeleted(false).
			SingleEvents(true).
			TimeMin(q.TimeMin.Format(time.RFC3339)).
			TimeMax(q.TimeMax.Format(time.RFC3339)).
			Context(ctx)

		if q.Text != "" {
			req = req.Q(q.Text)
		}
		if q.MaxResults > 0 {
			req = req.MaxResults(q.MaxResults)
		}
		if q.OrderByStart {
			req = req.OrderBy("startTime")
		}
		if pageToken != "" {
			req = req.PageToken(pageToken)
		}

		page, err := req.Do()
		if err != nil {
			return nil, &core.BackendError{Op: core.OpListEvents, Err: fmt.Errorf("calendar %s: %w", calendarID, err)}
		}

		for _, item := range page.Items {
			results = append(results, parseEvent(item))
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
		if q.MaxResults > 0 && int64(len(results)) >= q.MaxResults {
			break
		}
	}

	return results, nil
}

// InsertEvent creates an all-day event. The caller supplies the end date in
// the API's exclusive convention.
func (g *GoogleAdapter) InsertEvent(ctx context.Context, calendarID string, body core.EventBody) (core.OOOEvent, error) {
	ev := &calendar.Event{
		Summary:     body.Summary,
		Description: body.Description,
		Start: &calendar.EventDateTime{
			Date:     body.Start.Format(dateLayout),
			TimeZone: body.TimeZone,
		},
		End: &calendar.EventDateTime{
			Date:     body.End.Format(dateLayout),
			TimeZone: body.TimeZone,
		},
		Status:       body.Status,
		Transparency: body.Transparency,
		Visibility:   body.Visibility,
		EventType:    body.EventType,
	}

	created, err := g.service.Events.Insert(calendarID, ev).Context(ctx).Do()
	if err != nil {
		return core.OOOEvent{}, &core.BackendError{Op: core.OpInsertEvent, Err: fmt.Errorf("calendar %s: %w", calendarID, err)}
	}
	return parseEvent(created), nil
}

func (g *GoogleAdapter) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	err := g.service.Events.Delete(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return &core.BackendError{Op: core.OpDeleteEvent, Err: fmt.Errorf("event %s: %w", eventID, err)}
	}
	return nil
}

func isNotFound(err error) bool {
	if apiErr, ok := err.(*googleapi.Error); ok {
		return apiErr.Code == http.StatusNotFound
	}
	return false
}

// parseEvent converts a Google Calendar event into the unified OOO event.
// All-day events carry YYYY-MM-DD dates; timed events carry RFC3339 instants
// tagged with the event's IANA zone.
func parseEvent(item *calendar.Event) core.OOOEvent {
	ev := core.OOOEvent{
		ID:        item.Id,
		Summary:   item.Summary,
		EventType: item.EventType,
		URL:       item.HtmlLink,
	}
	if item.Organizer != nil {
		ev.Organizer = item.Organizer.Email
	}
	if item.Start != nil {
		ev.Start = parseEventTime(item.Start)
	}
	if item.End != nil {
		ev.End = parseEventTime(item.End)
	}
	return ev
}

func parseEventTime(edt *calendar.EventDateTime) core.EventTime {
	if edt.DateTime != "" {
		instant, err := time.Parse(time.RFC3339, edt.DateTime)
		if err != nil {
			return core.EventTime{}
		}
		return core.Zoned(instant, edt.TimeZone)
	}
	if edt.Date != "" {
		d, err := time.Parse(dateLayout, edt.Date)
		if err != nil {
			return core.EventTime{}
		}
		return core.AllDay(d)
	}
	return core.EventTime{}
}

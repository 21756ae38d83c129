package ooo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/theakshaypant/oooasis/internal/core"
)

const (
	// Fixed description written onto every OOO event
	eventDescription = "Out of Office"
	// Cap for the underlying window fetch; display caps are applied on top
	fetchLimit = 100
	// Calendar APIs only accept "default" for events created by third
	// parties; the native outOfOffice type is reserved for the provider UI.
	createdEventType = "default"
)

// Reconciler drives the enable/disable/status workflows against a calendar
// backend. Operations are short, synchronous transactions: resolve the team
// calendar, query a bounded window, optionally issue one mutation.
type Reconciler struct {
	Backend core.Backend
	Config  core.Config
	Log     *slog.Logger

	// Per-call deadline for backend requests
	Timeout time.Duration
	// Extra attempts for idempotent reads. Mutations are never retried;
	// a retried insert or delete could double its side effect.
	ReadRetries int
	// Clock, swappable in tests
	Now func() time.Time

	dir *Directory
}

func NewReconciler(backend core.Backend, cfg core.Config, log *slog.Logger) *Reconciler {
	if log == nil {
		log = slog.Default()
	}
	return &Reconciler{
		Backend:     backend,
		Config:      cfg,
		Log:         log,
		Timeout:     30 * time.Second,
		ReadRetries: 1,
		Now:         time.Now,
		dir:         NewDirectory(backend, log),
	}
}

// Enable marks the configured person out of office for the inclusive date
// range. A second Enable with the same range is a no-op: if an event whose
// summary exactly equals the fingerprint already sits in the window, nothing
// is created.
func (r *Reconciler) Enable(ctx context.Context, dates core.DateRange) (EnableResult, error) {
	if err := dates.Validate(); err != nil {
		return EnableResult{}, err
	}

	cal, err := r.dir.Resolve(ctx, r.Config.TeamCalendar)
	if err != nil {
		return EnableResult{}, err
	}

	fingerprint := Fingerprint(r.Config.Username(), r.Config.OOOPattern)

	// The backend stores all-day ends as exclusive dates; convert once here
	// and reuse the converted bound for both the duplicate query and the
	// insert so the two can never disagree.
	adjustedEnd := dates.ExclusiveEnd()

	existing, err := r.listEvents(ctx, cal.ID, core.EventQuery{
		TimeMin: dates.Start,
		TimeMax: adjustedEnd,
		Text:    fingerprint,
	})
	if err != nil {
		return EnableResult{}, fmt.Errorf("enable out of office: %w", err)
	}
	for _, ev := range existing {
		if matchesExactly(ev, fingerprint) {
			r.Log.Warn("out of office already enabled, skipping",
				"calendar", cal.Name, "range", dates.String(), "event_id", ev.ID)
			return EnableResult{
				Outcome:     EnableAlreadyExists,
				Fingerprint: fingerprint,
				Calendar:    cal,
				Range:       dates,
				EventID:     ev.ID,
			}, nil
		}
	}

	body := core.EventBody{
		Summary:      fingerprint,
		Description:  eventDescription,
		Start:        dates.Start,
		End:          adjustedEnd,
		TimeZone:     r.Config.TimeZone,
		Status:       "confirmed",
		Transparency: "opaque",
		Visibility:   "default",
		EventType:    createdEventType,
	}

	cctx, cancel := r.callContext(ctx)
	created, err := r.Backend.InsertEvent(cctx, cal.ID, body)
	cancel()
	if err != nil {
		return EnableResult{}, fmt.Errorf("enable out of office: %w", err)
	}

	r.Log.Info("out of office enabled",
		"calendar", cal.Name, "range", dates.String(), "event_id", created.ID)
	return EnableResult{
		Outcome:     EnableCreated,
		Fingerprint: fingerprint,
		Calendar:    cal,
		Range:       dates,
		EventID:     created.ID,
	}, nil
}

// Disable deletes the first upcoming event whose summary exactly equals the
// configured person's fingerprint.
func (r *Reconciler) Disable(ctx context.Context) (DisableResult, error) {
	cal, err := r.dir.Resolve(ctx, r.Config.TeamCalendar)
	if err != nil {
		return DisableResult{}, err
	}

	fingerprint := Fingerprint(r.Config.Username(), r.Config.OOOPattern)

	events, err := r.upcomingEvents(ctx, cal.ID, fingerprint)
	if err != nil {
		return DisableResult{}, fmt.Errorf("disable out of office: %w", err)
	}

	result := DisableResult{
		Outcome:     DisableNotFound,
		Fingerprint: fingerprint,
		Calendar:    cal,
		Scanned:     len(events),
	}
	for _, ev := range events {
		if !matchesExactly(ev, fingerprint) {
			continue
		}
		cctx, cancel := r.callContext(ctx)
		err := r.Backend.DeleteEvent(cctx, cal.ID, ev.ID)
		cancel()
		if err != nil {
			return DisableResult{}, fmt.Errorf("disable out of office: %w", err)
		}
		r.Log.Info("out of office disabled", "calendar", cal.Name, "event_id", ev.ID)
		result.Outcome = DisableDeleted
		result.EventID = ev.ID
		return result, nil
	}

	r.Log.Info("no out of office event to disable", "calendar", cal.Name, "scanned", len(events))
	return result, nil
}

// IsOOOToday answers whether a person is out of office on today's local date.
// An explicit member overrides the configured person. Weekends short-circuit
// before any backend call.
func (r *Reconciler) IsOOOToday(ctx context.Context, member string) (TodayResult, error) {
	person := member
	if person == "" {
		person = r.Config.Username()
	}
	today := core.DateOf(r.Now())

	result := TodayResult{Person: person, Date: today}

	if isWeekend(today) {
		result.OOO = true
		result.Reason = TodayWeekend
		return result, nil
	}

	cal, err := r.dir.Resolve(ctx, r.Config.TeamCalendar)
	if err != nil {
		return TodayResult{}, err
	}

	fingerprint := Fingerprint(person, r.Config.OOOPattern)
	events, err := r.upcomingEvents(ctx, cal.ID, fingerprint)
	if err != nil {
		return TodayResult{}, fmt.Errorf("out of office check: %w", err)
	}

	for i, ev := range events {
		if !containsFingerprint(ev, fingerprint) {
			continue
		}
		start, err := ev.Start.LocalDate()
		if err != nil {
			return TodayResult{}, fmt.Errorf("event %s: %w", ev.ID, err)
		}
		end, err := ev.End.LocalDate()
		if err != nil {
			return TodayResult{}, fmt.Errorf("event %s: %w", ev.ID, err)
		}
		if !today.Before(start) && !today.After(end) {
			result.OOO = true
			result.Reason = TodayEvent
			result.Event = &events[i]
			return result, nil
		}
	}

	return result, nil
}

// Check lists upcoming OOO events in the default window. maxResults caps the
// returned entries (default 10); the underlying fetch is bounded separately.
func (r *Reconciler) Check(ctx context.Context, maxResults int) (CheckResult, error) {
	if maxResults <= 0 {
		maxResults = 10
	}

	cal, err := r.dir.Resolve(ctx, r.Config.TeamCalendar)
	if err != nil {
		return CheckResult{}, err
	}

	fingerprint := Fingerprint(r.Config.Username(), r.Config.OOOPattern)
	events, err := r.upcomingEvents(ctx, cal.ID, fingerprint)
	if err != nil {
		return CheckResult{}, fmt.Errorf("check out of office: %w", err)
	}

	result := CheckResult{Calendar: cal}
	for _, ev := range events {
		if len(result.Entries) >= maxResults {
			break
		}
		start, err := ev.Start.LocalDate()
		if err != nil {
			return CheckResult{}, fmt.Errorf("event %s: %w", ev.ID, err)
		}
		end, err := ev.End.LocalDate()
		if err != nil {
			return CheckResult{}, fmt.Errorf("event %s: %w", ev.ID, err)
		}
		// Multi-day events were stored with an exclusive end date; pull the
		// displayed end back to the last covered day. Single-day events
		// already read correctly.
		if !start.Equal(end) {
			end = end.AddDate(0, 0, -1)
		}
		result.Entries = append(result.Entries, CheckEntry{
			Start:     start,
			End:       end,
			Summary:   ev.Summary,
			EventID:   ev.ID,
			EventType: ev.EventType,
			URL:       ev.URL,
		})
	}
	return result, nil
}

// upcomingEvents fetches the default lookahead window, filtered by the
// fingerprint text.
func (r *Reconciler) upcomingEvents(ctx context.Context, calendarID, fingerprint string) ([]core.OOOEvent, error) {
	timeMin, timeMax := lookaheadWindow(r.Now())
	return r.listEvents(ctx, calendarID, core.EventQuery{
		TimeMin:      timeMin,
		TimeMax:      timeMax,
		Text:         fingerprint,
		MaxResults:   fetchLimit,
		OrderByStart: true,
	})
}

// listEvents runs a read query with the per-call timeout and bounded retry.
func (r *Reconciler) listEvents(ctx context.Context, calendarID string, q core.EventQuery) ([]core.OOOEvent, error) {
	var lastErr error
	for attempt := 0; attempt <= r.ReadRetries; attempt++ {
		cctx, cancel := r.callContext(ctx)
		events, err := r.Backend.ListEvents(cctx, calendarID, q)
		cancel()
		if err == nil {
			return events, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		r.Log.Debug("event query failed, retrying", "calendar", calendarID, "attempt", attempt+1, "error", err)
	}
	return nil, lastErr
}

func (r *Reconciler) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.Timeout)
}

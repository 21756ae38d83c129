package ooo

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theakshaypant/oooasis/internal/core"
)

type fakeBackend struct {
	calendars []core.Calendar
	events    []core.OOOEvent

	getCalErr  error
	listCalErr error
	listErr    error
	insertErr  error
	deleteErr  error

	getCalCalls  int
	listCalCalls int
	listQueries  []core.EventQuery
	inserted     []core.EventBody
	deleted      []string
}

func (f *fakeBackend) GetCalendar(_ context.Context, id string) (core.Calendar, error) {
	f.getCalCalls++
	if f.getCalErr != nil {
		return core.Calendar{}, f.getCalErr
	}
	for _, cal := range f.calendars {
		if cal.ID == id {
			return cal, nil
		}
	}
	return core.Calendar{}, core.ErrCalendarNotFound
}

func (f *fakeBackend) ListCalendars(_ context.Context) ([]core.Calendar, error) {
	f.listCalCalls++
	if f.listCalErr != nil {
		return nil, f.listCalErr
	}
	return f.calendars, nil
}

func (f *fakeBackend) ListEvents(_ context.Context, _ string, q core.EventQuery) ([]core.OOOEvent, error) {
	f.listQueries = append(f.listQueries, q)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.events, nil
}

func (f *fakeBackend) InsertEvent(_ context.Context, _ string, body core.EventBody) (core.OOOEvent, error) {
	if f.insertErr != nil {
		return core.OOOEvent{}, f.insertErr
	}
	f.inserted = append(f.inserted, body)
	return core.OOOEvent{
		ID:      "created-1",
		Summary: body.Summary,
		Start:   core.AllDay(body.Start),
		End:     core.AllDay(body.End),
	}, nil
}

func (f *fakeBackend) DeleteEvent(_ context.Context, _, eventID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, eventID)
	return nil
}

var testConfig = core.Config{
	TeamCalendar:     "Team Availability",
	TimeZone:         "Europe/Berlin",
	PersonalCalendar: "alice@example.com",
	OOOPattern:       " - OOO ",
}

func newTestReconciler(backend *fakeBackend) *Reconciler {
	r := NewReconciler(backend, testConfig, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r.ReadRetries = 0
	// A Monday, so the weekend short-circuit stays out of the way
	r.Now = func() time.Time { return time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC) }
	return r
}

func teamCal() core.Calendar {
	return core.Calendar{ID: "team-cal-id", Name: "Team Availability"}
}

func allDayEvent(id, summary, start, end string) core.OOOEvent {
	s, _ := core.ParseDate(start)
	e, _ := core.ParseDate(end)
	return core.OOOEvent{
		ID:        id,
		Summary:   summary,
		EventType: "default",
		Start:     core.AllDay(s),
		End:       core.AllDay(e),
	}
}

func TestFingerprint(t *testing.T) {
	// Pattern is trimmed, single space separator
	assert.Equal(t, "alice - OOO", Fingerprint("alice", " - OOO "))
	assert.Equal(t, "bob ooo", Fingerprint("bob", "ooo"))
}

func TestEnableCreatesEvent(t *testing.T) {
	backend := &fakeBackend{calendars: []core.Calendar{teamCal()}}
	r := newTestReconciler(backend)

	dates := core.DateRange{Start: core.NewDate(2024, time.January, 10), End: core.NewDate(2024, time.January, 12)}
	res, err := r.Enable(context.Background(), dates)
	require.NoError(t, err)

	assert.Equal(t, EnableCreated, res.Outcome)
	assert.Equal(t, "created-1", res.EventID)
	assert.Equal(t, "alice - OOO", res.Fingerprint)

	require.Len(t, backend.inserted, 1)
	body := backend.inserted[0]
	assert.Equal(t, "alice - OOO", body.Summary)
	assert.Equal(t, "Out of Office", body.Description)
	assert.Equal(t, "2024-01-10", core.FormatDate(body.Start))
	// Inclusive end 2024-01-12 is stored with the exclusive end one day later
	assert.Equal(t, "2024-01-13", core.FormatDate(body.End))
	assert.Equal(t, "Europe/Berlin", body.TimeZone)
	assert.Equal(t, "confirmed", body.Status)
	assert.Equal(t, "opaque", body.Transparency)
	assert.Equal(t, "default", body.EventType)

	// The duplicate query used the same half-open window as the insert
	require.Len(t, backend.listQueries, 1)
	assert.Equal(t, body.Start, backend.listQueries[0].TimeMin)
	assert.Equal(t, body.End, backend.listQueries[0].TimeMax)
	assert.Equal(t, "alice - OOO", backend.listQueries[0].Text)
}

func TestEnableIsIdempotent(t *testing.T) {
	backend := &fakeBackend{calendars: []core.Calendar{teamCal()}}
	r := newTestReconciler(backend)

	dates := core.DateRange{Start: core.NewDate(2024, time.January, 10), End: core.NewDate(2024, time.January, 12)}

	first, err := r.Enable(context.Background(), dates)
	require.NoError(t, err)
	assert.Equal(t, EnableCreated, first.Outcome)

	// The created event is now visible in the window
	backend.events = []core.OOOEvent{allDayEvent("created-1", "alice - OOO", "2024-01-10", "2024-01-13")}

	second, err := r.Enable(context.Background(), dates)
	require.NoError(t, err)
	assert.Equal(t, EnableAlreadyExists, second.Outcome)
	assert.Equal(t, "created-1", second.EventID)

	// Exactly one creation across both calls
	assert.Len(t, backend.inserted, 1)
}

func TestEnableDuplicateRequiresExactSummary(t *testing.T) {
	// A summary that merely contains the fingerprint is not a duplicate
	backend := &fakeBackend{
		calendars: []core.Calendar{teamCal()},
		events:    []core.OOOEvent{allDayEvent("other", "alice - OOO extra-suffix", "2024-01-10", "2024-01-13")},
	}
	r := newTestReconciler(backend)

	dates := core.DateRange{Start: core.NewDate(2024, time.January, 10), End: core.NewDate(2024, time.January, 12)}
	res, err := r.Enable(context.Background(), dates)
	require.NoError(t, err)
	assert.Equal(t, EnableCreated, res.Outcome)
	assert.Len(t, backend.inserted, 1)
}

func TestEnableRejectsInvertedRange(t *testing.T) {
	backend := &fakeBackend{calendars: []core.Calendar{teamCal()}}
	r := newTestReconciler(backend)

	_, err := r.Enable(context.Background(), core.DateRange{
		Start: core.NewDate(2024, time.January, 12),
		End:   core.NewDate(2024, time.January, 10),
	})
	require.Error(t, err)
	assert.Empty(t, backend.listQueries)
	assert.Empty(t, backend.inserted)
}

func TestEnablePropagatesInsertFailure(t *testing.T) {
	backend := &fakeBackend{
		calendars: []core.Calendar{teamCal()},
		insertErr: &core.BackendError{Op: core.OpInsertEvent, Err: errors.New("quota exceeded")},
	}
	r := newTestReconciler(backend)

	_, err := r.Enable(context.Background(), core.DateRange{
		Start: core.NewDate(2024, time.January, 10),
		End:   core.NewDate(2024, time.January, 10),
	})
	require.Error(t, err)
	assert.True(t, core.IsBackendOp(err, core.OpInsertEvent))
}

func TestDisableDeletesExactMatch(t *testing.T) {
	backend := &fakeBackend{
		calendars: []core.Calendar{teamCal()},
		events: []core.OOOEvent{
			allDayEvent("e1", "alice - OOO planning", "2024-01-16", "2024-01-17"),
			allDayEvent("e2", "alice - OOO", "2024-01-20", "2024-01-23"),
			allDayEvent("e3", "alice - OOO", "2024-02-05", "2024-02-06"),
		},
	}
	r := newTestReconciler(backend)

	res, err := r.Disable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DisableDeleted, res.Outcome)
	// First exact match wins; e1 only contains the fingerprint
	assert.Equal(t, "e2", res.EventID)
	assert.Equal(t, []string{"e2"}, backend.deleted)
}

func TestDisableNothingToDelete(t *testing.T) {
	t.Run("empty window", func(t *testing.T) {
		backend := &fakeBackend{calendars: []core.Calendar{teamCal()}}
		r := newTestReconciler(backend)

		res, err := r.Disable(context.Background())
		require.NoError(t, err)
		assert.Equal(t, DisableNotFound, res.Outcome)
		assert.Zero(t, res.Scanned)
		assert.Empty(t, backend.deleted)
	})

	t.Run("events exist but none match exactly", func(t *testing.T) {
		backend := &fakeBackend{
			calendars: []core.Calendar{teamCal()},
			events:    []core.OOOEvent{allDayEvent("e1", "alice - OOO maybe", "2024-01-16", "2024-01-17")},
		}
		r := newTestReconciler(backend)

		res, err := r.Disable(context.Background())
		require.NoError(t, err)
		assert.Equal(t, DisableNotFound, res.Outcome)
		assert.Equal(t, 1, res.Scanned)
		assert.Empty(t, backend.deleted)
	})
}

func TestIsOOOTodayWeekendShortCircuits(t *testing.T) {
	backend := &fakeBackend{calendars: []core.Calendar{teamCal()}}
	r := newTestReconciler(backend)
	// A Saturday
	r.Now = func() time.Time { return time.Date(2024, time.January, 13, 9, 0, 0, 0, time.UTC) }

	res, err := r.IsOOOToday(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, res.OOO)
	assert.Equal(t, TodayWeekend, res.Reason)
	assert.Equal(t, "alice", res.Person)

	// No backend traffic at all
	assert.Zero(t, backend.getCalCalls)
	assert.Empty(t, backend.listQueries)
}

func TestIsOOOTodayMatchesByContainment(t *testing.T) {
	backend := &fakeBackend{
		calendars: []core.Calendar{teamCal()},
		events: []core.OOOEvent{
			allDayEvent("e1", "alice - OOO (dentist)", "2024-01-15", "2024-01-16"),
		},
	}
	r := newTestReconciler(backend)

	res, err := r.IsOOOToday(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, res.OOO)
	assert.Equal(t, TodayEvent, res.Reason)
	require.NotNil(t, res.Event)
	assert.Equal(t, "e1", res.Event.ID)
}

func TestIsOOOTodayOutsideEventDates(t *testing.T) {
	backend := &fakeBackend{
		calendars: []core.Calendar{teamCal()},
		events: []core.OOOEvent{
			allDayEvent("e1", "alice - OOO", "2024-01-20", "2024-01-23"),
		},
	}
	r := newTestReconciler(backend)

	res, err := r.IsOOOToday(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, res.OOO)
	assert.Equal(t, TodayNotOOO, res.Reason)
}

func TestIsOOOTodayTeamMemberOverride(t *testing.T) {
	backend := &fakeBackend{
		calendars: []core.Calendar{teamCal()},
		events: []core.OOOEvent{
			allDayEvent("e1", "bob - OOO", "2024-01-15", "2024-01-16"),
		},
	}
	r := newTestReconciler(backend)

	res, err := r.IsOOOToday(context.Background(), "bob")
	require.NoError(t, err)
	assert.True(t, res.OOO)
	assert.Equal(t, "bob", res.Person)

	// The window query was filtered with bob's fingerprint
	require.NotEmpty(t, backend.listQueries)
	assert.Equal(t, "bob - OOO", backend.listQueries[0].Text)
}

func TestIsOOOTodayZonedEvent(t *testing.T) {
	// 2024-01-15T02:00:00Z is still 2024-01-14 in New York, so the event
	// does not cover today
	backend := &fakeBackend{
		calendars: []core.Calendar{teamCal()},
		events: []core.OOOEvent{
			{
				ID:      "e1",
				Summary: "alice - OOO",
				Start:   core.Zoned(time.Date(2024, time.January, 13, 2, 0, 0, 0, time.UTC), "America/New_York"),
				End:     core.Zoned(time.Date(2024, time.January, 15, 2, 0, 0, 0, time.UTC), "America/New_York"),
			},
		},
	}
	r := newTestReconciler(backend)

	res, err := r.IsOOOToday(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, res.OOO)
}

func TestCheckRecoversInclusiveEndDate(t *testing.T) {
	backend := &fakeBackend{
		calendars: []core.Calendar{teamCal()},
		events: []core.OOOEvent{
			allDayEvent("e1", "alice - OOO", "2024-01-10", "2024-01-13"),
			allDayEvent("e2", "alice - OOO", "2024-01-20", "2024-01-20"),
		},
	}
	r := newTestReconciler(backend)

	res, err := r.Check(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)

	// Multi-day: stored exclusive end 2024-01-13 displays as 2024-01-12
	assert.Equal(t, "2024-01-10", core.FormatDate(res.Entries[0].Start))
	assert.Equal(t, "2024-01-12", core.FormatDate(res.Entries[0].End))

	// start == end: no adjustment
	assert.Equal(t, "2024-01-20", core.FormatDate(res.Entries[1].Start))
	assert.Equal(t, "2024-01-20", core.FormatDate(res.Entries[1].End))
}

func TestCheckCapsDisplayedResults(t *testing.T) {
	backend := &fakeBackend{calendars: []core.Calendar{teamCal()}}
	for i := 0; i < 15; i++ {
		day := core.NewDate(2024, time.January, 16).AddDate(0, 0, i)
		backend.events = append(backend.events,
			allDayEvent("e", "alice - OOO", core.FormatDate(day), core.FormatDate(day.AddDate(0, 0, 1))))
	}
	r := newTestReconciler(backend)

	res, err := r.Check(context.Background(), 0) // default cap
	require.NoError(t, err)
	assert.Len(t, res.Entries, 10)

	require.NotEmpty(t, backend.listQueries)
	assert.EqualValues(t, 100, backend.listQueries[0].MaxResults)
}

func TestCheckEmptyWindow(t *testing.T) {
	backend := &fakeBackend{calendars: []core.Calendar{teamCal()}}
	r := newTestReconciler(backend)

	res, err := r.Check(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, res.Entries)
}

func TestListEventsRetriesReads(t *testing.T) {
	backend := &fakeBackend{
		calendars: []core.Calendar{teamCal()},
		listErr:   &core.BackendError{Op: core.OpListEvents, Err: errors.New("503")},
	}
	r := newTestReconciler(backend)
	r.ReadRetries = 2

	_, err := r.Check(context.Background(), 10)
	require.Error(t, err)
	// Initial attempt plus two retries
	assert.Len(t, backend.listQueries, 3)
}

func TestLookaheadWindow(t *testing.T) {
	tests := []struct {
		name    string
		now     time.Time
		wantMin string
		wantMax string
	}{
		{
			name:    "mid-January spans through leap February",
			now:     time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC),
			wantMin: "2024-01-15T00:00:00Z",
			wantMax: "2024-02-29T23:59:59Z",
		},
		{
			name:    "December rolls into next year",
			now:     time.Date(2024, time.December, 5, 0, 0, 0, 0, time.UTC),
			wantMin: "2024-12-05T00:00:00Z",
			wantMax: "2025-01-31T23:59:59Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			min, max := lookaheadWindow(tt.now)
			assert.Equal(t, tt.wantMin, min.Format(time.RFC3339))
			assert.Equal(t, tt.wantMax, max.Format(time.RFC3339))
		})
	}
}

package google

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"google.golang.org/api/calendar/v3"

	"github.com/theakshaypant/oooasis/internal/core"
)

func TestParseEventAllDay(t *testing.T) {
	item := &calendar.Event{
		Id:        "ev-1",
		Summary:   "alice - OOO",
		EventType: "default",
		Organizer: &calendar.EventOrganizer{Email: "alice@example.com"},
		Start:     &calendar.EventDateTime{Date: "2024-01-10"},
		End:       &calendar.EventDateTime{Date: "2024-01-13"},
	}

	ev := parseEvent(item)
	assert.Equal(t, "ev-1", ev.ID)
	assert.Equal(t, "alice - OOO", ev.Summary)
	assert.Equal(t, "alice@example.com", ev.Organizer)
	assert.True(t, ev.Start.IsAllDay())

	start, err := ev.Start.LocalDate()
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", core.FormatDate(start))

	end, err := ev.End.LocalDate()
	require.NoError(t, err)
	assert.Equal(t, "2024-01-13", core.FormatDate(end))
}

func TestParseEventZoned(t *testing.T) {
	item := &calendar.Event{
		Id:      "ev-2",
		Summary: "alice - OOO",
		Start: &calendar.EventDateTime{
			DateTime: "2024-03-01T23:00:00Z",
			TimeZone: "America/New_York",
		},
		End: &calendar.EventDateTime{
			DateTime: "2024-03-02T23:00:00Z",
			TimeZone: "America/New_York",
		},
	}

	ev := parseEvent(item)
	assert.False(t, ev.Start.IsAllDay())

	// 23:00Z is 18:00 the same day in New York
	start, err := ev.Start.LocalDate()
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", core.FormatDate(start))
}

func TestParseEventTimeMissing(t *testing.T) {
	ev := parseEvent(&calendar.Event{Id: "ev-3"})
	assert.True(t, ev.Start.IsZero())
	assert.True(t, ev.End.IsZero())

	_, err := ev.Start.LocalDate()
	require.Error(t, err)
	var malformed *core.MalformedEventTimeError
	assert.ErrorAs(t, err, &malformed)
}

func TestParseEventTimeGarbage(t *testing.T) {
	et := parseEventTime(&calendar.EventDateTime{DateTime: "not-a-time"})
	assert.True(t, et.IsZero())
}

func TestParseEventTimeInstant(t *testing.T) {
	et := parseEventTime(&calendar.EventDateTime{DateTime: "2024-03-01T23:00:00Z", TimeZone: "Asia/Tokyo"})
	d, err := et.LocalDate()
	require.NoError(t, err)
	// Tokyo is already past midnight
	assert.Equal(t, time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC), d)
}

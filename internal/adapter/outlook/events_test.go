package outlook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microsoftgraph/msgraph-sdk-go/models"

	"github.com/theakshaypant/oooasis/internal/core"
)

func graphTime(s string) models.DateTimeTimeZoneable {
	dt := models.NewDateTimeTimeZone()
	tz := "UTC"
	dt.SetDateTime(&s)
	dt.SetTimeZone(&tz)
	return dt
}

func TestParseGraphEventAllDay(t *testing.T) {
	id := "ev-1"
	subject := "alice - OOO"
	allDay := true
	showAs := models.OOF_FREEBUSYSTATUS

	item := models.NewEvent()
	item.SetId(&id)
	item.SetSubject(&subject)
	item.SetIsAllDay(&allDay)
	item.SetShowAs(&showAs)
	item.SetStart(graphTime("2024-01-10T00:00:00.0000000"))
	item.SetEnd(graphTime("2024-01-13T00:00:00.0000000"))

	ev := parseGraphEvent(item)
	assert.Equal(t, "ev-1", ev.ID)
	assert.Equal(t, "alice - OOO", ev.Summary)
	assert.Equal(t, "outOfOffice", ev.EventType)
	assert.True(t, ev.Start.IsAllDay())

	start, err := ev.Start.LocalDate()
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", core.FormatDate(start))

	end, err := ev.End.LocalDate()
	require.NoError(t, err)
	assert.Equal(t, "2024-01-13", core.FormatDate(end))
}

func TestParseGraphEventTimed(t *testing.T) {
	id := "ev-2"
	subject := "alice - OOO sync"

	item := models.NewEvent()
	item.SetId(&id)
	item.SetSubject(&subject)
	item.SetStart(graphTime("2024-03-01T23:00:00.0000000"))
	item.SetEnd(graphTime("2024-03-02T00:30:00.0000000"))

	ev := parseGraphEvent(item)
	assert.Equal(t, "default", ev.EventType)
	assert.False(t, ev.Start.IsAllDay())

	start, err := ev.Start.LocalDate()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), start)
}

func TestParseGraphTimeMissing(t *testing.T) {
	assert.True(t, parseGraphTime(nil, false).IsZero())

	dt := models.NewDateTimeTimeZone()
	assert.True(t, parseGraphTime(dt, false).IsZero())

	bad := "noon-ish"
	dt.SetDateTime(&bad)
	assert.True(t, parseGraphTime(dt, false).IsZero())
}

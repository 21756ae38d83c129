package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTimeLocalDate(t *testing.T) {
	tests := []struct {
		name string
		et   EventTime
		want string
	}{
		{
			name: "all-day date is returned untouched",
			et:   AllDay(NewDate(2024, time.March, 2)),
			want: "2024-03-02",
		},
		{
			name: "zoned timestamp converts into the event's own zone",
			// 23:00 UTC is still 18:00 on the same day in UTC-5
			et:   Zoned(time.Date(2024, time.March, 1, 23, 0, 0, 0, time.UTC), "America/New_York"),
			want: "2024-03-01",
		},
		{
			name: "zoned timestamp can roll forward a day",
			// 23:00 UTC is already 08:00 next day in Tokyo
			et:   Zoned(time.Date(2024, time.March, 1, 23, 0, 0, 0, time.UTC), "Asia/Tokyo"),
			want: "2024-03-02",
		},
		{
			name: "zoned timestamp without a zone keeps its own offset",
			et:   Zoned(time.Date(2024, time.March, 1, 23, 30, 0, 0, time.FixedZone("", -5*3600)), ""),
			want: "2024-03-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.et.LocalDate()
			require.NoError(t, err)
			assert.Equal(t, tt.want, FormatDate(got))
		})
	}
}

func TestEventTimeLocalDateMalformed(t *testing.T) {
	var malformed *MalformedEventTimeError

	_, err := EventTime{}.LocalDate()
	require.ErrorAs(t, err, &malformed)

	_, err = Zoned(time.Now(), "Not/A_Zone").LocalDate()
	require.ErrorAs(t, err, &malformed)
}

func TestDateRange(t *testing.T) {
	r := DateRange{Start: NewDate(2024, time.January, 10), End: NewDate(2024, time.January, 12)}

	require.NoError(t, r.Validate())
	assert.Equal(t, "2024-01-13", FormatDate(r.ExclusiveEnd()))
	assert.Equal(t, "2024-01-10 to 2024-01-12", r.String())

	assert.True(t, r.Contains(NewDate(2024, time.January, 10)))
	assert.True(t, r.Contains(NewDate(2024, time.January, 12)))
	assert.False(t, r.Contains(NewDate(2024, time.January, 13)))

	inverted := DateRange{Start: r.End, End: r.Start}
	assert.Error(t, inverted.Validate())

	single := DateRange{Start: r.Start, End: r.Start}
	require.NoError(t, single.Validate())
	assert.Equal(t, "2024-01-11", FormatDate(single.ExclusiveEnd()))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-10")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, time.January, 10), d)

	_, err = ParseDate("01/10/2024")
	assert.Error(t, err)
}

func TestConfigUsername(t *testing.T) {
	cfg := Config{PersonalCalendar: "alice@example.com"}
	assert.Equal(t, "alice", cfg.Username())

	// No @ means the whole string is the username
	cfg.PersonalCalendar = "alice"
	assert.Equal(t, "alice", cfg.Username())
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{
		TeamCalendar:     "Team Availability",
		TimeZone:         "Europe/Berlin",
		PersonalCalendar: "alice@example.com",
		OOOPattern:       "- OOO",
	}
	require.NoError(t, cfg.Validate())

	missing := cfg
	missing.OOOPattern = ""
	var cm *ConfigMissingError
	err := missing.Validate()
	require.ErrorAs(t, err, &cm)
	assert.Equal(t, "ooo_pattern", cm.Key)
}

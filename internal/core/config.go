package core

import (
	"strings"
)

// Config is everything the reconciler needs to know about the run. It is
// built once by the CLI layer and passed in whole; nothing below the command
// surface reads configuration on its own.
type Config struct {
	// Display name or backend identifier of the shared team calendar
	TeamCalendar string
	// IANA zone written onto newly created events
	TimeZone string
	// Email-like string; the local part is the default person's username
	PersonalCalendar string
	// Trailing fingerprint text appended to the username
	OOOPattern string
}

// Username derives the default person's username from the personal calendar
// address (the part before "@").
func (c Config) Username() string {
	if i := strings.IndexByte(c.PersonalCalendar, '@'); i >= 0 {
		return c.PersonalCalendar[:i]
	}
	return c.PersonalCalendar
}

// Validate checks that every key the reconciler depends on is present.
func (c Config) Validate() error {
	if c.TeamCalendar == "" {
		return &ConfigMissingError{Key: "default_team_calendar"}
	}
	if c.TimeZone == "" {
		return &ConfigMissingError{Key: "timezone"}
	}
	if c.PersonalCalendar == "" {
		return &ConfigMissingError{Key: "default_personal_calendar"}
	}
	if c.OOOPattern == "" {
		return &ConfigMissingError{Key: "ooo_pattern"}
	}
	return nil
}

package ooo

import (
	"time"

	"github.com/theakshaypant/oooasis/internal/core"
)

// Operations return structured results; rendering them (text, JSON, TUI) is
// the caller's concern.

// EnableOutcome says what Enable did.
type EnableOutcome int

const (
	// A new event was created
	EnableCreated EnableOutcome = iota
	// An event with the exact fingerprint already covered the range; no mutation
	EnableAlreadyExists
)

type EnableResult struct {
	Outcome     EnableOutcome
	Fingerprint string
	Calendar    core.Calendar
	Range       core.DateRange
	// Backend identifier of the created event, or of the existing event
	// when Outcome is EnableAlreadyExists
	EventID string
}

// DisableOutcome says what Disable did.
type DisableOutcome int

const (
	DisableDeleted DisableOutcome = iota
	// No event with the exact fingerprint was found in the window
	DisableNotFound
)

type DisableResult struct {
	Outcome     DisableOutcome
	Fingerprint string
	Calendar    core.Calendar
	// Identifier of the deleted event, set when Outcome is DisableDeleted
	EventID string
	// How many events the window fetch returned; zero distinguishes an empty
	// window from "events existed but none matched"
	Scanned int
}

// TodayReason says why (or why not) a person counts as out of office today.
type TodayReason int

const (
	TodayNotOOO TodayReason = iota
	// Saturday or Sunday; decided without consulting the backend
	TodayWeekend
	// A fingerprint-containing event brackets today
	TodayEvent
)

type TodayResult struct {
	Person string
	Date   time.Time
	OOO    bool
	Reason TodayReason
	// The matching event, set when Reason is TodayEvent
	Event *core.OOOEvent
}

// CheckEntry is one upcoming OOO event, with the display end date already
// converted back from the backend's exclusive convention.
type CheckEntry struct {
	Start     time.Time
	End       time.Time
	Summary   string
	EventID   string
	EventType string
	URL       string
}

type CheckResult struct {
	Calendar core.Calendar
	Entries  []CheckEntry
}

package ooo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/theakshaypant/oooasis/internal/core"
)

// Directory resolves a human-readable calendar name to its backend identifier.
// Resolution is two-stage: first the name is tried directly as an identifier,
// then the caller's calendar list is scanned for a matching display name.
// Resolved names are cached for the run; a calendar's identifier is stable
// for that long.
type Directory struct {
	Backend core.Backend
	Log     *slog.Logger

	cache map[string]core.Calendar
}

func NewDirectory(backend core.Backend, log *slog.Logger) *Directory {
	if log == nil {
		log = slog.Default()
	}
	return &Directory{
		Backend: backend,
		Log:     log,
		cache:   make(map[string]core.Calendar),
	}
}

// Resolve returns the calendar whose identifier or display name equals name.
// When several calendars share the display name, the first one in the
// backend's listing order wins; that order is backend-defined, so ties are
// effectively non-deterministic.
func (d *Directory) Resolve(ctx context.Context, name string) (core.Calendar, error) {
	if cal, ok := d.cache[name]; ok {
		return cal, nil
	}

	// Stage one: the name may already be a valid identifier.
	cal, err := d.Backend.GetCalendar(ctx, name)
	if err == nil {
		d.cache[name] = cal
		return cal, nil
	}
	d.Log.Debug("direct calendar probe failed, scanning calendar list", "name", name, "error", err)

	// Stage two: linear scan of the visible calendars by display name.
	cals, err := d.Backend.ListCalendars(ctx)
	if err != nil {
		// A failed listing is not the same as "no such calendar"; surface
		// the transport failure instead of folding it into not-found.
		return core.Calendar{}, fmt.Errorf("resolve calendar %q: %w", name, err)
	}
	for _, cal := range cals {
		if cal.Name == name {
			d.cache[name] = cal
			return cal, nil
		}
	}

	return core.Calendar{}, fmt.Errorf("resolve calendar %q: %w", name, core.ErrCalendarNotFound)
}

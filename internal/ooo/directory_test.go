package ooo

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theakshaypant/oooasis/internal/core"
)

func newTestDirectory(backend *fakeBackend) *Directory {
	return NewDirectory(backend, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestResolveByIdentifierAndByName(t *testing.T) {
	backend := &fakeBackend{calendars: []core.Calendar{
		{ID: "team-cal-id", Name: "Team Availability"},
	}}
	dir := newTestDirectory(backend)

	byID, err := dir.Resolve(context.Background(), "team-cal-id")
	require.NoError(t, err)

	byName, err := dir.Resolve(context.Background(), "Team Availability")
	require.NoError(t, err)

	// Both spellings land on the same calendar
	assert.Equal(t, byID.ID, byName.ID)
}

func TestResolveCachesPerRun(t *testing.T) {
	backend := &fakeBackend{calendars: []core.Calendar{
		{ID: "team-cal-id", Name: "Team Availability"},
	}}
	dir := newTestDirectory(backend)

	_, err := dir.Resolve(context.Background(), "Team Availability")
	require.NoError(t, err)
	_, err = dir.Resolve(context.Background(), "Team Availability")
	require.NoError(t, err)

	assert.Equal(t, 1, backend.getCalCalls)
	assert.Equal(t, 1, backend.listCalCalls)
}

func TestResolveNotFound(t *testing.T) {
	backend := &fakeBackend{calendars: []core.Calendar{
		{ID: "other-id", Name: "Other"},
	}}
	dir := newTestDirectory(backend)

	_, err := dir.Resolve(context.Background(), "Team Availability")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrCalendarNotFound)
}

func TestResolveListingFailureIsNotNotFound(t *testing.T) {
	backend := &fakeBackend{
		getCalErr:  core.ErrCalendarNotFound,
		listCalErr: &core.BackendError{Op: core.OpListCalendars, Err: errors.New("network down")},
	}
	dir := newTestDirectory(backend)

	_, err := dir.Resolve(context.Background(), "Team Availability")
	require.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrCalendarNotFound)
	assert.True(t, core.IsBackendOp(err, core.OpListCalendars))
}

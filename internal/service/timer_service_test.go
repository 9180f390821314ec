package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timecore/internal/domain"
	"timecore/internal/testutil"
)

var timerBase = time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)

func TestTimerService_ToggleStartsThenStops(t *testing.T) {
	env := newTestEnv(t, timerBase)
	ctx := context.Background()

	started, err := env.timer.Toggle(ctx, env.scope, ToggleRequest{})
	require.NoError(t, err)
	assert.True(t, started.IsRunning())
	assert.Equal(t, timerBase, started.StartedAt)
	assert.Equal(t, domain.LogTracked, started.LogType)
	assert.Equal(t, domain.SourceWebTimer, started.Source)
	assert.NotEmpty(t, started.TimesheetID, "starting attaches the week's timesheet")

	employee, err := env.empRepo.GetByID(ctx, env.employee.ID)
	require.NoError(t, err)
	assert.True(t, employee.IsTrackingTime)

	env.clock.Advance(125 * time.Second)

	stopped, err := env.timer.Toggle(ctx, env.scope, ToggleRequest{})
	require.NoError(t, err)
	assert.Equal(t, started.ID, stopped.ID)
	require.NotNil(t, stopped.StoppedAt)
	assert.Equal(t, timerBase.Add(125*time.Second), *stopped.StoppedAt)
	assert.Equal(t, 125, stopped.Duration)

	employee, err = env.empRepo.GetByID(ctx, env.employee.ID)
	require.NoError(t, err)
	assert.False(t, employee.IsTrackingTime)
}

func TestTimerService_Toggle_SecondStartIsAStop(t *testing.T) {
	env := newTestEnv(t, timerBase)
	ctx := context.Background()

	_, err := env.timer.Toggle(ctx, env.scope, ToggleRequest{})
	require.NoError(t, err)
	env.clock.Advance(time.Minute)

	// Toggling again while running stops; it never opens a second session.
	log, err := env.timer.Toggle(ctx, env.scope, ToggleRequest{})
	require.NoError(t, err)
	assert.False(t, log.IsRunning())

	running, err := env.logRepo.ListRunning(ctx, env.employee.ID)
	require.NoError(t, err)
	assert.Empty(t, running)
}

func TestTimerService_Toggle_TrackingDisabled(t *testing.T) {
	env := newTestEnv(t, timerBase)
	ctx := context.Background()

	require.NoError(t, env.empRepo.SetTrackingEnabled(ctx, env.employee.ID, false))

	_, err := env.timer.Toggle(ctx, env.scope, ToggleRequest{})
	assert.ErrorIs(t, err, ErrTrackingDisabled)
}

func TestTimerService_Toggle_RejectsUnknownLogType(t *testing.T) {
	env := newTestEnv(t, timerBase)

	_, err := env.timer.Toggle(context.Background(), env.scope, ToggleRequest{LogType: "BREAK"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTimerService_Toggle_ConflictingLogBlocksStart(t *testing.T) {
	env := newTestEnv(t, timerBase)
	ctx := context.Background()

	manual := testutil.NewTestLog(env.employee.ID, timerBase.Add(-time.Hour), timerBase.Add(time.Hour),
		testutil.WithLogType(domain.LogManual))
	require.NoError(t, env.logRepo.Create(ctx, manual))

	_, err := env.timer.Toggle(ctx, env.scope, ToggleRequest{})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestTimerService_Toggle_RestartsAtStopInstant(t *testing.T) {
	env := newTestEnv(t, timerBase)
	ctx := context.Background()

	_, err := env.timer.Toggle(ctx, env.scope, ToggleRequest{})
	require.NoError(t, err)
	env.clock.Advance(90 * time.Second)

	stopped, err := env.timer.Toggle(ctx, env.scope, ToggleRequest{})
	require.NoError(t, err)
	require.NotNil(t, stopped.StoppedAt)

	// Starting again in the same second the previous session closed is
	// back-to-back tracking, not an overlap.
	restarted, err := env.timer.Toggle(ctx, env.scope, ToggleRequest{})
	require.NoError(t, err)
	assert.True(t, restarted.IsRunning())
	assert.Equal(t, *stopped.StoppedAt, restarted.StartedAt)
}

func TestTimerService_Toggle_ZeroDurationDiscarded(t *testing.T) {
	env := newTestEnv(t, timerBase)
	ctx := context.Background()

	started, err := env.timer.Toggle(ctx, env.scope, ToggleRequest{})
	require.NoError(t, err)

	// Stop without advancing the clock: the session lasted zero seconds and
	// is removed instead of stored.
	stopped, err := env.timer.Toggle(ctx, env.scope, ToggleRequest{})
	require.NoError(t, err)
	assert.Equal(t, started.ID, stopped.ID)
	assert.Zero(t, stopped.Duration)

	_, err = env.logRepo.GetByID(ctx, started.ID)
	assert.Error(t, err, "zero-duration logs are discarded outright")
}

func TestTimerService_Status(t *testing.T) {
	env := newTestEnv(t, timerBase)
	ctx := context.Background()

	status, err := env.timer.Status(ctx, env.scope)
	require.NoError(t, err)
	assert.False(t, status.Running)
	assert.Zero(t, status.Duration)
	assert.Nil(t, status.LastLog)

	closed := testutil.NewTestLog(env.employee.ID, timerBase.Add(-2*time.Hour), timerBase.Add(-time.Hour))
	require.NoError(t, env.logRepo.Create(ctx, closed))

	_, err = env.timer.Toggle(ctx, env.scope, ToggleRequest{})
	require.NoError(t, err)
	env.clock.Advance(100 * time.Second)

	status, err = env.timer.Status(ctx, env.scope)
	require.NoError(t, err)
	assert.True(t, status.Running)
	assert.Equal(t, 3700, status.Duration, "today's closed hour plus the running 100 seconds")
	require.NotNil(t, status.LastLog)
	assert.True(t, status.LastLog.IsRunning())
}

func TestTimerService_Status_YesterdayExcluded(t *testing.T) {
	env := newTestEnv(t, timerBase)
	ctx := context.Background()

	yesterday := testutil.NewTestLog(env.employee.ID, timerBase.AddDate(0, 0, -1), timerBase.AddDate(0, 0, -1).Add(time.Hour))
	require.NoError(t, env.logRepo.Create(ctx, yesterday))

	status, err := env.timer.Status(ctx, env.scope)
	require.NoError(t, err)
	assert.Zero(t, status.Duration)
}

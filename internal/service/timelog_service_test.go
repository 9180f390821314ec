package service

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timecore/internal/repository"
	"timecore/internal/testutil"
)

var logBase = time.Date(2024, 3, 19, 10, 0, 0, 0, time.UTC)

func TestTimeLogService_FindConflicts_InvertedRange(t *testing.T) {
	env := newTestEnv(t, logBase)

	_, err := env.logs.FindConflicts(context.Background(), env.scope, logBase, logBase.Add(-time.Second), nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTimeLogService_FindConflicts_EmptyResultIsNotAnError(t *testing.T) {
	env := newTestEnv(t, logBase)

	got, err := env.logs.FindConflicts(context.Background(), env.scope, logBase, logBase.Add(time.Hour), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

// TestTimeLogService_FindConflicts_OverlapProperty property-tests the overlap
// predicate: every stored log touching the queried window inclusively is
// reported, and nothing else.
func TestTimeLogService_FindConflicts_OverlapProperty(t *testing.T) {
	env := newTestEnv(t, logBase)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))

	const daySeconds = 8 * 3600
	type span struct {
		id          string
		start, stop time.Time
	}
	spans := make([]span, 0, 20)
	for i := 0; i < 20; i++ {
		start := logBase.Add(time.Duration(rng.Intn(daySeconds)) * time.Second)
		stop := start.Add(time.Duration(rng.Intn(3600)+1) * time.Second)
		log := testutil.NewTestLog(env.employee.ID, start, stop)
		require.NoError(t, env.logRepo.Create(ctx, log))
		spans = append(spans, span{id: log.ID, start: start, stop: stop})
	}

	for trial := 0; trial < 200; trial++ {
		aOff := rng.Intn(daySeconds + 3600)
		bOff := rng.Intn(daySeconds + 3600)
		if bOff < aOff {
			aOff, bOff = bOff, aOff
		}
		qStart := logBase.Add(time.Duration(aOff) * time.Second)
		qEnd := logBase.Add(time.Duration(bOff) * time.Second)

		var want []string
		for _, s := range spans {
			if !s.start.After(qEnd) && !s.stop.Before(qStart) {
				want = append(want, s.id)
			}
		}

		got, err := env.logs.FindConflicts(ctx, env.scope, qStart, qEnd, nil)
		require.NoError(t, err, "trial %d", trial)
		gotIDs := make([]string, len(got))
		for i, l := range got {
			gotIDs[i] = l.ID
		}
		assert.ElementsMatch(t, want, gotIDs,
			"trial %d: window [%s, %s]", trial, qStart, qEnd)
	}
}

func TestTimeLogService_DeleteTimeSpan_RequiresPermission(t *testing.T) {
	env := newTestEnv(t, logBase)
	ctx := context.Background()

	log := testutil.NewTestLog(env.employee.ID, logBase, logBase.Add(time.Hour))
	require.NoError(t, env.logRepo.Create(ctx, log))

	denied := testutil.NewDeniedScope(env.employee.ID)
	err := env.logs.DeleteTimeSpan(ctx, denied, logBase, logBase.Add(2*time.Hour), log.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	got, err := env.logRepo.GetByID(ctx, log.ID)
	require.NoError(t, err)
	assert.Nil(t, got.DeletedAt, "a denied span delete must not touch the log")
}

func TestTimeLogService_DeleteTimeSpan_FullCoverDeletes(t *testing.T) {
	env := newTestEnv(t, logBase)
	ctx := context.Background()

	log := testutil.NewTestLog(env.employee.ID, logBase, logBase.Add(time.Hour))
	require.NoError(t, env.logRepo.Create(ctx, log))

	err := env.logs.DeleteTimeSpan(ctx, env.scope, logBase.Add(-time.Minute), logBase.Add(2*time.Hour), log.ID)
	require.NoError(t, err)

	_, err = env.logRepo.GetByID(ctx, log.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTimeLogService_DeleteTimeSpan_TrimsHead(t *testing.T) {
	env := newTestEnv(t, logBase)
	ctx := context.Background()

	log := testutil.NewTestLog(env.employee.ID, logBase, logBase.Add(time.Hour))
	require.NoError(t, env.logRepo.Create(ctx, log))

	err := env.logs.DeleteTimeSpan(ctx, env.scope, logBase.Add(-10*time.Minute), logBase.Add(20*time.Minute), log.ID)
	require.NoError(t, err)

	got, err := env.logRepo.GetByID(ctx, log.ID)
	require.NoError(t, err)
	assert.Equal(t, logBase.Add(20*time.Minute), got.StartedAt)
	assert.Equal(t, 2400, got.Duration)
}

func TestTimeLogService_DeleteTimeSpan_TrimsTail(t *testing.T) {
	env := newTestEnv(t, logBase)
	ctx := context.Background()

	log := testutil.NewTestLog(env.employee.ID, logBase, logBase.Add(time.Hour))
	require.NoError(t, env.logRepo.Create(ctx, log))

	err := env.logs.DeleteTimeSpan(ctx, env.scope, logBase.Add(40*time.Minute), logBase.Add(2*time.Hour), log.ID)
	require.NoError(t, err)

	got, err := env.logRepo.GetByID(ctx, log.ID)
	require.NoError(t, err)
	require.NotNil(t, got.StoppedAt)
	assert.Equal(t, logBase.Add(40*time.Minute), *got.StoppedAt)
	assert.Equal(t, 2400, got.Duration)
}

func TestTimeLogService_DeleteTimeSpan_SplitsMiddle(t *testing.T) {
	env := newTestEnv(t, logBase)
	ctx := context.Background()

	log := testutil.NewTestLog(env.employee.ID, logBase, logBase.Add(time.Hour),
		testutil.WithProjectID("proj-9"))
	require.NoError(t, env.logRepo.Create(ctx, log))

	err := env.logs.DeleteTimeSpan(ctx, env.scope, logBase.Add(20*time.Minute), logBase.Add(40*time.Minute), log.ID)
	require.NoError(t, err)

	head, err := env.logRepo.GetByID(ctx, log.ID)
	require.NoError(t, err)
	require.NotNil(t, head.StoppedAt)
	assert.Equal(t, logBase.Add(20*time.Minute), *head.StoppedAt)
	assert.Equal(t, 1200, head.Duration)

	all, err := env.logs.FindConflicts(ctx, env.scope, logBase, logBase.Add(time.Hour), nil)
	require.NoError(t, err)
	require.Len(t, all, 2)

	tail := all[1]
	assert.Equal(t, logBase.Add(40*time.Minute), tail.StartedAt)
	assert.Equal(t, 1200, tail.Duration)
	require.NotNil(t, tail.ProjectID)
	assert.Equal(t, "proj-9", *tail.ProjectID, "the tail keeps the original's attributes")
}

func TestTimeLogService_DeleteTimeSpan_SplitRehomesTailSlots(t *testing.T) {
	env := newTestEnv(t, logBase)
	ctx := context.Background()

	log := testutil.NewTestLog(env.employee.ID, logBase, logBase.Add(time.Hour))
	require.NoError(t, env.logRepo.Create(ctx, log))

	tailSlot := testutil.NewTestSlot(env.employee.ID, logBase.Add(50*time.Minute),
		testutil.WithSlotLogIDs(log.ID))
	require.NoError(t, env.slotRepo.Create(ctx, tailSlot))

	err := env.logs.DeleteTimeSpan(ctx, env.scope, logBase.Add(20*time.Minute), logBase.Add(40*time.Minute), log.ID)
	require.NoError(t, err)

	all, err := env.logs.FindConflicts(ctx, env.scope, logBase.Add(40*time.Minute), logBase.Add(time.Hour), []string{log.ID})
	require.NoError(t, err)
	require.Len(t, all, 1)
	tailID := all[0].ID

	got, err := env.slotRepo.GetByID(ctx, tailSlot.ID)
	require.NoError(t, err)
	assert.Contains(t, got.TimeLogIDs, tailID, "slots past the cut link to the new tail log")
}

func TestTimeLogService_DeleteTimeSpan_RecalculatesTimesheet(t *testing.T) {
	env := newTestEnv(t, logBase)
	ctx := context.Background()

	sheet, err := env.sheets.FindOrCreate(ctx, env.scope, logBase)
	require.NoError(t, err)

	log := testutil.NewTestLog(env.employee.ID, logBase, logBase.Add(time.Hour),
		testutil.WithTimesheetID(sheet.ID))
	require.NoError(t, env.logRepo.Create(ctx, log))
	require.NoError(t, env.sheets.Recalculate(ctx, sheet.ID))

	err = env.logs.DeleteTimeSpan(ctx, env.scope, logBase.Add(30*time.Minute), logBase.Add(2*time.Hour), log.ID)
	require.NoError(t, err)

	// Tail trimmed to 30 minutes; the sheet rollup follows.
	updated, err := env.sheets.FindOrCreate(ctx, env.scope, logBase)
	require.NoError(t, err)
	assert.Equal(t, 1800, updated.Duration)
}

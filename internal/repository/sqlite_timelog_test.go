package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timecore/internal/domain"
	"timecore/internal/testutil"
)

func setupLogRepo(t *testing.T) (*SQLiteTimeLogRepo, *domain.Employee, *sql.DB) {
	t.Helper()
	database := testutil.NewTestDB(t)
	employee := testutil.NewTestEmployee()
	require.NoError(t, NewSQLiteEmployeeRepo(database).Create(context.Background(), employee))
	return NewSQLiteTimeLogRepo(database), employee, database
}

func logFilter(employeeID string) SlotFilter {
	return SlotFilter{
		TenantID:       testutil.TestTenant,
		OrganizationID: testutil.TestOrg,
		EmployeeID:     employeeID,
	}
}

func TestTimeLogRepo_CreateAndGet(t *testing.T) {
	repo, employee, _ := setupLogRepo(t)
	ctx := context.Background()

	start := time.Date(2024, 3, 18, 10, 0, 0, 0, time.UTC)
	log := testutil.NewTestLog(employee.ID, start, start.Add(time.Hour),
		testutil.WithLogType(domain.LogManual),
		testutil.WithProjectID("proj-1"),
	)
	require.NoError(t, repo.Create(ctx, log))

	got, err := repo.GetByID(ctx, log.ID)
	require.NoError(t, err)
	assert.Equal(t, employee.ID, got.EmployeeID)
	assert.Equal(t, domain.LogManual, got.LogType)
	assert.Equal(t, 3600, got.Duration)
	require.NotNil(t, got.StoppedAt)
	assert.Equal(t, start.Add(time.Hour), *got.StoppedAt)
	require.NotNil(t, got.ProjectID)
	assert.Equal(t, "proj-1", *got.ProjectID)
	assert.Empty(t, got.TimesheetID)
}

func TestTimeLogRepo_GetByID_NotFound(t *testing.T) {
	repo, _, _ := setupLogRepo(t)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTimeLogRepo_SoftDeleteHidesLog(t *testing.T) {
	repo, employee, _ := setupLogRepo(t)
	ctx := context.Background()

	start := time.Date(2024, 3, 18, 10, 0, 0, 0, time.UTC)
	log := testutil.NewTestLog(employee.ID, start, start.Add(time.Hour))
	require.NoError(t, repo.Create(ctx, log))
	require.NoError(t, repo.SoftDelete(ctx, log.ID, time.Now().UTC()))

	_, err := repo.GetByID(ctx, log.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTimeLogRepo_FindRunning(t *testing.T) {
	repo, employee, _ := setupLogRepo(t)
	ctx := context.Background()

	start := time.Date(2024, 3, 18, 10, 0, 0, 0, time.UTC)
	closed := testutil.NewTestLog(employee.ID, start.Add(-2*time.Hour), start.Add(-time.Hour))
	require.NoError(t, repo.Create(ctx, closed))

	_, err := repo.FindRunning(ctx, employee.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	open := testutil.NewTestLog(employee.ID, start, start, testutil.Running())
	require.NoError(t, repo.Create(ctx, open))

	got, err := repo.FindRunning(ctx, employee.ID)
	require.NoError(t, err)
	assert.Equal(t, open.ID, got.ID)
	assert.Nil(t, got.StoppedAt)
}

func TestTimeLogRepo_SingleRunningLogEnforced(t *testing.T) {
	repo, employee, _ := setupLogRepo(t)
	ctx := context.Background()

	start := time.Date(2024, 3, 18, 10, 0, 0, 0, time.UTC)
	first := testutil.NewTestLog(employee.ID, start, start, testutil.Running())
	require.NoError(t, repo.Create(ctx, first))

	second := testutil.NewTestLog(employee.ID, start.Add(time.Minute), start, testutil.Running())
	err := repo.Create(ctx, second)
	require.Error(t, err, "partial unique index must reject a second open log")

	// A soft-deleted open log no longer blocks a new one.
	require.NoError(t, repo.SoftDelete(ctx, first.ID, time.Now().UTC()))
	require.NoError(t, repo.Create(ctx, second))
}

func TestTimeLogRepo_ListConflicting_InclusiveBounds(t *testing.T) {
	repo, employee, _ := setupLogRepo(t)
	ctx := context.Background()
	f := logFilter(employee.ID)

	start := time.Date(2024, 3, 18, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	log := testutil.NewTestLog(employee.ID, start, end)
	require.NoError(t, repo.Create(ctx, log))

	// A range touching the log's stop instant still conflicts.
	got, err := repo.ListConflicting(ctx, f, end, end.Add(time.Hour), nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, log.ID, got[0].ID)

	// One second past the stop does not.
	got, err = repo.ListConflicting(ctx, f, end.Add(time.Second), end.Add(time.Hour), nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	// Touching the start instant from the other side conflicts too.
	got, err = repo.ListConflicting(ctx, f, start.Add(-time.Hour), start, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestTimeLogRepo_ListConflicting_IgnoresGivenIDs(t *testing.T) {
	repo, employee, _ := setupLogRepo(t)
	ctx := context.Background()
	f := logFilter(employee.ID)

	start := time.Date(2024, 3, 18, 10, 0, 0, 0, time.UTC)
	log := testutil.NewTestLog(employee.ID, start, start.Add(time.Hour))
	require.NoError(t, repo.Create(ctx, log))

	got, err := repo.ListConflicting(ctx, f, start, start.Add(time.Hour), []string{log.ID})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTimeLogRepo_ListConflicting_SkipsSoftDeleted(t *testing.T) {
	repo, employee, _ := setupLogRepo(t)
	ctx := context.Background()
	f := logFilter(employee.ID)

	start := time.Date(2024, 3, 18, 10, 0, 0, 0, time.UTC)
	log := testutil.NewTestLog(employee.ID, start, start.Add(time.Hour))
	require.NoError(t, repo.Create(ctx, log))
	require.NoError(t, repo.SoftDelete(ctx, log.ID, time.Now().UTC()))

	got, err := repo.ListConflicting(ctx, f, start, start.Add(time.Hour), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTimeLogRepo_ListConflicting_RunningLogHasNoEnd(t *testing.T) {
	repo, employee, _ := setupLogRepo(t)
	ctx := context.Background()
	f := logFilter(employee.ID)

	start := time.Date(2024, 3, 18, 10, 0, 0, 0, time.UTC)
	open := testutil.NewTestLog(employee.ID, start, start, testutil.Running())
	require.NoError(t, repo.Create(ctx, open))

	// An open session conflicts with any range after its start.
	got, err := repo.ListConflicting(ctx, f, start.Add(24*time.Hour), start.Add(25*time.Hour), nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, open.ID, got[0].ID)

	// But not with ranges entirely before it started.
	got, err = repo.ListConflicting(ctx, f, start.Add(-2*time.Hour), start.Add(-time.Hour), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTimeLogRepo_ListClosedInRange(t *testing.T) {
	repo, employee, _ := setupLogRepo(t)
	ctx := context.Background()

	day := time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC)
	inRange := testutil.NewTestLog(employee.ID, day.Add(9*time.Hour), day.Add(10*time.Hour))
	outOfRange := testutil.NewTestLog(employee.ID, day.AddDate(0, 0, -1), day.AddDate(0, 0, -1).Add(time.Hour))
	open := testutil.NewTestLog(employee.ID, day.Add(11*time.Hour), day, testutil.Running())
	require.NoError(t, repo.Create(ctx, inRange))
	require.NoError(t, repo.Create(ctx, outOfRange))
	require.NoError(t, repo.Create(ctx, open))

	got, err := repo.ListClosedInRange(ctx, employee.ID, day, day.AddDate(0, 0, 1).Add(-time.Second))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, inRange.ID, got[0].ID)
}

func TestTimeLogRepo_ErrorsWrapForInspection(t *testing.T) {
	repo, _, _ := setupLogRepo(t)

	_, err := repo.GetByID(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "time log")
}

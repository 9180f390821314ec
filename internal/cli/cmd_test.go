package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timecore/internal/repository"
	"timecore/internal/service"
	"timecore/internal/testutil"
)

func newTestApp(t *testing.T) (*App, string) {
	t.Helper()
	database := testutil.NewTestDB(t)

	slotRepo := repository.NewSQLiteTimeSlotRepo(database)
	logRepo := repository.NewSQLiteTimeLogRepo(database)
	sheetRepo := repository.NewSQLiteTimesheetRepo(database)
	shotRepo := repository.NewSQLiteScreenshotRepo(database)
	actRepo := repository.NewSQLiteActivityRepo(database)
	empRepo := repository.NewSQLiteEmployeeRepo(database)
	uow := testutil.NewTestUoW(database)
	clock := service.SystemClock{}

	sheets := service.NewTimesheetService(sheetRepo, logRepo, slotRepo, clock)
	logs := service.NewTimeLogService(logRepo, slotRepo, sheets, uow, clock)
	slots := service.NewTimeSlotService(slotRepo, logRepo, shotRepo, actRepo, empRepo, logs, sheets, uow, clock)
	timer := service.NewTimerService(logRepo, empRepo, uow, clock)

	employee := testutil.NewTestEmployee()
	require.NoError(t, empRepo.Create(context.Background(), employee))

	return &App{
		Slots:      slots,
		Logs:       logs,
		Timesheets: sheets,
		Timer:      timer,
		Employees:  empRepo,
	}, employee.ID
}

func execute(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootCmd_RequiresScope(t *testing.T) {
	app, _ := newTestApp(t)
	t.Setenv("TIMECORE_TENANT", "")
	t.Setenv("TIMECORE_EMPLOYEE", "")

	_, err := execute(t, app, "timer", "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--tenant")
}

func TestTimerToggleCmd_StartsAndStops(t *testing.T) {
	app, employeeID := newTestApp(t)
	scopeArgs := []string{"--tenant", testutil.TestTenant, "--org", testutil.TestOrg, "--employee", employeeID}

	_, err := execute(t, app, append([]string{"timer", "toggle"}, scopeArgs...)...)
	require.NoError(t, err)

	status, err := app.Timer.Status(context.Background(), testutil.NewTestScope(employeeID))
	require.NoError(t, err)
	assert.True(t, status.Running)
}

func TestSlotPushCmd_RejectsBadTime(t *testing.T) {
	app, employeeID := newTestApp(t)

	_, err := execute(t, app,
		"slot", "push", "--started", "not-a-time",
		"--tenant", testutil.TestTenant, "--org", testutil.TestOrg, "--employee", employeeID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing time")
}

func TestSlotPushCmd_CreatesSlot(t *testing.T) {
	app, employeeID := newTestApp(t)

	started := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
	_, err := execute(t, app,
		"slot", "push", "--started", started, "--duration", "90", "--keyboard", "40",
		"--tenant", testutil.TestTenant, "--org", testutil.TestOrg, "--employee", employeeID)
	require.NoError(t, err)
}

func TestLogConflictsCmd_EmptyRange(t *testing.T) {
	app, employeeID := newTestApp(t)

	out, err := execute(t, app,
		"log", "conflicts",
		"--from", "2024-03-18T10:00:00Z", "--to", "2024-03-18T11:00:00Z",
		"--tenant", testutil.TestTenant, "--org", testutil.TestOrg, "--employee", employeeID)
	require.NoError(t, err)
	_ = out
}

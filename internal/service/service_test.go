package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"timecore/internal/domain"
	"timecore/internal/repository"
	"timecore/internal/testutil"
)

// testClock is an adjustable clock for driving timer transitions.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestClock(at time.Time) *testClock { return &testClock{now: at.UTC()} }

// testEnv wires the full service stack over an in-memory database with one
// registered employee.
type testEnv struct {
	db       *sql.DB
	clock    *testClock
	slots    TimeSlotService
	logs     TimeLogService
	sheets   TimesheetService
	timer    TimerService
	slotRepo *repository.SQLiteTimeSlotRepo
	logRepo  *repository.SQLiteTimeLogRepo
	shotRepo *repository.SQLiteScreenshotRepo
	actRepo  *repository.SQLiteActivityRepo
	empRepo  *repository.SQLiteEmployeeRepo
	employee *domain.Employee
	scope    domain.Scope
}

func newTestEnv(t *testing.T, at time.Time) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)

	env := &testEnv{
		db:       database,
		clock:    newTestClock(at),
		slotRepo: repository.NewSQLiteTimeSlotRepo(database),
		logRepo:  repository.NewSQLiteTimeLogRepo(database),
		shotRepo: repository.NewSQLiteScreenshotRepo(database),
		actRepo:  repository.NewSQLiteActivityRepo(database),
		empRepo:  repository.NewSQLiteEmployeeRepo(database),
	}

	sheetRepo := repository.NewSQLiteTimesheetRepo(database)
	uow := testutil.NewTestUoW(database)

	env.sheets = NewTimesheetService(sheetRepo, env.logRepo, env.slotRepo, env.clock)
	env.logs = NewTimeLogService(env.logRepo, env.slotRepo, env.sheets, uow, env.clock)
	env.slots = NewTimeSlotService(
		env.slotRepo, env.logRepo, env.shotRepo, env.actRepo, env.empRepo,
		env.logs, env.sheets, uow, env.clock,
	)
	env.timer = NewTimerService(env.logRepo, env.empRepo, uow, env.clock)

	env.employee = testutil.NewTestEmployee()
	require.NoError(t, env.empRepo.Create(context.Background(), env.employee))
	env.scope = testutil.NewTestScope(env.employee.ID)

	return env
}

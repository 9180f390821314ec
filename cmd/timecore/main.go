package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"timecore/internal/cli"
	"timecore/internal/config"
	"timecore/internal/db"
	"timecore/internal/repository"
	"timecore/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := os.Getenv("TIMECORE_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	// Determine DB path: env var, config file, or default ~/.timecore/timecore.db
	dbPath := os.Getenv("TIMECORE_DB")
	if dbPath == "" {
		dbPath = cfg.Database.Path
	}
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".timecore", "timecore.db")
	}

	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	slotRepo := repository.NewSQLiteTimeSlotRepo(database)
	logRepo := repository.NewSQLiteTimeLogRepo(database)
	sheetRepo := repository.NewSQLiteTimesheetRepo(database)
	screenshotRepo := repository.NewSQLiteScreenshotRepo(database)
	activityRepo := repository.NewSQLiteActivityRepo(database)
	employeeRepo := repository.NewSQLiteEmployeeRepo(database)

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)
	clock := service.SystemClock{}

	// Wire services
	sheetSvc := service.NewTimesheetService(sheetRepo, logRepo, slotRepo, clock)
	logSvc := service.NewTimeLogService(logRepo, slotRepo, sheetSvc, uow, clock)
	slotSvc := service.NewTimeSlotService(
		slotRepo, logRepo, screenshotRepo, activityRepo, employeeRepo,
		logSvc, sheetSvc, uow, clock,
	)
	timerSvc := service.NewTimerService(logRepo, employeeRepo, uow, clock)

	app := &cli.App{
		Slots:      slotSvc,
		Logs:       logSvc,
		Timesheets: sheetSvc,
		Timer:      timerSvc,
		Employees:  employeeRepo,
	}

	// Plain output when stdout is not a terminal.
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		os.Setenv("NO_COLOR", "1")
	}

	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}

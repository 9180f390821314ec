package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS employees (
		id                  TEXT PRIMARY KEY,
		tenant_id           TEXT NOT NULL,
		organization_id     TEXT NOT NULL,
		user_id             TEXT NOT NULL DEFAULT '',
		is_tracking_enabled INTEGER NOT NULL DEFAULT 1,
		is_tracking_time    INTEGER NOT NULL DEFAULT 0,
		is_online           INTEGER NOT NULL DEFAULT 0,
		created_at          TEXT NOT NULL,
		updated_at          TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_employees_tenant ON employees(tenant_id, organization_id)`,

	`CREATE TABLE IF NOT EXISTS timesheets (
		id              TEXT PRIMARY KEY,
		tenant_id       TEXT NOT NULL,
		organization_id TEXT NOT NULL,
		employee_id     TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		started_at      TEXT NOT NULL,
		stopped_at      TEXT NOT NULL,
		duration        INTEGER NOT NULL DEFAULT 0,
		keyboard        INTEGER NOT NULL DEFAULT 0,
		mouse           INTEGER NOT NULL DEFAULT 0,
		overall         INTEGER NOT NULL DEFAULT 0,
		status          TEXT NOT NULL DEFAULT 'PENDING'
		                CHECK(status IN ('PENDING','IN_REVIEW','APPROVED')),
		submitted_at    TEXT,
		approved_at     TEXT,
		created_at      TEXT NOT NULL,
		updated_at      TEXT NOT NULL
	)`,

	// One sheet per employee per week start
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_timesheets_employee_week
		ON timesheets(employee_id, started_at)`,

	`CREATE TABLE IF NOT EXISTS time_logs (
		id                      TEXT PRIMARY KEY,
		tenant_id               TEXT NOT NULL,
		organization_id         TEXT NOT NULL,
		employee_id             TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		timesheet_id            TEXT REFERENCES timesheets(id) ON DELETE CASCADE,
		project_id              TEXT,
		task_id                 TEXT,
		organization_contact_id TEXT,
		started_at              TEXT NOT NULL,
		stopped_at              TEXT,
		duration                INTEGER NOT NULL DEFAULT 0,
		log_type                TEXT NOT NULL DEFAULT 'TRACKED'
		                        CHECK(log_type IN ('TRACKED','MANUAL','IDLE')),
		source                  TEXT NOT NULL DEFAULT 'WEB_TIMER',
		description             TEXT NOT NULL DEFAULT '',
		is_billable             INTEGER NOT NULL DEFAULT 0,
		deleted_at              TEXT,
		created_at              TEXT NOT NULL,
		updated_at              TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_time_logs_employee ON time_logs(employee_id, started_at)`,
	`CREATE INDEX IF NOT EXISTS idx_time_logs_timesheet ON time_logs(timesheet_id)`,

	// At most one open session per employee. Concurrent toggles racing to
	// start both hit this constraint; the loser observes the winner's row.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_time_logs_running
		ON time_logs(employee_id) WHERE stopped_at IS NULL AND deleted_at IS NULL`,

	`CREATE TABLE IF NOT EXISTS time_slots (
		id              TEXT PRIMARY KEY,
		tenant_id       TEXT NOT NULL,
		organization_id TEXT NOT NULL,
		employee_id     TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		started_at      TEXT NOT NULL,
		stopped_at      TEXT NOT NULL,
		duration        INTEGER NOT NULL DEFAULT 0,
		keyboard        INTEGER NOT NULL DEFAULT 0,
		mouse           INTEGER NOT NULL DEFAULT 0,
		overall         INTEGER NOT NULL DEFAULT 0,
		created_at      TEXT NOT NULL
	)`,

	// Non-unique on purpose: duplicate (employee, started_at) rows are an
	// accepted race under concurrent agent pushes, reconciled by merge.
	`CREATE INDEX IF NOT EXISTS idx_time_slots_employee_started
		ON time_slots(employee_id, started_at)`,

	`CREATE TABLE IF NOT EXISTS time_slot_logs (
		time_slot_id TEXT NOT NULL REFERENCES time_slots(id) ON DELETE CASCADE,
		time_log_id  TEXT NOT NULL REFERENCES time_logs(id) ON DELETE CASCADE,
		PRIMARY KEY (time_slot_id, time_log_id)
	)`,

	`CREATE TABLE IF NOT EXISTS screenshots (
		id              TEXT PRIMARY KEY,
		tenant_id       TEXT NOT NULL,
		organization_id TEXT NOT NULL,
		time_slot_id    TEXT NOT NULL REFERENCES time_slots(id) ON DELETE CASCADE,
		file_key        TEXT NOT NULL DEFAULT '',
		thumb_key       TEXT NOT NULL DEFAULT '',
		recorded_at     TEXT NOT NULL,
		created_at      TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_screenshots_slot ON screenshots(time_slot_id)`,

	`CREATE TABLE IF NOT EXISTS activities (
		id              TEXT PRIMARY KEY,
		tenant_id       TEXT NOT NULL,
		organization_id TEXT NOT NULL,
		time_slot_id    TEXT NOT NULL REFERENCES time_slots(id) ON DELETE CASCADE,
		title           TEXT NOT NULL DEFAULT '',
		duration        INTEGER NOT NULL DEFAULT 0,
		recorded_at     TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_activities_slot ON activities(time_slot_id)`,
}

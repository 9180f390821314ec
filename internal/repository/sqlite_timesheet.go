package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"timecore/internal/db"
	"timecore/internal/domain"
)

const timesheetColumns = `id, tenant_id, organization_id, employee_id, started_at, stopped_at,
	duration, keyboard, mouse, overall, status, submitted_at, approved_at, created_at, updated_at`

// SQLiteTimesheetRepo implements TimesheetRepo over a SQLite database or
// transaction.
type SQLiteTimesheetRepo struct {
	db db.DBTX
}

// NewSQLiteTimesheetRepo creates a new SQLiteTimesheetRepo.
func NewSQLiteTimesheetRepo(dbtx db.DBTX) *SQLiteTimesheetRepo {
	return &SQLiteTimesheetRepo{db: dbtx}
}

func (r *SQLiteTimesheetRepo) Create(ctx context.Context, t *domain.Timesheet) error {
	query := `INSERT INTO timesheets (` + timesheetColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.TenantID,
		t.OrganizationID,
		t.EmployeeID,
		t.StartedAt.UTC().Format(time.RFC3339),
		t.StoppedAt.UTC().Format(time.RFC3339),
		t.Duration,
		t.Keyboard,
		t.Mouse,
		t.Overall,
		string(t.Status),
		nullableTimeToString(t.SubmittedAt, time.RFC3339),
		nullableTimeToString(t.ApprovedAt, time.RFC3339),
		t.CreatedAt.UTC().Format(time.RFC3339),
		t.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting timesheet: %w", err)
	}
	return nil
}

func (r *SQLiteTimesheetRepo) GetByID(ctx context.Context, id string) (*domain.Timesheet, error) {
	query := `SELECT ` + timesheetColumns + ` FROM timesheets WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	return r.scanSheet(row)
}

func (r *SQLiteTimesheetRepo) FindByWeekStart(ctx context.Context, employeeID string, weekStart time.Time) (*domain.Timesheet, error) {
	query := `SELECT ` + timesheetColumns + ` FROM timesheets
		WHERE employee_id = ? AND started_at = ?`
	row := r.db.QueryRowContext(ctx, query, employeeID, weekStart.UTC().Format(time.RFC3339))
	return r.scanSheet(row)
}

func (r *SQLiteTimesheetRepo) Update(ctx context.Context, t *domain.Timesheet) error {
	query := `UPDATE timesheets SET
		duration = ?, keyboard = ?, mouse = ?, overall = ?, status = ?,
		submitted_at = ?, approved_at = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		t.Duration,
		t.Keyboard,
		t.Mouse,
		t.Overall,
		string(t.Status),
		nullableTimeToString(t.SubmittedAt, time.RFC3339),
		nullableTimeToString(t.ApprovedAt, time.RFC3339),
		t.UpdatedAt.UTC().Format(time.RFC3339),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating timesheet: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("timesheet %s: %w", t.ID, ErrNotFound)
	}
	return nil
}

// scanSheet scans a single timesheet from a *sql.Row.
func (r *SQLiteTimesheetRepo) scanSheet(row *sql.Row) (*domain.Timesheet, error) {
	var t domain.Timesheet
	var startedAtStr, stoppedAtStr, createdAtStr, updatedAtStr string
	var submittedAtStr, approvedAtStr sql.NullString

	err := row.Scan(
		&t.ID, &t.TenantID, &t.OrganizationID, &t.EmployeeID,
		&startedAtStr, &stoppedAtStr, &t.Duration, &t.Keyboard, &t.Mouse, &t.Overall,
		&t.Status, &submittedAtStr, &approvedAtStr, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("timesheet: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning timesheet: %w", err)
	}

	var parseErr error
	t.StartedAt, parseErr = time.Parse(time.RFC3339, startedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing started_at: %w", parseErr)
	}
	t.StoppedAt, parseErr = time.Parse(time.RFC3339, stoppedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing stopped_at: %w", parseErr)
	}
	t.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	t.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	t.SubmittedAt = parseNullableTime(submittedAtStr, time.RFC3339)
	t.ApprovedAt = parseNullableTime(approvedAtStr, time.RFC3339)

	return &t, nil
}

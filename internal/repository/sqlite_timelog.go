package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"timecore/internal/db"
	"timecore/internal/domain"
)

// farFuture stands in for the end of a still-running log in interval
// comparisons: an open session overlaps everything after its start.
const farFuture = "9999-12-31T23:59:59Z"

const timeLogColumns = `id, tenant_id, organization_id, employee_id, timesheet_id, project_id, task_id, organization_contact_id,
	started_at, stopped_at, duration, log_type, source, description, is_billable, deleted_at, created_at, updated_at`

// SQLiteTimeLogRepo implements TimeLogRepo over a SQLite database or
// transaction.
type SQLiteTimeLogRepo struct {
	db db.DBTX
}

// NewSQLiteTimeLogRepo creates a new SQLiteTimeLogRepo.
func NewSQLiteTimeLogRepo(dbtx db.DBTX) *SQLiteTimeLogRepo {
	return &SQLiteTimeLogRepo{db: dbtx}
}

func (r *SQLiteTimeLogRepo) Create(ctx context.Context, l *domain.TimeLog) error {
	query := `INSERT INTO time_logs (` + timeLogColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		l.ID,
		l.TenantID,
		l.OrganizationID,
		l.EmployeeID,
		emptyToNull(l.TimesheetID),
		nullableString(l.ProjectID),
		nullableString(l.TaskID),
		nullableString(l.OrganizationContactID),
		l.StartedAt.UTC().Format(time.RFC3339),
		nullableTimeToString(l.StoppedAt, time.RFC3339),
		l.Duration,
		string(l.LogType),
		string(l.Source),
		l.Description,
		boolToInt(l.IsBillable),
		nullableTimeToString(l.DeletedAt, time.RFC3339),
		l.CreatedAt.UTC().Format(time.RFC3339),
		l.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting time log: %w", err)
	}
	return nil
}

func (r *SQLiteTimeLogRepo) GetByID(ctx context.Context, id string) (*domain.TimeLog, error) {
	query := `SELECT ` + timeLogColumns + ` FROM time_logs WHERE id = ? AND deleted_at IS NULL`
	row := r.db.QueryRowContext(ctx, query, id)
	return r.scanLog(row)
}

func (r *SQLiteTimeLogRepo) Update(ctx context.Context, l *domain.TimeLog) error {
	query := `UPDATE time_logs SET
		timesheet_id = ?, project_id = ?, task_id = ?, organization_contact_id = ?,
		started_at = ?, stopped_at = ?, duration = ?, log_type = ?, source = ?,
		description = ?, is_billable = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query,
		emptyToNull(l.TimesheetID),
		nullableString(l.ProjectID),
		nullableString(l.TaskID),
		nullableString(l.OrganizationContactID),
		l.StartedAt.UTC().Format(time.RFC3339),
		nullableTimeToString(l.StoppedAt, time.RFC3339),
		l.Duration,
		string(l.LogType),
		string(l.Source),
		l.Description,
		boolToInt(l.IsBillable),
		l.UpdatedAt.UTC().Format(time.RFC3339),
		l.ID,
	)
	if err != nil {
		return fmt.Errorf("updating time log: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("time log %s: %w", l.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteTimeLogRepo) SoftDelete(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE time_logs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, at.UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("soft deleting time log: %w", err)
	}
	return nil
}

func (r *SQLiteTimeLogRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM time_logs WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("deleting time log: %w", err)
	}
	return nil
}

func (r *SQLiteTimeLogRepo) FindRunning(ctx context.Context, employeeID string) (*domain.TimeLog, error) {
	query := `SELECT ` + timeLogColumns + ` FROM time_logs
		WHERE employee_id = ? AND stopped_at IS NULL AND deleted_at IS NULL
		ORDER BY started_at DESC, created_at DESC LIMIT 1`
	row := r.db.QueryRowContext(ctx, query, employeeID)
	return r.scanLog(row)
}

func (r *SQLiteTimeLogRepo) ListRunning(ctx context.Context, employeeID string) ([]*domain.TimeLog, error) {
	query := `SELECT ` + timeLogColumns + ` FROM time_logs
		WHERE employee_id = ? AND stopped_at IS NULL AND deleted_at IS NULL
		ORDER BY started_at DESC, created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("listing running time logs: %w", err)
	}
	defer rows.Close()
	return r.scanLogs(rows)
}

func (r *SQLiteTimeLogRepo) ListConflicting(ctx context.Context, f SlotFilter, start, end time.Time, ignoreIDs []string) ([]*domain.TimeLog, error) {
	query := `SELECT ` + timeLogColumns + ` FROM time_logs
		WHERE tenant_id = ? AND organization_id = ? AND employee_id = ?
		  AND deleted_at IS NULL
		  AND started_at <= ?
		  AND COALESCE(stopped_at, ?) >= ?`
	args := []any{
		f.TenantID, f.OrganizationID, f.EmployeeID,
		end.UTC().Format(time.RFC3339),
		farFuture,
		start.UTC().Format(time.RFC3339),
	}
	if len(ignoreIDs) > 0 {
		query += fmt.Sprintf(` AND id NOT IN (%s)`, placeholders(len(ignoreIDs)))
		args = append(args, toArgs(ignoreIDs)...)
	}
	query += ` ORDER BY started_at`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing conflicting time logs: %w", err)
	}
	defer rows.Close()
	return r.scanLogs(rows)
}

func (r *SQLiteTimeLogRepo) ListClosedInRange(ctx context.Context, employeeID string, start, end time.Time) ([]*domain.TimeLog, error) {
	query := `SELECT ` + timeLogColumns + ` FROM time_logs
		WHERE employee_id = ? AND deleted_at IS NULL
		  AND stopped_at IS NOT NULL
		  AND started_at <= ? AND stopped_at >= ?
		ORDER BY started_at`
	rows, err := r.db.QueryContext(ctx, query,
		employeeID,
		end.UTC().Format(time.RFC3339),
		start.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("listing closed time logs: %w", err)
	}
	defer rows.Close()
	return r.scanLogs(rows)
}

func (r *SQLiteTimeLogRepo) LatestInRange(ctx context.Context, employeeID string, start, end time.Time) (*domain.TimeLog, error) {
	query := `SELECT ` + timeLogColumns + ` FROM time_logs
		WHERE employee_id = ? AND deleted_at IS NULL
		  AND started_at <= ?
		  AND COALESCE(stopped_at, ?) >= ?
		ORDER BY started_at DESC, created_at DESC LIMIT 1`
	row := r.db.QueryRowContext(ctx, query,
		employeeID,
		end.UTC().Format(time.RFC3339),
		farFuture,
		start.UTC().Format(time.RFC3339),
	)
	return r.scanLog(row)
}

func (r *SQLiteTimeLogRepo) ListByTimesheet(ctx context.Context, timesheetID string) ([]*domain.TimeLog, error) {
	query := `SELECT ` + timeLogColumns + ` FROM time_logs
		WHERE timesheet_id = ? AND deleted_at IS NULL
		ORDER BY started_at`
	rows, err := r.db.QueryContext(ctx, query, timesheetID)
	if err != nil {
		return nil, fmt.Errorf("listing time logs by timesheet: %w", err)
	}
	defer rows.Close()
	return r.scanLogs(rows)
}

func (r *SQLiteTimeLogRepo) ListBySlot(ctx context.Context, slotID string) ([]*domain.TimeLog, error) {
	query := `SELECT l.id, l.tenant_id, l.organization_id, l.employee_id, l.timesheet_id, l.project_id, l.task_id, l.organization_contact_id,
		l.started_at, l.stopped_at, l.duration, l.log_type, l.source, l.description, l.is_billable, l.deleted_at, l.created_at, l.updated_at
		FROM time_logs l
		JOIN time_slot_logs sl ON sl.time_log_id = l.id
		WHERE sl.time_slot_id = ? AND l.deleted_at IS NULL
		ORDER BY l.started_at`
	rows, err := r.db.QueryContext(ctx, query, slotID)
	if err != nil {
		return nil, fmt.Errorf("listing time logs by slot: %w", err)
	}
	defer rows.Close()
	return r.scanLogs(rows)
}

// scanLog scans a single log from a *sql.Row.
func (r *SQLiteTimeLogRepo) scanLog(row *sql.Row) (*domain.TimeLog, error) {
	var l domain.TimeLog
	var timesheetID, projectID, taskID, contactID, stoppedAtStr, deletedAtStr sql.NullString
	var startedAtStr, createdAtStr, updatedAtStr string
	var isBillable int

	err := row.Scan(
		&l.ID, &l.TenantID, &l.OrganizationID, &l.EmployeeID, &timesheetID,
		&projectID, &taskID, &contactID,
		&startedAtStr, &stoppedAtStr, &l.Duration, &l.LogType, &l.Source,
		&l.Description, &isBillable, &deletedAtStr, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("time log: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning time log: %w", err)
	}

	return r.populateLog(&l, timesheetID, projectID, taskID, contactID, startedAtStr, stoppedAtStr, deletedAtStr, createdAtStr, updatedAtStr, isBillable)
}

// scanLogs scans multiple logs from *sql.Rows.
func (r *SQLiteTimeLogRepo) scanLogs(rows *sql.Rows) ([]*domain.TimeLog, error) {
	var logs []*domain.TimeLog
	for rows.Next() {
		var l domain.TimeLog
		var timesheetID, projectID, taskID, contactID, stoppedAtStr, deletedAtStr sql.NullString
		var startedAtStr, createdAtStr, updatedAtStr string
		var isBillable int

		err := rows.Scan(
			&l.ID, &l.TenantID, &l.OrganizationID, &l.EmployeeID, &timesheetID,
			&projectID, &taskID, &contactID,
			&startedAtStr, &stoppedAtStr, &l.Duration, &l.LogType, &l.Source,
			&l.Description, &isBillable, &deletedAtStr, &createdAtStr, &updatedAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning time log row: %w", err)
		}

		log, parseErr := r.populateLog(&l, timesheetID, projectID, taskID, contactID, startedAtStr, stoppedAtStr, deletedAtStr, createdAtStr, updatedAtStr, isBillable)
		if parseErr != nil {
			return nil, parseErr
		}

		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating time logs: %w", err)
	}
	return logs, nil
}

// populateLog fills in parsed fields on a TimeLog after scanning raw values.
func (r *SQLiteTimeLogRepo) populateLog(
	l *domain.TimeLog,
	timesheetID, projectID, taskID, contactID sql.NullString,
	startedAtStr string,
	stoppedAtStr, deletedAtStr sql.NullString,
	createdAtStr, updatedAtStr string,
	isBillable int,
) (*domain.TimeLog, error) {
	var parseErr error
	l.StartedAt, parseErr = time.Parse(time.RFC3339, startedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing started_at: %w", parseErr)
	}
	l.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	l.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}

	l.TimesheetID = timesheetID.String
	l.ProjectID = stringOrNil(projectID)
	l.TaskID = stringOrNil(taskID)
	l.OrganizationContactID = stringOrNil(contactID)
	l.StoppedAt = parseNullableTime(stoppedAtStr, time.RFC3339)
	l.DeletedAt = parseNullableTime(deletedAtStr, time.RFC3339)
	l.IsBillable = intToBool(isBillable)

	return l, nil
}

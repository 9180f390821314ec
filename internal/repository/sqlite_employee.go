package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"timecore/internal/db"
	"timecore/internal/domain"
)

// SQLiteEmployeeRepo implements EmployeeRepo over a SQLite database or
// transaction.
type SQLiteEmployeeRepo struct {
	db db.DBTX
}

// NewSQLiteEmployeeRepo creates a new SQLiteEmployeeRepo.
func NewSQLiteEmployeeRepo(dbtx db.DBTX) *SQLiteEmployeeRepo {
	return &SQLiteEmployeeRepo{db: dbtx}
}

func (r *SQLiteEmployeeRepo) Create(ctx context.Context, e *domain.Employee) error {
	query := `INSERT INTO employees (id, tenant_id, organization_id, user_id, is_tracking_enabled, is_tracking_time, is_online, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.TenantID,
		e.OrganizationID,
		e.UserID,
		boolToInt(e.IsTrackingEnabled),
		boolToInt(e.IsTrackingTime),
		boolToInt(e.IsOnline),
		e.CreatedAt.UTC().Format(time.RFC3339),
		e.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting employee: %w", err)
	}
	return nil
}

func (r *SQLiteEmployeeRepo) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	query := `SELECT id, tenant_id, organization_id, user_id, is_tracking_enabled, is_tracking_time, is_online, created_at, updated_at
		FROM employees WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	return r.scanEmployee(row)
}

func (r *SQLiteEmployeeRepo) GetByUserID(ctx context.Context, tenantID, userID string) (*domain.Employee, error) {
	query := `SELECT id, tenant_id, organization_id, user_id, is_tracking_enabled, is_tracking_time, is_online, created_at, updated_at
		FROM employees WHERE tenant_id = ? AND user_id = ?`
	row := r.db.QueryRowContext(ctx, query, tenantID, userID)
	return r.scanEmployee(row)
}

func (r *SQLiteEmployeeRepo) SetTrackingStatus(ctx context.Context, id string, online, tracking bool) error {
	query := `UPDATE employees SET is_online = ?, is_tracking_time = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		boolToInt(online), boolToInt(tracking), time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("updating employee tracking status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("employee %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteEmployeeRepo) SetTrackingEnabled(ctx context.Context, id string, enabled bool) error {
	query := `UPDATE employees SET is_tracking_enabled = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		boolToInt(enabled), time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("updating employee tracking flag: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("employee %s: %w", id, ErrNotFound)
	}
	return nil
}

// scanEmployee scans a single employee from a *sql.Row.
func (r *SQLiteEmployeeRepo) scanEmployee(row *sql.Row) (*domain.Employee, error) {
	var e domain.Employee
	var createdAtStr, updatedAtStr string
	var trackingEnabled, trackingTime, online int

	err := row.Scan(
		&e.ID, &e.TenantID, &e.OrganizationID, &e.UserID,
		&trackingEnabled, &trackingTime, &online, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("employee: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning employee: %w", err)
	}

	var parseErr error
	e.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	e.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	e.IsTrackingEnabled = intToBool(trackingEnabled)
	e.IsTrackingTime = intToBool(trackingTime)
	e.IsOnline = intToBool(online)

	return &e, nil
}

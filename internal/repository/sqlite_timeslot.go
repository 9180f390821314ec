package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"timecore/internal/db"
	"timecore/internal/domain"
)

// SQLiteTimeSlotRepo implements TimeSlotRepo over a SQLite database or
// transaction.
type SQLiteTimeSlotRepo struct {
	db db.DBTX
}

// NewSQLiteTimeSlotRepo creates a new SQLiteTimeSlotRepo.
func NewSQLiteTimeSlotRepo(dbtx db.DBTX) *SQLiteTimeSlotRepo {
	return &SQLiteTimeSlotRepo{db: dbtx}
}

func (r *SQLiteTimeSlotRepo) Create(ctx context.Context, s *domain.TimeSlot) error {
	query := `INSERT INTO time_slots (id, tenant_id, organization_id, employee_id, started_at, stopped_at, duration, keyboard, mouse, overall, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.TenantID,
		s.OrganizationID,
		s.EmployeeID,
		s.StartedAt.UTC().Format(time.RFC3339),
		s.StoppedAt.UTC().Format(time.RFC3339),
		s.Duration,
		s.Keyboard,
		s.Mouse,
		s.Overall,
		s.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting time slot: %w", err)
	}
	if len(s.TimeLogIDs) > 0 {
		if err := r.AttachLogs(ctx, s.ID, s.TimeLogIDs); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteTimeSlotRepo) GetByID(ctx context.Context, id string) (*domain.TimeSlot, error) {
	query := `SELECT id, tenant_id, organization_id, employee_id, started_at, stopped_at, duration, keyboard, mouse, overall, created_at
		FROM time_slots WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	slot, err := r.scanSlot(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadLogIDs(ctx, []*domain.TimeSlot{slot}); err != nil {
		return nil, err
	}
	return slot, nil
}

func (r *SQLiteTimeSlotRepo) ListByRange(ctx context.Context, f SlotFilter, start, end time.Time) ([]*domain.TimeSlot, error) {
	query := `SELECT id, tenant_id, organization_id, employee_id, started_at, stopped_at, duration, keyboard, mouse, overall, created_at
		FROM time_slots
		WHERE tenant_id = ? AND organization_id = ? AND employee_id = ?
		  AND started_at >= ? AND started_at < ?
		ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query,
		f.TenantID, f.OrganizationID, f.EmployeeID,
		start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("listing time slots by range: %w", err)
	}
	defer rows.Close()

	slots, err := r.scanSlots(rows)
	if err != nil {
		return nil, err
	}
	if err := r.loadLogIDs(ctx, slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *SQLiteTimeSlotRepo) ListByMinuteKeys(ctx context.Context, f SlotFilter, keys []string) ([]*domain.TimeSlot, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT id, tenant_id, organization_id, employee_id, started_at, stopped_at, duration, keyboard, mouse, overall, created_at
		FROM time_slots
		WHERE tenant_id = ? AND organization_id = ? AND employee_id = ?
		  AND strftime('%%Y-%%m-%%d %%H:%%M', started_at) IN (%s)
		ORDER BY created_at`, placeholders(len(keys)))
	args := []any{f.TenantID, f.OrganizationID, f.EmployeeID}
	args = append(args, toArgs(keys)...)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing time slots by start minutes: %w", err)
	}
	defer rows.Close()

	slots, err := r.scanSlots(rows)
	if err != nil {
		return nil, err
	}
	if err := r.loadLogIDs(ctx, slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *SQLiteTimeSlotRepo) UpdateCounters(ctx context.Context, s *domain.TimeSlot) error {
	query := `UPDATE time_slots SET duration = ?, keyboard = ?, mouse = ?, overall = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, s.Duration, s.Keyboard, s.Mouse, s.Overall, s.ID)
	if err != nil {
		return fmt.Errorf("updating time slot counters: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("time slot %s: %w", s.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteTimeSlotRepo) Rewrite(ctx context.Context, s *domain.TimeSlot) error {
	query := `UPDATE time_slots SET started_at = ?, stopped_at = ?, duration = ?, keyboard = ?, mouse = ?, overall = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		s.StartedAt.UTC().Format(time.RFC3339),
		s.StoppedAt.UTC().Format(time.RFC3339),
		s.Duration, s.Keyboard, s.Mouse, s.Overall, s.ID,
	)
	if err != nil {
		return fmt.Errorf("rewriting time slot: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("time slot %s: %w", s.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteTimeSlotRepo) AttachLogs(ctx context.Context, slotID string, logIDs []string) error {
	query := `INSERT OR IGNORE INTO time_slot_logs (time_slot_id, time_log_id) VALUES (?, ?)`
	for _, logID := range logIDs {
		if _, err := r.db.ExecContext(ctx, query, slotID, logID); err != nil {
			return fmt.Errorf("linking time log %s to slot %s: %w", logID, slotID, err)
		}
	}
	return nil
}

func (r *SQLiteTimeSlotRepo) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := fmt.Sprintf(`DELETE FROM time_slots WHERE id IN (%s)`, placeholders(len(ids)))
	if _, err := r.db.ExecContext(ctx, query, toArgs(ids)...); err != nil {
		return fmt.Errorf("deleting time slots: %w", err)
	}
	return nil
}

func (r *SQLiteTimeSlotRepo) DeleteByRange(ctx context.Context, f SlotFilter, start, end time.Time) (int64, error) {
	query := `DELETE FROM time_slots
		WHERE tenant_id = ? AND organization_id = ? AND employee_id = ?
		  AND started_at >= ? AND started_at < ?`
	res, err := r.db.ExecContext(ctx, query,
		f.TenantID, f.OrganizationID, f.EmployeeID,
		start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting time slots by range: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted time slots: %w", err)
	}
	return n, nil
}

// scanSlot scans a single slot from a *sql.Row.
func (r *SQLiteTimeSlotRepo) scanSlot(row *sql.Row) (*domain.TimeSlot, error) {
	var s domain.TimeSlot
	var startedAtStr, stoppedAtStr, createdAtStr string

	err := row.Scan(
		&s.ID, &s.TenantID, &s.OrganizationID, &s.EmployeeID,
		&startedAtStr, &stoppedAtStr, &s.Duration, &s.Keyboard, &s.Mouse, &s.Overall, &createdAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("time slot: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning time slot: %w", err)
	}

	return r.populateSlot(&s, startedAtStr, stoppedAtStr, createdAtStr)
}

// scanSlots scans multiple slots from *sql.Rows.
func (r *SQLiteTimeSlotRepo) scanSlots(rows *sql.Rows) ([]*domain.TimeSlot, error) {
	var slots []*domain.TimeSlot
	for rows.Next() {
		var s domain.TimeSlot
		var startedAtStr, stoppedAtStr, createdAtStr string

		err := rows.Scan(
			&s.ID, &s.TenantID, &s.OrganizationID, &s.EmployeeID,
			&startedAtStr, &stoppedAtStr, &s.Duration, &s.Keyboard, &s.Mouse, &s.Overall, &createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning time slot row: %w", err)
		}

		slot, parseErr := r.populateSlot(&s, startedAtStr, stoppedAtStr, createdAtStr)
		if parseErr != nil {
			return nil, parseErr
		}

		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating time slots: %w", err)
	}
	return slots, nil
}

// populateSlot fills in parsed fields on a TimeSlot after scanning raw strings.
func (r *SQLiteTimeSlotRepo) populateSlot(s *domain.TimeSlot, startedAtStr, stoppedAtStr, createdAtStr string) (*domain.TimeSlot, error) {
	var parseErr error
	s.StartedAt, parseErr = time.Parse(time.RFC3339, startedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing started_at: %w", parseErr)
	}
	s.StoppedAt, parseErr = time.Parse(time.RFC3339, stoppedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing stopped_at: %w", parseErr)
	}
	s.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	return s, nil
}

// loadLogIDs attaches linked time-log ids to the given slots in one query.
func (r *SQLiteTimeSlotRepo) loadLogIDs(ctx context.Context, slots []*domain.TimeSlot) error {
	if len(slots) == 0 {
		return nil
	}
	ids := make([]string, len(slots))
	byID := make(map[string]*domain.TimeSlot, len(slots))
	for i, s := range slots {
		ids[i] = s.ID
		byID[s.ID] = s
	}

	query := fmt.Sprintf(`SELECT time_slot_id, time_log_id FROM time_slot_logs
		WHERE time_slot_id IN (%s) ORDER BY time_log_id`, placeholders(len(ids)))
	rows, err := r.db.QueryContext(ctx, query, toArgs(ids)...)
	if err != nil {
		return fmt.Errorf("loading slot log links: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var slotID, logID string
		if err := rows.Scan(&slotID, &logID); err != nil {
			return fmt.Errorf("scanning slot log link: %w", err)
		}
		if slot, ok := byID[slotID]; ok {
			slot.TimeLogIDs = append(slot.TimeLogIDs, logID)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating slot log links: %w", err)
	}
	return nil
}

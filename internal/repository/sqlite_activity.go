package repository

import (
	"context"
	"fmt"
	"time"

	"timecore/internal/db"
	"timecore/internal/domain"
)

// SQLiteActivityRepo implements ActivityRepo over a SQLite database or
// transaction.
type SQLiteActivityRepo struct {
	db db.DBTX
}

// NewSQLiteActivityRepo creates a new SQLiteActivityRepo.
func NewSQLiteActivityRepo(dbtx db.DBTX) *SQLiteActivityRepo {
	return &SQLiteActivityRepo{db: dbtx}
}

func (r *SQLiteActivityRepo) Create(ctx context.Context, a *domain.Activity) error {
	query := `INSERT INTO activities (id, tenant_id, organization_id, time_slot_id, title, duration, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.TenantID,
		a.OrganizationID,
		a.TimeSlotID,
		a.Title,
		a.Duration,
		a.RecordedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting activity: %w", err)
	}
	return nil
}

func (r *SQLiteActivityRepo) ListBySlots(ctx context.Context, slotIDs []string) ([]*domain.Activity, error) {
	if len(slotIDs) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT id, tenant_id, organization_id, time_slot_id, title, duration, recorded_at
		FROM activities WHERE time_slot_id IN (%s) ORDER BY recorded_at`, placeholders(len(slotIDs)))
	rows, err := r.db.QueryContext(ctx, query, toArgs(slotIDs)...)
	if err != nil {
		return nil, fmt.Errorf("listing activities by slots: %w", err)
	}
	defer rows.Close()

	var acts []*domain.Activity
	for rows.Next() {
		var a domain.Activity
		var recordedAtStr string
		if err := rows.Scan(&a.ID, &a.TenantID, &a.OrganizationID, &a.TimeSlotID, &a.Title, &a.Duration, &recordedAtStr); err != nil {
			return nil, fmt.Errorf("scanning activity row: %w", err)
		}
		var parseErr error
		a.RecordedAt, parseErr = time.Parse(time.RFC3339, recordedAtStr)
		if parseErr != nil {
			return nil, fmt.Errorf("parsing recorded_at: %w", parseErr)
		}
		acts = append(acts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activities: %w", err)
	}
	return acts, nil
}

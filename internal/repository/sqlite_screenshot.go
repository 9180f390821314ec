package repository

import (
	"context"
	"fmt"
	"time"

	"timecore/internal/db"
	"timecore/internal/domain"
)

// SQLiteScreenshotRepo implements ScreenshotRepo over a SQLite database or
// transaction.
type SQLiteScreenshotRepo struct {
	db db.DBTX
}

// NewSQLiteScreenshotRepo creates a new SQLiteScreenshotRepo.
func NewSQLiteScreenshotRepo(dbtx db.DBTX) *SQLiteScreenshotRepo {
	return &SQLiteScreenshotRepo{db: dbtx}
}

func (r *SQLiteScreenshotRepo) Create(ctx context.Context, s *domain.Screenshot) error {
	query := `INSERT INTO screenshots (id, tenant_id, organization_id, time_slot_id, file_key, thumb_key, recorded_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.TenantID,
		s.OrganizationID,
		s.TimeSlotID,
		s.FileKey,
		s.ThumbKey,
		s.RecordedAt.UTC().Format(time.RFC3339),
		s.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting screenshot: %w", err)
	}
	return nil
}

func (r *SQLiteScreenshotRepo) ListBySlots(ctx context.Context, slotIDs []string) ([]*domain.Screenshot, error) {
	if len(slotIDs) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT id, tenant_id, organization_id, time_slot_id, file_key, thumb_key, recorded_at, created_at
		FROM screenshots WHERE time_slot_id IN (%s) ORDER BY recorded_at`, placeholders(len(slotIDs)))
	rows, err := r.db.QueryContext(ctx, query, toArgs(slotIDs)...)
	if err != nil {
		return nil, fmt.Errorf("listing screenshots by slots: %w", err)
	}
	defer rows.Close()

	var shots []*domain.Screenshot
	for rows.Next() {
		var s domain.Screenshot
		var recordedAtStr, createdAtStr string
		if err := rows.Scan(&s.ID, &s.TenantID, &s.OrganizationID, &s.TimeSlotID, &s.FileKey, &s.ThumbKey, &recordedAtStr, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning screenshot row: %w", err)
		}
		var parseErr error
		s.RecordedAt, parseErr = time.Parse(time.RFC3339, recordedAtStr)
		if parseErr != nil {
			return nil, fmt.Errorf("parsing recorded_at: %w", parseErr)
		}
		s.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
		if parseErr != nil {
			return nil, fmt.Errorf("parsing created_at: %w", parseErr)
		}
		shots = append(shots, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating screenshots: %w", err)
	}
	return shots, nil
}

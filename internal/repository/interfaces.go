package repository

import (
	"context"
	"time"

	"timecore/internal/domain"
)

// SlotFilter scopes time-slot reads to one employee within a tenant.
type SlotFilter struct {
	TenantID       string
	OrganizationID string
	EmployeeID     string
}

type TimeSlotRepo interface {
	Create(ctx context.Context, s *domain.TimeSlot) error
	GetByID(ctx context.Context, id string) (*domain.TimeSlot, error)
	// ListByRange returns slots whose started_at falls in [start, end),
	// ordered by creation time, with linked time-log ids loaded.
	ListByRange(ctx context.Context, f SlotFilter, start, end time.Time) ([]*domain.TimeSlot, error)
	// ListByMinuteKeys returns slots whose started_at matches any of the
	// given minute-precision keys (timeband.MinuteKey format).
	ListByMinuteKeys(ctx context.Context, f SlotFilter, keys []string) ([]*domain.TimeSlot, error)
	UpdateCounters(ctx context.Context, s *domain.TimeSlot) error
	// Rewrite replaces a slot's window and counters in place, used when a
	// merged bucket reuses the first original row as its replacement.
	Rewrite(ctx context.Context, s *domain.TimeSlot) error
	// AttachLogs links time logs to a slot, ignoring already-present pairs.
	AttachLogs(ctx context.Context, slotID string, logIDs []string) error
	DeleteByIDs(ctx context.Context, ids []string) error
	// DeleteByRange removes every slot for the filter whose started_at falls
	// in [start, end). Returns the number of rows removed.
	DeleteByRange(ctx context.Context, f SlotFilter, start, end time.Time) (int64, error)
}

type TimeLogRepo interface {
	Create(ctx context.Context, l *domain.TimeLog) error
	GetByID(ctx context.Context, id string) (*domain.TimeLog, error)
	Update(ctx context.Context, l *domain.TimeLog) error
	SoftDelete(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
	// FindRunning returns the employee's open log, or ErrNotFound.
	FindRunning(ctx context.Context, employeeID string) (*domain.TimeLog, error)
	// ListRunning returns every open log for the employee, newest first.
	ListRunning(ctx context.Context, employeeID string) ([]*domain.TimeLog, error)
	// ListConflicting returns non-deleted logs overlapping [start, end]
	// inclusively, excluding the given ids.
	ListConflicting(ctx context.Context, f SlotFilter, start, end time.Time, ignoreIDs []string) ([]*domain.TimeLog, error)
	// ListClosedInRange returns completed logs whose span touches [start, end].
	ListClosedInRange(ctx context.Context, employeeID string, start, end time.Time) ([]*domain.TimeLog, error)
	// LatestInRange returns the most recent log (open or closed) that
	// touches [start, end], or ErrNotFound.
	LatestInRange(ctx context.Context, employeeID string, start, end time.Time) (*domain.TimeLog, error)
	ListByTimesheet(ctx context.Context, timesheetID string) ([]*domain.TimeLog, error)
	ListBySlot(ctx context.Context, slotID string) ([]*domain.TimeLog, error)
}

type TimesheetRepo interface {
	Create(ctx context.Context, t *domain.Timesheet) error
	GetByID(ctx context.Context, id string) (*domain.Timesheet, error)
	// FindByWeekStart returns the employee's sheet keyed by the given week
	// start, or ErrNotFound.
	FindByWeekStart(ctx context.Context, employeeID string, weekStart time.Time) (*domain.Timesheet, error)
	Update(ctx context.Context, t *domain.Timesheet) error
}

type ScreenshotRepo interface {
	Create(ctx context.Context, s *domain.Screenshot) error
	ListBySlots(ctx context.Context, slotIDs []string) ([]*domain.Screenshot, error)
}

type ActivityRepo interface {
	Create(ctx context.Context, a *domain.Activity) error
	ListBySlots(ctx context.Context, slotIDs []string) ([]*domain.Activity, error)
}

type EmployeeRepo interface {
	Create(ctx context.Context, e *domain.Employee) error
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
	GetByUserID(ctx context.Context, tenantID, userID string) (*domain.Employee, error)
	// SetTrackingStatus flips the online/tracking flags when a timer starts
	// or stops.
	SetTrackingStatus(ctx context.Context, id string, online, tracking bool) error
	// SetTrackingEnabled switches time tracking on or off for the employee.
	SetTrackingEnabled(ctx context.Context, id string, enabled bool) error
}

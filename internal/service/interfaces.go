package service

import (
	"context"
	"time"

	"timecore/internal/domain"
)

// TimerStatus is the employee's current tracking state: whether a session is
// open, today's accumulated seconds, and the most recent log.
type TimerStatus struct {
	Running  bool
	Duration int
	LastLog  *domain.TimeLog
}

// ToggleRequest carries the optional fields a client may attach when
// starting a session. All fields are ignored on the stop transition.
type ToggleRequest struct {
	ProjectID             *string
	TaskID                *string
	OrganizationContactID *string
	Description           string
	LogType               domain.TimeLogType
	Source                domain.TimeLogSource
	IsBillable            bool
}

// SlotInput is a raw slot as pushed by a client agent.
type SlotInput struct {
	EmployeeID     string
	OrganizationID string
	StartedAt      time.Time
	StoppedAt      time.Time
	Duration       int
	Keyboard       int
	Mouse          int
	Overall        int
	TimeLogIDs     []string
	Screenshots    []*domain.Screenshot
	Activities     []*domain.Activity
}

// SlotUpdate is a partial update for one slot; nil fields are left alone.
type SlotUpdate struct {
	Keyboard *int
	Mouse    *int
	Overall  *int
	Duration *int
}

type TimeSlotService interface {
	Create(ctx context.Context, scope domain.Scope, in SlotInput) (*domain.TimeSlot, error)
	Update(ctx context.Context, id string, in SlotUpdate) (*domain.TimeSlot, error)
	// BulkCreate persists non-colliding slots and drops incoming slots whose
	// start minute matches an existing row (existing wins). Idempotent.
	BulkCreate(ctx context.Context, scope domain.Scope, batch []SlotInput) ([]*domain.TimeSlot, error)
	// BulkCreateOrUpdate sums counters into colliding slots and unions their
	// time-log links; non-colliding slots pass through as in BulkCreate.
	BulkCreateOrUpdate(ctx context.Context, scope domain.Scope, batch []SlotInput) ([]*domain.TimeSlot, error)
	// Merge collapses all slots in the rounded range into one slot per
	// 10-minute bucket. Buckets are processed concurrently and
	// independently; the report counts failures instead of aborting.
	Merge(ctx context.Context, scope domain.Scope, start, end time.Time) (*MergeReport, error)
	// Delete removes slots by id, first truncating or splitting any time
	// log that depended on each slot's window.
	Delete(ctx context.Context, scope domain.Scope, ids []string) error
	// RangeDelete purges every slot whose start falls in the rounded
	// window. No conflict checking.
	RangeDelete(ctx context.Context, scope domain.Scope, start, stop time.Time) (bool, error)
}

type TimeLogService interface {
	// FindConflicts returns non-deleted logs overlapping [start, end]
	// inclusively, excluding ignoreIDs. Empty result is a valid outcome.
	FindConflicts(ctx context.Context, scope domain.Scope, start, end time.Time, ignoreIDs []string) ([]*domain.TimeLog, error)
	// DeleteTimeSpan removes [start, end] from the given log: deleting,
	// shortening or splitting it depending on how the window overlaps.
	DeleteTimeSpan(ctx context.Context, scope domain.Scope, start, end time.Time, logID string) error
}

type TimesheetService interface {
	// FindOrCreate resolves the employee's sheet for the ISO week
	// containing at, creating it when absent.
	FindOrCreate(ctx context.Context, scope domain.Scope, at time.Time) (*domain.Timesheet, error)
	// Recalculate recomputes the sheet's rolled-up duration and activity
	// counters from its logs and their slots.
	Recalculate(ctx context.Context, timesheetID string) error
	Submit(ctx context.Context, scope domain.Scope, timesheetID string) (*domain.Timesheet, error)
	Approve(ctx context.Context, scope domain.Scope, timesheetID string) (*domain.Timesheet, error)
}

type TimerService interface {
	Status(ctx context.Context, scope domain.Scope) (*TimerStatus, error)
	// Toggle starts a session when none is open and stops the open one
	// otherwise, behaving as if under a per-employee lock.
	Toggle(ctx context.Context, scope domain.Scope, req ToggleRequest) (*domain.TimeLog, error)
}

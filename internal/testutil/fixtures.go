package testutil

import (
	"time"

	"timecore/internal/domain"

	"github.com/google/uuid"
)

// TestTenant and TestOrg are the default scope identifiers used by fixtures.
const (
	TestTenant = "tenant-1"
	TestOrg    = "org-1"
)

// NewTestScope builds a scope for the given employee with all permissions.
func NewTestScope(employeeID string) domain.Scope {
	return domain.Scope{
		TenantID:       TestTenant,
		OrganizationID: TestOrg,
		EmployeeID:     employeeID,
		HasPermission:  func(domain.Permission) bool { return true },
	}
}

// NewDeniedScope builds a scope for the given employee with no permissions.
func NewDeniedScope(employeeID string) domain.Scope {
	return domain.Scope{
		TenantID:       TestTenant,
		OrganizationID: TestOrg,
		EmployeeID:     employeeID,
		HasPermission:  func(domain.Permission) bool { return false },
	}
}

// Employee options
type EmployeeOption func(*domain.Employee)

func WithTrackingEnabled(enabled bool) EmployeeOption {
	return func(e *domain.Employee) {
		e.IsTrackingEnabled = enabled
	}
}

func WithUserID(id string) EmployeeOption {
	return func(e *domain.Employee) {
		e.UserID = id
	}
}

func NewTestEmployee(opts ...EmployeeOption) *domain.Employee {
	now := time.Now().UTC()
	e := &domain.Employee{
		ID:                uuid.New().String(),
		TenantID:          TestTenant,
		OrganizationID:    TestOrg,
		UserID:            uuid.New().String(),
		IsTrackingEnabled: true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TimeLog options
type LogOption func(*domain.TimeLog)

func WithLogType(t domain.TimeLogType) LogOption {
	return func(l *domain.TimeLog) {
		l.LogType = t
	}
}

func WithSource(s domain.TimeLogSource) LogOption {
	return func(l *domain.TimeLog) {
		l.Source = s
	}
}

func WithTimesheetID(id string) LogOption {
	return func(l *domain.TimeLog) {
		l.TimesheetID = id
	}
}

func WithProjectID(id string) LogOption {
	return func(l *domain.TimeLog) {
		l.ProjectID = &id
	}
}

// Running leaves the log open (no stop time, zero duration).
func Running() LogOption {
	return func(l *domain.TimeLog) {
		l.StoppedAt = nil
		l.Duration = 0
	}
}

// NewTestLog builds a closed log covering [started, stopped].
func NewTestLog(employeeID string, started, stopped time.Time, opts ...LogOption) *domain.TimeLog {
	now := time.Now().UTC()
	stop := stopped.UTC()
	l := &domain.TimeLog{
		ID:             uuid.New().String(),
		TenantID:       TestTenant,
		OrganizationID: TestOrg,
		EmployeeID:     employeeID,
		StartedAt:      started.UTC(),
		StoppedAt:      &stop,
		Duration:       int(stop.Sub(started.UTC()) / time.Second),
		LogType:        domain.LogTracked,
		Source:         domain.SourceWebTimer,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// TimeSlot options
type SlotOption func(*domain.TimeSlot)

func WithCounters(keyboard, mouse, overall int) SlotOption {
	return func(s *domain.TimeSlot) {
		s.Keyboard = keyboard
		s.Mouse = mouse
		s.Overall = overall
	}
}

func WithSlotDuration(seconds int) SlotOption {
	return func(s *domain.TimeSlot) {
		s.Duration = seconds
		s.StoppedAt = s.StartedAt.Add(time.Duration(seconds) * time.Second)
	}
}

func WithSlotLogIDs(ids ...string) SlotOption {
	return func(s *domain.TimeSlot) {
		s.TimeLogIDs = ids
	}
}

// NewTestSlot builds a full-length slot starting at started.
func NewTestSlot(employeeID string, started time.Time, opts ...SlotOption) *domain.TimeSlot {
	s := &domain.TimeSlot{
		ID:             uuid.New().String(),
		TenantID:       TestTenant,
		OrganizationID: TestOrg,
		EmployeeID:     employeeID,
		StartedAt:      started.UTC(),
		StoppedAt:      started.UTC().Add(10 * time.Minute),
		Duration:       600,
		CreatedAt:      time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewTestTimesheet builds a pending sheet for the week containing at.
func NewTestTimesheet(employeeID string, weekStart, weekEnd time.Time) *domain.Timesheet {
	now := time.Now().UTC()
	return &domain.Timesheet{
		ID:             uuid.New().String(),
		TenantID:       TestTenant,
		OrganizationID: TestOrg,
		EmployeeID:     employeeID,
		StartedAt:      weekStart.UTC(),
		StoppedAt:      weekEnd.UTC(),
		Status:         domain.TimesheetPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

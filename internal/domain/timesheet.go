package domain

import "time"

// Timesheet is the weekly aggregate container for an employee. Exactly one
// sheet exists per (employee, week start); rollup fields are recomputed from
// the owned logs and slots.
type Timesheet struct {
	ID             string
	TenantID       string
	OrganizationID string
	EmployeeID     string
	StartedAt      time.Time
	StoppedAt      time.Time
	Duration       int
	Keyboard       int
	Mouse          int
	Overall        int
	Status         TimesheetStatus
	SubmittedAt    *time.Time
	ApprovedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

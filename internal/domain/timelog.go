package domain

import "time"

// TimeLog is a tracked or manually entered work session. StoppedAt is nil
// while the session is running; at most one running log may exist per
// employee at any time.
type TimeLog struct {
	ID                    string
	TenantID              string
	OrganizationID        string
	EmployeeID            string
	TimesheetID           string
	ProjectID             *string
	TaskID                *string
	OrganizationContactID *string
	StartedAt             time.Time
	StoppedAt             *time.Time
	Duration              int
	LogType               TimeLogType
	Source                TimeLogSource
	Description           string
	IsBillable            bool
	DeletedAt             *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// IsRunning reports whether the session is still open.
func (l *TimeLog) IsRunning() bool {
	return l.StoppedAt == nil
}

// End returns the effective end of the session. A running log ends "now"
// from the caller's point of view, so callers pass their clock reading.
func (l *TimeLog) End(now time.Time) time.Time {
	if l.StoppedAt != nil {
		return *l.StoppedAt
	}
	return now
}

// Overlaps reports whether the log's [StartedAt, StoppedAt] range overlaps
// [start, end] using the inclusive interval test.
func (l *TimeLog) Overlaps(start, end, now time.Time) bool {
	return !l.StartedAt.After(end) && !l.End(now).Before(start)
}

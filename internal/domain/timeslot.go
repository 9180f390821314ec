package domain

import "time"

// TimeSlot is a fixed-width activity bucket for one employee. StartedAt is
// truncated to whole seconds and aligned to the 10-minute grid by the
// aggregation pipeline; Duration never exceeds 600 seconds.
type TimeSlot struct {
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
	TimeLogIDs     []string
	Screenshots    []*Screenshot
	Activities     []*Activity
	CreatedAt      time.Time
}

// Screenshot is an image capture linked to a single time slot.
type Screenshot struct {
	ID             string
	TenantID       string
	OrganizationID string
	TimeSlotID     string
	FileKey        string
	ThumbKey       string
	RecordedAt     time.Time
	CreatedAt      time.Time
}

// Activity is an application or site usage record within a slot.
type Activity struct {
	ID             string
	TenantID       string
	OrganizationID string
	TimeSlotID     string
	Title          string
	Duration       int
	RecordedAt     time.Time
}

// HasTimeLog reports whether the slot already references the given log.
func (s *TimeSlot) HasTimeLog(logID string) bool {
	for _, id := range s.TimeLogIDs {
		if id == logID {
			return true
		}
	}
	return false
}

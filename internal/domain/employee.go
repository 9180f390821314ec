package domain

import "time"

// Employee is the minimal projection of the HR employee record this module
// needs: identity, organization linkage and tracking flags.
type Employee struct {
	ID                string
	TenantID          string
	OrganizationID    string
	UserID            string
	IsTrackingEnabled bool
	IsTrackingTime    bool
	IsOnline          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

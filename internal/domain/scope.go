package domain

// Scope carries the caller's tenant context through every core operation.
// It replaces any ambient request-context lookup: services receive it as an
// explicit parameter and never consult globals.
type Scope struct {
	TenantID       string
	OrganizationID string
	EmployeeID     string

	// HasPermission resolves a permission check against the caller's
	// identity. Nil means no permissions granted.
	HasPermission func(Permission) bool
}

// Permitted reports whether the scope grants the given permission.
func (s Scope) Permitted(p Permission) bool {
	return s.HasPermission != nil && s.HasPermission(p)
}

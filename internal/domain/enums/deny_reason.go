package enums

// DenyReason explains a rejected route-group entry.
type DenyReason string

const (
	DenyNotAuthenticated DenyReason = "NOT_AUTHENTICATED"
	DenyRoleMismatch     DenyReason = "ROLE_MISMATCH"
)

package enums

// Role is the canonical access level an actor can hold. Raw role claims
// from the backends and from legacy storage come in several shapes and
// are folded into this closed set by the roles service.
type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleProjectLead Role = "PROJECT_LEAD"
	RoleContributor Role = "CONTRIBUTOR"
	RoleClient      Role = "CLIENT"
	RoleNone        Role = "NONE"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProjectLead, RoleContributor, RoleClient:
		return true
	default:
		return false
	}
}

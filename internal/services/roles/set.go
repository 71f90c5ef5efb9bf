package roles

import (
	"github.com/maniyoussef/ticketflow/internal/domain/enums"
	"github.com/maniyoussef/ticketflow/internal/domain/model"
)

// Set is a materialized canonical role set.
type Set map[enums.Role]struct{}

// NormalizeSet folds every claim that resolves; unresolved claims are
// dropped, they carry no authority.
func NormalizeSet(claims []model.RoleClaim) Set {
	set := make(Set, len(claims))
	for _, claim := range claims {
		if role, ok := Normalize(claim); ok {
			set[role] = struct{}{}
		}
	}
	return set
}

func (s Set) Has(role enums.Role) bool {
	_, ok := s[role]
	return ok
}

// List returns the set in a fixed display order.
func (s Set) List() []enums.Role {
	order := []enums.Role{
		enums.RoleAdmin,
		enums.RoleProjectLead,
		enums.RoleContributor,
		enums.RoleClient,
	}
	out := make([]enums.Role, 0, len(s))
	for _, role := range order {
		if s.Has(role) {
			out = append(out, role)
		}
	}
	return out
}

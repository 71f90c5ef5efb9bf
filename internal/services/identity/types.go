package identity

import (
	"errors"

	"github.com/maniyoussef/ticketflow/internal/domain/enums"
	"github.com/maniyoussef/ticketflow/internal/services/roles"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoIdentity means the whole fallback chain came up empty.
	ErrNoIdentity = errors.New("no usable identity")
	// ErrRefreshFailed marks an exhausted token-refresh exchange.
	ErrRefreshFailed = errors.New("token refresh failed")
)

// Source tags which fallback level satisfied a resolution. Kept on the
// result and in logs so stale-cache bugs stay diagnosable.
type Source string

const (
	SourceMemory    Source = "memory"
	SourceStore     Source = "store"
	SourceRefresh   Source = "refresh"
	SourceFragments Source = "fragments"
	SourceAbsent    Source = "absent"
)

// ResolvedIdentity is the read model every caller consumes: the actor, a
// materialized canonical role set (unresolved claims already dropped) and
// whether the access token is currently valid. A fragments-sourced
// identity always has TokenValid false and must never authorize a
// protected operation.
type ResolvedIdentity struct {
	ActorID     int64
	DisplayName string
	Roles       roles.Set
	TokenValid  bool
	Source      Source
}

func (r ResolvedIdentity) HasRole(role enums.Role) bool {
	return r.Roles.Has(role)
}

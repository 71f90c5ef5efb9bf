package model

import (
	"strings"
	"time"
)

// ActorSession is the authenticated actor's session snapshot. The same
// shape lives in the in-memory slot of the identity resolver and in the
// persisted store; an expired-but-present session is distinguishable from
// an absent one.
type ActorSession struct {
	ActorID      int64       `json:"actor_id"`
	DisplayName  string      `json:"display_name"`
	RoleClaims   []RoleClaim `json:"role_claims,omitempty"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token,omitempty"`
	TokenExpiry  time.Time   `json:"token_expiry"`
}

// Valid reports whether the session carries a usable token at the given
// instant: token present and expiry strictly in the future.
func (s ActorSession) Valid(at time.Time) bool {
	return strings.TrimSpace(s.AccessToken) != "" && s.TokenExpiry.After(at)
}

func (s ActorSession) Empty() bool {
	return s.ActorID == 0 && strings.TrimSpace(s.AccessToken) == ""
}

// Package access decides whether the current actor may enter a protected
// route group. The decision is total and side-effect-free: the one
// identity resolution happens up front and nothing here mutates session
// state.
package access

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/maniyoussef/ticketflow/internal/domain/enums"
	"github.com/maniyoussef/ticketflow/internal/infra/metrics"
	identitysvc "github.com/maniyoussef/ticketflow/internal/services/identity"
)

// routeRoles maps each route group to its single required role.
var routeRoles = map[enums.RouteGroup]enums.Role{
	enums.RouteGroupAdmin:       enums.RoleAdmin,
	enums.RouteGroupProjectLead: enums.RoleProjectLead,
	enums.RouteGroupContributor: enums.RoleContributor,
	enums.RouteGroupClient:      enums.RoleClient,
}

// Resolver is the slice of the identity service this engine needs.
type Resolver interface {
	Resolve(ctx context.Context) (identitysvc.ResolvedIdentity, error)
}

// Decision is the typed result of one CanEnter call. Roles carries the
// resolved set on denial for diagnostic surfacing.
type Decision struct {
	Allowed bool
	Reason  enums.DenyReason
	Group   enums.RouteGroup
	ActorID int64
	Roles   []enums.Role
}

type Service struct {
	resolver Resolver
	logger   *zap.Logger
}

func NewService(resolver Resolver, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		resolver: resolver,
		logger:   logger,
	}
}

// RequiredRole returns the role a group demands.
func RequiredRole(group enums.RouteGroup) (enums.Role, bool) {
	role, ok := routeRoles[group]
	return role, ok
}

// CanEnter resolves the identity once and checks it against the group's
// required role. Legacy "USER"-labelled claims already normalize to
// CLIENT upstream, so CLIENT_AREA admits them with no special case here.
func (s *Service) CanEnter(ctx context.Context, group enums.RouteGroup) Decision {
	decision := Decision{Group: group}

	resolved, err := s.resolver.Resolve(ctx)
	if err != nil || !resolved.TokenValid {
		if err != nil && !errors.Is(err, identitysvc.ErrNoIdentity) {
			s.logger.Warn("identity resolution failed", zap.Error(err))
		}
		decision.Reason = enums.DenyNotAuthenticated
		s.count(group, false)
		return decision
	}

	decision.ActorID = resolved.ActorID
	decision.Roles = resolved.Roles.List()

	requiredRole, ok := RequiredRole(group)
	if !ok || !resolved.HasRole(requiredRole) {
		decision.Reason = enums.DenyRoleMismatch
		s.count(group, false)
		s.logger.Debug("route group denied",
			zap.String("group", string(group)),
			zap.Int64("actor_id", resolved.ActorID),
		)
		return decision
	}

	decision.Allowed = true
	s.count(group, true)
	return decision
}

func (s *Service) count(group enums.RouteGroup, allowed bool) {
	result := "deny"
	if allowed {
		result = "admit"
	}
	metrics.AccessDecisionsTotal.WithLabelValues(string(group), result).Inc()
}

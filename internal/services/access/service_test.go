package access

import (
	"context"
	"testing"

	"github.com/maniyoussef/ticketflow/internal/domain/enums"
	"github.com/maniyoussef/ticketflow/internal/domain/model"
	identitysvc "github.com/maniyoussef/ticketflow/internal/services/identity"
	"github.com/maniyoussef/ticketflow/internal/services/roles"
)

type fakeResolver struct {
	identity identitysvc.ResolvedIdentity
	err      error
	calls    int
}

func (f *fakeResolver) Resolve(_ context.Context) (identitysvc.ResolvedIdentity, error) {
	f.calls++
	return f.identity, f.err
}

func resolverWithClaims(claims ...model.RoleClaim) *fakeResolver {
	return &fakeResolver{identity: identitysvc.ResolvedIdentity{
		ActorID:    7,
		Roles:      roles.NormalizeSet(claims),
		TokenValid: true,
		Source:     identitysvc.SourceMemory,
	}}
}

func TestCanEnterChefProjetScenario(t *testing.T) {
	resolver := resolverWithClaims(model.RoleClaim{ID: 3, Name: "Chef Projet"})
	svc := NewService(resolver, nil)
	ctx := context.Background()

	if d := svc.CanEnter(ctx, enums.RouteGroupProjectLead); !d.Allowed {
		t.Fatalf("expected admit for project lead area, got %+v", d)
	}

	d := svc.CanEnter(ctx, enums.RouteGroupAdmin)
	if d.Allowed || d.Reason != enums.DenyRoleMismatch {
		t.Fatalf("expected ROLE_MISMATCH deny for admin area, got %+v", d)
	}
	if len(d.Roles) != 1 || d.Roles[0] != enums.RoleProjectLead {
		t.Fatalf("deny should carry the resolved roles, got %v", d.Roles)
	}
}

func TestCanEnterTotality(t *testing.T) {
	groups := []enums.RouteGroup{
		enums.RouteGroupAdmin,
		enums.RouteGroupProjectLead,
		enums.RouteGroupContributor,
		enums.RouteGroupClient,
	}
	roleSets := [][]model.RoleClaim{
		nil,
		{model.ClaimFromName("ADMIN")},
		{model.ClaimFromName("PROJECT_LEAD")},
		{model.ClaimFromName("CONTRIBUTOR")},
		{model.ClaimFromName("CLIENT")},
		{model.ClaimFromName("ADMIN"), model.ClaimFromName("CLIENT")},
		{model.ClaimFromName("garbage")},
	}

	for _, group := range groups {
		requiredRole, ok := RequiredRole(group)
		if !ok {
			t.Fatalf("no required role for %s", group)
		}
		for _, claims := range roleSets {
			svc := NewService(resolverWithClaims(claims...), nil)
			d := svc.CanEnter(context.Background(), group)

			wantAdmit := roles.NormalizeSet(claims).Has(requiredRole)
			if d.Allowed != wantAdmit {
				t.Fatalf("CanEnter(%s) with claims %v: got allowed=%v want %v", group, claims, d.Allowed, wantAdmit)
			}
			if !d.Allowed && d.Reason != enums.DenyRoleMismatch {
				t.Fatalf("CanEnter(%s): unexpected reason %s", group, d.Reason)
			}
		}
	}
}

func TestClientAreaAdmitsLegacyUserLabel(t *testing.T) {
	svc := NewService(resolverWithClaims(model.ClaimFromName("USER")), nil)

	if d := svc.CanEnter(context.Background(), enums.RouteGroupClient); !d.Allowed {
		t.Fatalf("legacy USER label should admit into CLIENT_AREA, got %+v", d)
	}
}

func TestCanEnterDeniesWithoutIdentity(t *testing.T) {
	resolver := &fakeResolver{err: identitysvc.ErrNoIdentity}
	svc := NewService(resolver, nil)

	for _, group := range []enums.RouteGroup{
		enums.RouteGroupAdmin,
		enums.RouteGroupProjectLead,
		enums.RouteGroupContributor,
		enums.RouteGroupClient,
	} {
		d := svc.CanEnter(context.Background(), group)
		if d.Allowed || d.Reason != enums.DenyNotAuthenticated {
			t.Fatalf("CanEnter(%s) without identity: got %+v", group, d)
		}
	}
}

func TestCanEnterDeniesTokenlessFragmentIdentity(t *testing.T) {
	resolver := &fakeResolver{identity: identitysvc.ResolvedIdentity{
		ActorID:    7,
		Roles:      roles.NormalizeSet([]model.RoleClaim{model.ClaimFromName("ADMIN")}),
		TokenValid: false,
		Source:     identitysvc.SourceFragments,
	}}
	svc := NewService(resolver, nil)

	d := svc.CanEnter(context.Background(), enums.RouteGroupAdmin)
	if d.Allowed || d.Reason != enums.DenyNotAuthenticated {
		t.Fatalf("fragment identity must never authorize, got %+v", d)
	}
}

func TestCanEnterResolvesExactlyOnce(t *testing.T) {
	resolver := resolverWithClaims(model.ClaimFromName("ADMIN"))
	svc := NewService(resolver, nil)

	svc.CanEnter(context.Background(), enums.RouteGroupAdmin)
	if resolver.calls != 1 {
		t.Fatalf("expected exactly one resolver call, got %d", resolver.calls)
	}
}

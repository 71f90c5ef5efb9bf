// Package identity resolves who the current actor is from sources of
// decreasing trust: the in-memory session, the persisted snapshot, a
// token-refresh exchange, and finally the legacy persisted fragments.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/maniyoussef/ticketflow/internal/domain/model"
	"github.com/maniyoussef/ticketflow/internal/infra/metrics"
	redrepo "github.com/maniyoussef/ticketflow/internal/repo/redis"
	"github.com/maniyoussef/ticketflow/internal/services/roles"
)

// Store is the persisted session surface. All identity mutations go
// through this service so the merge invariants stay centrally enforced.
type Store interface {
	GetSession(ctx context.Context) (model.ActorSession, error)
	PutSession(ctx context.Context, session model.ActorSession) error
	Legacy(ctx context.Context) (redrepo.LegacyFragments, error)
	PutLegacy(ctx context.Context, fragments redrepo.LegacyFragments) error
	Clear(ctx context.Context) error
}

// AuthBackend is the external authentication collaborator.
type AuthBackend interface {
	Login(ctx context.Context, credentials Credentials) (Grant, error)
	Refresh(ctx context.Context, refreshToken string) (Grant, error)
}

type Credentials struct {
	Email    string
	Password string
}

// Grant is a token issuance from the auth backend.
type Grant struct {
	AccessToken      string
	RefreshToken     string
	ExpiresInSeconds int64
	ActorID          int64
	DisplayName      string
	RoleClaims       []model.RoleClaim
}

// ErrBackendUnauthorized is what AuthBackend implementations return for a
// rejected credential or refresh token.
var ErrBackendUnauthorized = errors.New("backend unauthorized")

type Service struct {
	store          Store
	backend        AuthBackend
	refreshTimeout time.Duration
	logger         *zap.Logger
	now            func() time.Time

	mu         sync.Mutex
	session    model.ActorSession
	hasSession bool
}

func NewService(store Store, backend AuthBackend, refreshTimeout time.Duration, logger *zap.Logger) *Service {
	if refreshTimeout <= 0 {
		refreshTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		store:          store,
		backend:        backend,
		refreshTimeout: refreshTimeout,
		logger:         logger,
		now:            time.Now,
	}
}

// Login exchanges credentials for a session, installs it in the memory
// slot and writes both the snapshot and the legacy fragment keys.
func (s *Service) Login(ctx context.Context, credentials Credentials) (ResolvedIdentity, error) {
	if strings.TrimSpace(credentials.Email) == "" || credentials.Password == "" {
		return ResolvedIdentity{}, ErrInvalidInput
	}
	if s.backend == nil {
		return ResolvedIdentity{}, fmt.Errorf("auth backend is nil")
	}

	grant, err := s.backend.Login(ctx, credentials)
	if err != nil {
		if errors.Is(err, ErrBackendUnauthorized) {
			return ResolvedIdentity{}, ErrBackendUnauthorized
		}
		return ResolvedIdentity{}, fmt.Errorf("login exchange: %w", err)
	}

	session := s.sessionFromGrant(grant, model.ActorSession{})

	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = session
	s.hasSession = true
	s.persistSession(ctx, session)

	return s.materialize(session, SourceMemory, true), nil
}

// Logout clears the memory slot and everything persisted.
func (s *Service) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = model.ActorSession{}
	s.hasSession = false

	if s.store == nil {
		return nil
	}
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear persisted session: %w", err)
	}
	return nil
}

// Resolve walks the fallback chain and returns the first usable identity.
// It is idempotent: with no external state change, repeated calls return
// the same (or a promoted, never a weaker) result. The internal lock also
// guarantees no caller observes a session mid-refresh.
func (s *Service) Resolve(ctx context.Context) (ResolvedIdentity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	// 1. in-memory session with a live token
	if s.hasSession && s.tokenValid(s.session, now) {
		return s.resolved(s.session, SourceMemory, true), nil
	}

	// 2. persisted snapshot, promoted into the memory slot when live
	persisted, persistedErr := s.loadPersisted(ctx)
	if persistedErr == nil && s.tokenValid(persisted, now) {
		s.session = persisted
		s.hasSession = true
		return s.resolved(persisted, SourceStore, true), nil
	}

	// 3. expired-but-present snapshot: attempt a refresh exchange
	expired := model.ActorSession{}
	if s.hasSession && !s.session.Empty() {
		expired = s.session
	} else if persistedErr == nil {
		expired = persisted
	}
	if !expired.Empty() && strings.TrimSpace(expired.RefreshToken) != "" && s.backend != nil {
		refreshed, err := s.refresh(ctx, expired)
		if err == nil {
			s.session = refreshed
			s.hasSession = true
			s.persistSession(ctx, refreshed)
			return s.resolved(refreshed, SourceRefresh, true), nil
		}
		if errors.Is(err, ErrBackendUnauthorized) {
			// irrecoverable: destroy the session everywhere
			s.session = model.ActorSession{}
			s.hasSession = false
			if s.store != nil {
				if clearErr := s.store.Clear(ctx); clearErr != nil {
					s.logger.Warn("clear session after refresh rejection", zap.Error(clearErr))
				}
			}
		} else {
			s.logger.Warn("token refresh failed, falling through", zap.Error(err))
		}
	}

	// 4. legacy fragments: a tokenless identity for soft decisions only
	if identity, ok := s.fromFragments(ctx); ok {
		return identity, nil
	}

	metrics.IdentityResolutionsTotal.WithLabelValues(string(SourceAbsent)).Inc()
	s.logger.Debug("identity resolution exhausted", zap.String("source", string(SourceAbsent)))
	return ResolvedIdentity{Source: SourceAbsent}, ErrNoIdentity
}

func (s *Service) loadPersisted(ctx context.Context) (model.ActorSession, error) {
	if s.store == nil {
		return model.ActorSession{}, redrepo.ErrNotFound
	}
	session, err := s.store.GetSession(ctx)
	if err != nil {
		// a failing store degrades to "absent", never to a crash
		if !errors.Is(err, redrepo.ErrNotFound) {
			s.logger.Warn("read persisted session", zap.Error(err))
		}
		return model.ActorSession{}, redrepo.ErrNotFound
	}
	return session, nil
}

func (s *Service) refresh(ctx context.Context, expired model.ActorSession) (model.ActorSession, error) {
	refreshCtx, cancel := context.WithTimeout(ctx, s.refreshTimeout)
	defer cancel()

	grant, err := s.backend.Refresh(refreshCtx, expired.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrBackendUnauthorized) {
			return model.ActorSession{}, ErrBackendUnauthorized
		}
		return model.ActorSession{}, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}

	return s.sessionFromGrant(grant, expired), nil
}

// sessionFromGrant builds a session record from a token grant, keeping
// actor fields from the previous session when the grant omits them (a
// refresh response carries only tokens).
func (s *Service) sessionFromGrant(grant Grant, previous model.ActorSession) model.ActorSession {
	session := model.ActorSession{
		ActorID:      grant.ActorID,
		DisplayName:  grant.DisplayName,
		RoleClaims:   grant.RoleClaims,
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		TokenExpiry:  s.now().Add(time.Duration(grant.ExpiresInSeconds) * time.Second),
	}
	if session.ActorID == 0 {
		session.ActorID = previous.ActorID
	}
	if session.DisplayName == "" {
		session.DisplayName = previous.DisplayName
	}
	if len(session.RoleClaims) == 0 {
		session.RoleClaims = previous.RoleClaims
	}
	return session
}

func (s *Service) persistSession(ctx context.Context, session model.ActorSession) {
	if s.store == nil {
		return
	}
	if err := s.store.PutSession(ctx, session); err != nil {
		s.logger.Warn("persist session snapshot", zap.Error(err))
	}
	if err := s.store.PutLegacy(ctx, legacyFromSession(session)); err != nil {
		s.logger.Warn("persist legacy fragments", zap.Error(err))
	}
}

func legacyFromSession(session model.ActorSession) redrepo.LegacyFragments {
	fragments := redrepo.LegacyFragments{}
	for _, claim := range session.RoleClaims {
		if fragments.RoleName == "" && strings.TrimSpace(claim.Name) != "" {
			fragments.RoleName = claim.Name
		}
		if !fragments.HasRoleID && claim.ID > 0 {
			fragments.RoleID = claim.ID
			fragments.HasRoleID = true
		}
	}

	blob, err := json.Marshal(struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}{ID: session.ActorID, Name: session.DisplayName})
	if err == nil {
		fragments.ActorBlob = blob
	}
	return fragments
}

// fromFragments reconstructs a minimal identity from the legacy keys.
func (s *Service) fromFragments(ctx context.Context) (ResolvedIdentity, bool) {
	if s.store == nil {
		return ResolvedIdentity{}, false
	}
	fragments, err := s.store.Legacy(ctx)
	if err != nil {
		if !errors.Is(err, redrepo.ErrNotFound) {
			s.logger.Warn("read legacy fragments", zap.Error(err))
		}
		return ResolvedIdentity{}, false
	}

	var claims []model.RoleClaim
	if strings.TrimSpace(fragments.RoleName) != "" {
		claims = append(claims, model.ClaimFromName(fragments.RoleName))
	}
	if fragments.HasRoleID {
		claims = append(claims, model.ClaimFromCode(fragments.RoleID))
	}

	identity := ResolvedIdentity{
		Roles:      roles.NormalizeSet(claims),
		TokenValid: false,
		Source:     SourceFragments,
	}

	if len(fragments.ActorBlob) > 0 {
		var actor struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		}
		if err := json.Unmarshal(fragments.ActorBlob, &actor); err == nil {
			identity.ActorID = actor.ID
			identity.DisplayName = actor.Name
		}
	}

	if identity.ActorID == 0 && len(identity.Roles) == 0 {
		return ResolvedIdentity{}, false
	}

	metrics.IdentityResolutionsTotal.WithLabelValues(string(SourceFragments)).Inc()
	s.logger.Debug("identity resolved", zap.String("source", string(SourceFragments)))
	return identity, true
}

// tokenValid applies the session's recorded expiry, tightened by the JWT
// exp claim when the access token parses as one. The signature is not
// checked here: the auth backend signed it, this service only reads it.
func (s *Service) tokenValid(session model.ActorSession, now time.Time) bool {
	if !session.Valid(now) {
		return false
	}
	if exp, ok := jwtExpiry(session.AccessToken); ok && !exp.After(now) {
		return false
	}
	return true
}

func jwtExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func (s *Service) resolved(session model.ActorSession, source Source, tokenValid bool) ResolvedIdentity {
	metrics.IdentityResolutionsTotal.WithLabelValues(string(source)).Inc()
	s.logger.Debug("identity resolved",
		zap.String("source", string(source)),
		zap.Int64("actor_id", session.ActorID),
	)
	return s.materialize(session, source, tokenValid)
}

func (s *Service) materialize(session model.ActorSession, source Source, tokenValid bool) ResolvedIdentity {
	return ResolvedIdentity{
		ActorID:     session.ActorID,
		DisplayName: session.DisplayName,
		Roles:       roles.NormalizeSet(session.RoleClaims),
		TokenValid:  tokenValid,
		Source:      source,
	}
}

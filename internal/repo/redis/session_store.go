package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/maniyoussef/ticketflow/internal/domain/model"
)

// SessionStore is the durable key/value surface shared by the identity
// resolver and the notification engine. It holds the session snapshot,
// the notification feed snapshot, and three legacy single-field keys that
// older deployments wrote separately and the resolver still reads as a
// last-resort fallback.
//
// All writes to it go through those two services; no other component
// touches these keys.

const (
	sessionKeySuffix   = "identity:session"
	feedKeySuffix      = "identity:feed"
	roleNameKeySuffix  = "identity:role_name"
	roleIDKeySuffix    = "identity:role_id"
	actorBlobKeySuffix = "identity:actor"
)

var ErrNotFound = errors.New("not found")

type SessionStore struct {
	client  *goredis.Client
	prefix  string
	feedTTL time.Duration
}

// LegacyFragments are the separately-stored fallback keys. Any field may
// be absent; the resolver decides what is reconstructable.
type LegacyFragments struct {
	RoleName  string
	RoleID    int64
	HasRoleID bool
	ActorBlob []byte
}

func NewSessionStore(client *goredis.Client, prefix string, feedTTL time.Duration) *SessionStore {
	if strings.TrimSpace(prefix) == "" {
		prefix = "ticketflow"
	}
	return &SessionStore{
		client:  client,
		prefix:  prefix,
		feedTTL: feedTTL,
	}
}

func (s *SessionStore) GetSession(ctx context.Context) (model.ActorSession, error) {
	raw, err := s.get(ctx, s.key(sessionKeySuffix))
	if err != nil {
		return model.ActorSession{}, err
	}

	var session model.ActorSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return model.ActorSession{}, fmt.Errorf("decode session snapshot: %w", err)
	}
	if session.Empty() {
		return model.ActorSession{}, ErrNotFound
	}
	return session, nil
}

func (s *SessionStore) PutSession(ctx context.Context, session model.ActorSession) error {
	if s.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sessionKeySuffix), payload, 0).Err(); err != nil {
		return fmt.Errorf("put session snapshot: %w", err)
	}
	return nil
}

func (s *SessionStore) DeleteSession(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := s.client.Del(ctx, s.key(sessionKeySuffix)).Err(); err != nil {
		return fmt.Errorf("delete session snapshot: %w", err)
	}
	return nil
}

func (s *SessionStore) GetFeed(ctx context.Context) ([]model.Notification, error) {
	raw, err := s.get(ctx, s.key(feedKeySuffix))
	if err != nil {
		return nil, err
	}

	var feed []model.Notification
	if err := json.Unmarshal([]byte(raw), &feed); err != nil {
		return nil, fmt.Errorf("decode feed snapshot: %w", err)
	}
	return feed, nil
}

func (s *SessionStore) PutFeed(ctx context.Context, feed []model.Notification) error {
	if s.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if feed == nil {
		feed = []model.Notification{}
	}
	payload, err := json.Marshal(feed)
	if err != nil {
		return fmt.Errorf("encode feed snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key(feedKeySuffix), payload, s.feedTTL).Err(); err != nil {
		return fmt.Errorf("put feed snapshot: %w", err)
	}
	return nil
}

// Legacy reads the backward-compatibility fragment keys. A fragment that
// is missing or unreadable is simply left zero; only a fully-empty result
// reports ErrNotFound.
func (s *SessionStore) Legacy(ctx context.Context) (LegacyFragments, error) {
	if s.client == nil {
		return LegacyFragments{}, fmt.Errorf("redis client is nil")
	}

	var fragments LegacyFragments
	found := false

	if raw, err := s.get(ctx, s.key(roleNameKeySuffix)); err == nil {
		fragments.RoleName = raw
		found = true
	}
	if raw, err := s.get(ctx, s.key(roleIDKeySuffix)); err == nil {
		if id, parseErr := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); parseErr == nil && id > 0 {
			fragments.RoleID = id
			fragments.HasRoleID = true
			found = true
		}
	}
	if raw, err := s.get(ctx, s.key(actorBlobKeySuffix)); err == nil {
		fragments.ActorBlob = []byte(raw)
		found = true
	}

	if !found {
		return LegacyFragments{}, ErrNotFound
	}
	return fragments, nil
}

// PutLegacy writes the fragment keys alongside the snapshot, keeping them
// in step for deployments that still read the old keys directly.
func (s *SessionStore) PutLegacy(ctx context.Context, fragments LegacyFragments) error {
	if s.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	pipe := s.client.TxPipeline()
	if strings.TrimSpace(fragments.RoleName) != "" {
		pipe.Set(ctx, s.key(roleNameKeySuffix), fragments.RoleName, 0)
	}
	if fragments.HasRoleID {
		pipe.Set(ctx, s.key(roleIDKeySuffix), strconv.FormatInt(fragments.RoleID, 10), 0)
	}
	if len(fragments.ActorBlob) > 0 {
		pipe.Set(ctx, s.key(actorBlobKeySuffix), fragments.ActorBlob, 0)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("put legacy fragments: %w", err)
	}
	return nil
}

// Clear removes everything the store owns: snapshot, feed and fragments.
func (s *SessionStore) Clear(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	keys := []string{
		s.key(sessionKeySuffix),
		s.key(feedKeySuffix),
		s.key(roleNameKeySuffix),
		s.key(roleIDKeySuffix),
		s.key(actorBlobKeySuffix),
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("clear session store: %w", err)
	}
	return nil
}

func (s *SessionStore) get(ctx context.Context, key string) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("redis client is nil")
	}
	raw, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	if strings.TrimSpace(raw) == "" {
		return "", ErrNotFound
	}
	return raw, nil
}

func (s *SessionStore) key(suffix string) string {
	return s.prefix + ":" + suffix
}

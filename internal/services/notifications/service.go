// Package notifications maintains the per-actor feed: it merges the
// persisted cache, backend fetches and locally-synthesized entries into
// one deduplicated feed with sticky read state.
package notifications

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/maniyoussef/ticketflow/internal/domain/enums"
	"github.com/maniyoussef/ticketflow/internal/domain/model"
	"github.com/maniyoussef/ticketflow/internal/domain/rules"
	"github.com/maniyoussef/ticketflow/internal/infra/metrics"
	redrepo "github.com/maniyoussef/ticketflow/internal/repo/redis"
)

// Source says where a batch of incoming notifications came from.
type Source string

const (
	SourceLocal  Source = "local"
	SourceRemote Source = "remote"
)

var ErrNotFoundNotification = errors.New("notification not found")

// Store is the persisted feed surface (write-through cache).
type Store interface {
	GetFeed(ctx context.Context) ([]model.Notification, error)
	PutFeed(ctx context.Context, feed []model.Notification) error
}

type Config struct {
	// RoleBucket is the dashboard's role-specific tracked category.
	RoleBucket enums.NotificationCategory
	// UpdateBuffer bounds each subscriber channel.
	UpdateBuffer int
}

type Service struct {
	store  Store
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
	newID  func() string

	mu      sync.Mutex
	entries map[string]model.Notification
	loaded  bool
	actorID int64

	subMu   sync.Mutex
	subs    map[int]chan model.FeedSnapshot
	nextSub int
}

func NewService(store Store, cfg Config, logger *zap.Logger) *Service {
	if cfg.RoleBucket == "" {
		cfg.RoleBucket = enums.NotificationReport
	}
	if cfg.UpdateBuffer <= 0 {
		cfg.UpdateBuffer = 8
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		store:   store,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
		entries: make(map[string]model.Notification),
		subs:    make(map[int]chan model.FeedSnapshot),
	}
}

// SetActor binds the feed to an actor. Switching actors drops the
// in-memory state so the next operation reloads whatever the store holds
// for the new session.
func (s *Service) SetActor(actorID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.actorID == actorID {
		return
	}
	s.actorID = actorID
	s.entries = make(map[string]model.Notification)
	s.loaded = false
}

// Reconcile merges a batch into the feed and commits the result: merge,
// persist, recompute, publish — atomically with respect to other feed
// operations. A duplicate id keeps the pre-existing read flag; read
// state never downgrades.
func (s *Service) Reconcile(ctx context.Context, source Source, incoming []model.Notification) (model.FeedSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLoaded(ctx)

	for _, notification := range incoming {
		if notification.ID == "" {
			continue
		}
		existing, ok := s.entries[notification.ID]
		if ok {
			// sticky read: a merge may refresh message/category but a
			// read entry stays read
			notification.IsRead = notification.IsRead || existing.IsRead
			if notification.CreatedAt.IsZero() {
				notification.CreatedAt = existing.CreatedAt
			}
			metrics.ReconcileMergesTotal.WithLabelValues("refreshed").Inc()
		} else {
			if notification.CreatedAt.IsZero() {
				notification.CreatedAt = s.now().UTC()
			}
			metrics.ReconcileMergesTotal.WithLabelValues("inserted").Inc()
		}
		s.entries[notification.ID] = notification
	}

	s.logger.Debug("feed reconciled",
		zap.String("source", string(source)),
		zap.Int("incoming", len(incoming)),
		zap.Int("feed_size", len(s.entries)),
	)

	return s.commit(ctx), nil
}

// PublishLocal synthesizes a notification (id and timestamp assigned
// here) and merges it as a local-source batch.
func (s *Service) PublishLocal(ctx context.Context, notification model.Notification) (model.FeedSnapshot, error) {
	if !notification.Category.Valid() {
		return model.FeedSnapshot{}, fmt.Errorf("invalid notification category %q", notification.Category)
	}
	if notification.ID == "" {
		notification.ID = s.newID()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = s.now().UTC()
	}
	notification.IsRead = false

	return s.Reconcile(ctx, SourceLocal, []model.Notification{notification})
}

// MarkRead flips one entry to read and commits.
func (s *Service) MarkRead(ctx context.Context, id string) (model.FeedSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLoaded(ctx)

	entry, ok := s.entries[id]
	if !ok {
		return model.FeedSnapshot{}, ErrNotFoundNotification
	}
	if !entry.IsRead {
		entry.IsRead = true
		s.entries[id] = entry
	}
	return s.commit(ctx), nil
}

// MarkAllRead flips every entry to read and commits.
func (s *Service) MarkAllRead(ctx context.Context) (model.FeedSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLoaded(ctx)

	for id, entry := range s.entries {
		if !entry.IsRead {
			entry.IsRead = true
			s.entries[id] = entry
		}
	}
	return s.commit(ctx), nil
}

// ClearRead removes every read entry. Cleared entries are not
// resurrected locally; a later remote fetch re-inserts one only if the
// backend still reports it, which is an accepted limitation of the
// additive merge.
func (s *Service) ClearRead(ctx context.Context) (model.FeedSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLoaded(ctx)

	for id, entry := range s.entries {
		if entry.IsRead {
			delete(s.entries, id)
		}
	}
	return s.commit(ctx), nil
}

// Clear removes the whole feed.
func (s *Service) Clear(ctx context.Context) (model.FeedSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]model.Notification)
	s.loaded = true
	return s.commit(ctx), nil
}

// Snapshot returns the current derived feed without mutating it.
func (s *Service) Snapshot(ctx context.Context) model.FeedSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLoaded(ctx)
	return s.snapshotLocked()
}

func (s *Service) UnreadCount(ctx context.Context) int {
	return s.Snapshot(ctx).UnreadCount
}

// Subscribe registers a feed listener. Every committed snapshot is
// offered to the channel; a full channel drops the update rather than
// blocking a commit. The returned func unsubscribes.
func (s *Service) Subscribe() (<-chan model.FeedSnapshot, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan model.FeedSnapshot, s.cfg.UpdateBuffer)
	s.subs[id] = ch

	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// ensureLoaded pulls the persisted feed into memory once per actor
// binding. A failing store degrades to an empty feed.
func (s *Service) ensureLoaded(ctx context.Context) {
	if s.loaded {
		return
	}
	s.loaded = true

	if s.store == nil {
		return
	}
	persisted, err := s.store.GetFeed(ctx)
	if err != nil {
		if !errors.Is(err, redrepo.ErrNotFound) {
			s.logger.Warn("read persisted feed", zap.Error(err))
		}
		return
	}
	for _, notification := range persisted {
		if notification.ID == "" {
			continue
		}
		s.entries[notification.ID] = notification
	}
}

// commit persists the merged feed and publishes the recomputed snapshot.
// Persistence failure keeps the in-memory state as last-good and is
// never fatal.
func (s *Service) commit(ctx context.Context) model.FeedSnapshot {
	if s.store != nil {
		feed := make([]model.Notification, 0, len(s.entries))
		for _, notification := range s.entries {
			feed = append(feed, notification)
		}
		if err := s.store.PutFeed(ctx, feed); err != nil {
			s.logger.Warn("persist feed snapshot", zap.Error(err))
		}
	}

	snapshot := s.snapshotLocked()
	s.publish(snapshot)
	return snapshot
}

func (s *Service) snapshotLocked() model.FeedSnapshot {
	entries := make([]model.Notification, 0, len(s.entries))
	for _, notification := range s.entries {
		entries = append(entries, notification)
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].ID > entries[j].ID
	})

	snapshot := model.FeedSnapshot{
		Entries: entries,
		CategoryCounts: map[enums.NotificationCategory]int{
			enums.NotificationAssigned: 0,
			enums.NotificationComment:  0,
			s.cfg.RoleBucket:           0,
		},
	}

	for _, notification := range entries {
		forActor := notification.ForActor(s.actorID)
		if forActor && !notification.IsRead {
			snapshot.UnreadCount++
		}

		switch notification.Category {
		case enums.NotificationAssigned, enums.NotificationComment, s.cfg.RoleBucket:
			snapshot.CategoryCounts[notification.Category]++
		default:
			snapshot.OtherCount++
		}

		if rules.IsHighlight(notification.Category, notification.Message) {
			snapshot.HighlightIDs = append(snapshot.HighlightIDs, notification.ID)
		}
	}

	metrics.FeedUnread.Set(float64(snapshot.UnreadCount))
	return snapshot
}

func (s *Service) publish(snapshot model.FeedSnapshot) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, sub := range s.subs {
		select {
		case sub <- snapshot:
		default:
			// slow subscriber: drop this update, the next commit
			// carries the newer state anyway
		}
	}
}

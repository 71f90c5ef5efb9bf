// Package sync drives periodic and on-demand reconciliation of the
// notification feed against the backend.
package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"go.uber.org/zap"

	"github.com/maniyoussef/ticketflow/internal/domain/enums"
	"github.com/maniyoussef/ticketflow/internal/domain/model"
	"github.com/maniyoussef/ticketflow/internal/infra/metrics"
	identitysvc "github.com/maniyoussef/ticketflow/internal/services/identity"
	notifsvc "github.com/maniyoussef/ticketflow/internal/services/notifications"
)

// ErrSyncInFlight reports that a cycle of the same kind is already
// running; the trigger collapsed into it.
var ErrSyncInFlight = errors.New("sync already in flight")

type Resolver interface {
	Resolve(ctx context.Context) (identitysvc.ResolvedIdentity, error)
}

type Fetcher interface {
	FetchForActor(ctx context.Context, actorID int64) ([]model.Notification, error)
}

type Feed interface {
	SetActor(actorID int64)
	Reconcile(ctx context.Context, source notifsvc.Source, incoming []model.Notification) (model.FeedSnapshot, error)
}

type Job struct {
	resolver     Resolver
	fetcher      Fetcher
	feed         Feed
	interval     time.Duration
	fetchTimeout time.Duration
	logger       *zap.Logger

	inflightMu gosync.Mutex
	inflight   map[enums.SyncKind]bool
}

func New(resolver Resolver, fetcher Fetcher, feed Feed, interval, fetchTimeout time.Duration, logger *zap.Logger) *Job {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if fetchTimeout <= 0 {
		fetchTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		resolver:     resolver,
		fetcher:      fetcher,
		feed:         feed,
		interval:     interval,
		fetchTimeout: fetchTimeout,
		logger:       logger,
		inflight:     make(map[enums.SyncKind]bool),
	}
}

// Run performs one cycle immediately, then keeps cycling on the
// configured interval until the context ends. Cycle failures are logged
// and do not stop the loop.
func (j *Job) Run(ctx context.Context) error {
	if err := j.TriggerSync(ctx, enums.SyncKindStartup); err != nil && !errors.Is(err, ErrSyncInFlight) {
		j.logger.Warn("startup sync cycle failed", zap.Error(err))
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := j.TriggerSync(ctx, enums.SyncKindPeriodic); err != nil && !errors.Is(err, ErrSyncInFlight) {
				j.logger.Warn("periodic sync cycle failed", zap.Error(err))
			}
		}
	}
}

// TriggerSync runs one reconciliation cycle for the given kind. A second
// trigger of the same kind while one is running collapses into the
// running cycle and reports ErrSyncInFlight; distinct kinds proceed
// independently. The guard is released no matter how the cycle ends.
func (j *Job) TriggerSync(ctx context.Context, kind enums.SyncKind) error {
	if !kind.Valid() {
		return fmt.Errorf("invalid sync kind %q", kind)
	}

	if !j.acquire(kind) {
		metrics.SyncCyclesTotal.WithLabelValues(string(kind), "skipped").Inc()
		return ErrSyncInFlight
	}
	defer j.release(kind)

	if err := j.cycle(ctx, kind); err != nil {
		metrics.SyncCyclesTotal.WithLabelValues(string(kind), "error").Inc()
		return err
	}
	metrics.SyncCyclesTotal.WithLabelValues(string(kind), "ok").Inc()
	return nil
}

func (j *Job) cycle(ctx context.Context, kind enums.SyncKind) error {
	resolved, err := j.resolver.Resolve(ctx)
	if err != nil {
		if errors.Is(err, identitysvc.ErrNoIdentity) {
			j.logger.Debug("sync skipped, no identity", zap.String("kind", string(kind)))
			return nil
		}
		return fmt.Errorf("resolve identity: %w", err)
	}
	if !resolved.TokenValid {
		// a fragments-sourced identity cannot call the backend
		j.logger.Debug("sync skipped, no valid token",
			zap.String("kind", string(kind)),
			zap.String("identity_source", string(resolved.Source)),
		)
		return nil
	}

	j.feed.SetActor(resolved.ActorID)

	fetchCtx, cancel := context.WithTimeout(ctx, j.fetchTimeout)
	defer cancel()

	incoming, err := j.fetcher.FetchForActor(fetchCtx, resolved.ActorID)
	if err != nil {
		return fmt.Errorf("fetch notifications: %w", err)
	}

	snapshot, err := j.feed.Reconcile(ctx, notifsvc.SourceRemote, incoming)
	if err != nil {
		return fmt.Errorf("reconcile notifications: %w", err)
	}

	j.logger.Debug("sync cycle completed",
		zap.String("kind", string(kind)),
		zap.Int("fetched", len(incoming)),
		zap.Int("unread", snapshot.UnreadCount),
	)
	return nil
}

func (j *Job) acquire(kind enums.SyncKind) bool {
	j.inflightMu.Lock()
	defer j.inflightMu.Unlock()

	if j.inflight[kind] {
		return false
	}
	j.inflight[kind] = true
	return true
}

func (j *Job) release(kind enums.SyncKind) {
	j.inflightMu.Lock()
	defer j.inflightMu.Unlock()
	delete(j.inflight, kind)
}

package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/maniyoussef/ticketflow/internal/domain/enums"
	"github.com/maniyoussef/ticketflow/internal/domain/model"
	redrepo "github.com/maniyoussef/ticketflow/internal/repo/redis"
)

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *redrepo.SessionStore) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := redrepo.NewSessionStore(client, "test", 0)
	svc := NewService(store, Config{}, zap.NewNop())
	svc.now = func() time.Time { return testNow }
	svc.newID = func() string { return "generated-id" }
	return svc, store
}

func notif(id string, category enums.NotificationCategory, read bool, age time.Duration) model.Notification {
	return model.Notification{
		ID:        id,
		Message:   "message " + id,
		Category:  category,
		CreatedAt: testNow.Add(-age),
		IsRead:    read,
	}
}

func TestReconcileStickyRead(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	seed := notif("n1", enums.NotificationResolved, true, time.Hour)
	if err := store.PutFeed(ctx, []model.Notification{seed}); err != nil {
		t.Fatalf("seed feed: %v", err)
	}

	remote := []model.Notification{
		notif("n1", enums.NotificationResolved, false, time.Hour),
		notif("n2", enums.NotificationAssigned, false, time.Minute),
	}
	snapshot, err := svc.Reconcile(ctx, SourceRemote, remote)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if len(snapshot.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(snapshot.Entries))
	}
	byID := make(map[string]model.Notification, len(snapshot.Entries))
	for _, entry := range snapshot.Entries {
		byID[entry.ID] = entry
	}
	if !byID["n1"].IsRead {
		t.Error("n1 was downgraded to unread by a remote duplicate")
	}
	if byID["n2"].IsRead {
		t.Error("n2 should arrive unread")
	}
	if snapshot.UnreadCount != 1 {
		t.Errorf("unread = %d, want 1", snapshot.UnreadCount)
	}
}

func TestReconcileOrderIndependent(t *testing.T) {
	ctx := context.Background()

	batchA := []model.Notification{
		notif("a", enums.NotificationComment, false, 3*time.Hour),
		notif("b", enums.NotificationAssigned, true, 2*time.Hour),
	}
	batchB := []model.Notification{
		notif("b", enums.NotificationAssigned, false, 2*time.Hour),
		notif("c", enums.NotificationSystem, false, time.Hour),
	}

	first, _ := newTestService(t)
	second, _ := newTestService(t)

	if _, err := first.Reconcile(ctx, SourceRemote, batchA); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	got1, err := first.Reconcile(ctx, SourceRemote, batchB)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if _, err := second.Reconcile(ctx, SourceRemote, batchB); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	got2, err := second.Reconcile(ctx, SourceRemote, batchA)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if len(got1.Entries) != 3 || len(got2.Entries) != 3 {
		t.Fatalf("entries = %d and %d, want 3 each", len(got1.Entries), len(got2.Entries))
	}
	for i := range got1.Entries {
		e1, e2 := got1.Entries[i], got2.Entries[i]
		if e1.ID != e2.ID {
			t.Fatalf("order diverged at %d: %q vs %q", i, e1.ID, e2.ID)
		}
		if e1.ID == "b" && (!e1.IsRead || !e2.IsRead) {
			t.Error("read flag on b must survive both merge orders")
		}
	}
	if got1.UnreadCount != got2.UnreadCount {
		t.Errorf("unread counts disagree: %d vs %d", got1.UnreadCount, got2.UnreadCount)
	}
}

func TestPublishLocalAssignsIDAndTimestamp(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	snapshot, err := svc.PublishLocal(ctx, model.Notification{
		Message:  "ticket moved",
		Category: enums.NotificationStatusChanged,
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(snapshot.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(snapshot.Entries))
	}
	entry := snapshot.Entries[0]
	if entry.ID != "generated-id" {
		t.Errorf("id = %q, want generated", entry.ID)
	}
	if !entry.CreatedAt.Equal(testNow) {
		t.Errorf("createdAt = %v, want clock time", entry.CreatedAt)
	}
	if entry.IsRead {
		t.Error("local publishes always start unread")
	}

	if _, err := svc.PublishLocal(ctx, model.Notification{Message: "x", Category: "BOGUS"}); err == nil {
		t.Error("invalid category should be rejected")
	}
}

func TestMarkReadPersists(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	if _, err := svc.Reconcile(ctx, SourceRemote, []model.Notification{
		notif("n1", enums.NotificationComment, false, time.Hour),
		notif("n2", enums.NotificationComment, false, time.Minute),
	}); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	snapshot, err := svc.MarkRead(ctx, "n1")
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if snapshot.UnreadCount != 1 {
		t.Errorf("unread = %d, want 1", snapshot.UnreadCount)
	}

	if _, err := svc.MarkRead(ctx, "missing"); !errors.Is(err, ErrNotFoundNotification) {
		t.Errorf("err = %v, want ErrNotFoundNotification", err)
	}

	// a fresh engine over the same store must observe the persisted flag
	fresh := NewService(store, Config{}, zap.NewNop())
	if got := fresh.UnreadCount(ctx); got != 1 {
		t.Errorf("persisted unread = %d, want 1", got)
	}
}

func TestMarkAllReadAndClearRead(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	if _, err := svc.Reconcile(ctx, SourceRemote, []model.Notification{
		notif("n1", enums.NotificationComment, false, 3*time.Hour),
		notif("n2", enums.NotificationAssigned, false, 2*time.Hour),
		notif("n3", enums.NotificationReport, false, time.Hour),
	}); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	snapshot, err := svc.MarkAllRead(ctx)
	if err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	if snapshot.UnreadCount != 0 {
		t.Fatalf("unread = %d, want 0", snapshot.UnreadCount)
	}

	if _, err := svc.Reconcile(ctx, SourceLocal, []model.Notification{
		notif("n4", enums.NotificationSystem, false, 0),
	}); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	snapshot, err = svc.ClearRead(ctx)
	if err != nil {
		t.Fatalf("clear read: %v", err)
	}
	if len(snapshot.Entries) != 1 || snapshot.Entries[0].ID != "n4" {
		t.Fatalf("clear-read left %v, want only n4", snapshot.Entries)
	}

	snapshot, err = svc.Clear(ctx)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(snapshot.Entries) != 0 {
		t.Errorf("clear left %d entries", len(snapshot.Entries))
	}
}

func TestUnreadCountsOnlyCurrentActor(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	svc.SetActor(7)

	mine, other := int64(7), int64(8)
	broadcast := notif("b", enums.NotificationSystem, false, time.Hour)
	forMe := notif("m", enums.NotificationAssigned, false, time.Hour)
	forMe.RecipientID = &mine
	forOther := notif("o", enums.NotificationAssigned, false, time.Hour)
	forOther.RecipientID = &other

	snapshot, err := svc.Reconcile(ctx, SourceRemote, []model.Notification{broadcast, forMe, forOther})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if snapshot.UnreadCount != 2 {
		t.Errorf("unread = %d, want 2 (broadcast + addressed)", snapshot.UnreadCount)
	}
}

func TestCategoryCountsAndHighlights(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	snapshot, err := svc.Reconcile(ctx, SourceRemote, []model.Notification{
		notif("r1", enums.NotificationResolved, false, 4*time.Hour),
		notif("a1", enums.NotificationAssigned, false, 3*time.Hour),
		notif("c1", enums.NotificationComment, false, 2*time.Hour),
		notif("s1", enums.NotificationStatusChanged, false, time.Hour),
		{ID: "s2", Message: "ticket clôturé par l'admin", Category: enums.NotificationStatusChanged, CreatedAt: testNow},
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if got := snapshot.CategoryCounts[enums.NotificationAssigned]; got != 1 {
		t.Errorf("assigned = %d, want 1", got)
	}
	if got := snapshot.CategoryCounts[enums.NotificationComment]; got != 1 {
		t.Errorf("comment = %d, want 1", got)
	}
	if snapshot.OtherCount != 3 {
		t.Errorf("other = %d, want 3", snapshot.OtherCount)
	}

	highlights := make(map[string]bool, len(snapshot.HighlightIDs))
	for _, id := range snapshot.HighlightIDs {
		highlights[id] = true
	}
	if !highlights["r1"] {
		t.Error("resolved entry must always highlight")
	}
	if !highlights["s2"] {
		t.Error("status change with closure keyword must highlight")
	}
	if highlights["s1"] {
		t.Error("plain status change must not highlight")
	}
}

func TestSetActorDropsStaleState(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	svc.SetActor(1)

	if _, err := svc.Reconcile(ctx, SourceLocal, []model.Notification{
		notif("n1", enums.NotificationComment, false, time.Hour),
	}); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	// the session switch wipes the persisted feed before the new actor
	// syncs anything
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear store: %v", err)
	}
	svc.SetActor(2)

	if got := svc.Snapshot(ctx); len(got.Entries) != 0 {
		t.Errorf("stale entries leaked across actors: %v", got.Entries)
	}
}

func TestSubscribeReceivesCommits(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	updates, cancel := svc.Subscribe()

	if _, err := svc.Reconcile(ctx, SourceRemote, []model.Notification{
		notif("n1", enums.NotificationAssigned, false, time.Hour),
	}); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	select {
	case snapshot := <-updates:
		if snapshot.UnreadCount != 1 {
			t.Errorf("published unread = %d, want 1", snapshot.UnreadCount)
		}
	case <-time.After(time.Second):
		t.Fatal("no update published after reconcile")
	}

	cancel()
	if _, open := <-updates; open {
		t.Error("channel should close on unsubscribe")
	}
}

func TestNilStoreStaysInMemory(t *testing.T) {
	ctx := context.Background()
	svc := NewService(nil, Config{}, zap.NewNop())
	svc.now = func() time.Time { return testNow }

	if _, err := svc.Reconcile(ctx, SourceLocal, []model.Notification{
		notif("n1", enums.NotificationComment, false, time.Hour),
	}); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if got := svc.UnreadCount(ctx); got != 1 {
		t.Errorf("unread = %d, want 1", got)
	}
}

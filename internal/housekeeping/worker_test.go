package housekeeping_test

import (
	"context"
	"testing"
	"time"

	"github.com/nycb2b/site/internal/auth"
	"github.com/nycb2b/site/internal/housekeeping"
	"github.com/nycb2b/site/pkg/interfaces"
)

func TestProcessEvictsExpiredSessions(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	store := auth.NewMemorySessionStore()
	for token, expires := range map[string]time.Time{
		"stale": now.Add(-time.Minute),
		"fresh": now.Add(time.Hour),
	} {
		if err := store.Save(ctx, interfaces.Session{Token: token, Subject: "admin", ExpiresAt: expires}); err != nil {
			t.Fatalf("save %s: %v", token, err)
		}
	}

	worker := housekeeping.NewWorker(store, housekeeping.WithClock(func() time.Time { return now }))
	evicted, err := worker.Process(ctx)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if evicted != 1 || store.Len() != 1 {
		t.Fatalf("expected one eviction leaving one session, got evicted=%d len=%d", evicted, store.Len())
	}
	if _, err := store.Get(ctx, "fresh"); err != nil {
		t.Fatalf("expected fresh session to survive: %v", err)
	}
}

func TestProcessRequiresStore(t *testing.T) {
	if _, err := housekeeping.NewWorker(nil).Process(context.Background()); err == nil {
		t.Fatalf("expected error without a session store")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	worker := housekeeping.NewWorker(auth.NewMemorySessionStore(), housekeeping.WithInterval(time.Millisecond))
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()
	time.Sleep(5 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("worker did not stop after cancel")
	}
}

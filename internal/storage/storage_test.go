package storage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nycb2b/site/internal/events"
	"github.com/nycb2b/site/internal/runtimeconfig"
	"github.com/nycb2b/site/internal/storage"
)

func TestOpenSQLiteAndEnsureSchema(t *testing.T) {
	ctx := context.Background()
	db, err := storage.Open(runtimeconfig.StorageConfig{
		Driver: "SQLite",
		DSN:    "file:storage_open_test?mode=memory&cache=shared",
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := storage.EnsureSchema(ctx, db, (*events.Event)(nil)); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	// Second pass must be a no-op.
	if err := storage.EnsureSchema(ctx, db, (*events.Event)(nil)); err != nil {
		t.Fatalf("ensure schema again: %v", err)
	}

	count, err := db.NewSelect().Model((*events.Event)(nil)).Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected empty table, got %d rows", count)
	}
}

func TestOpenRejectsMemoryAndUnknownDrivers(t *testing.T) {
	if _, err := storage.Open(runtimeconfig.StorageConfig{Driver: runtimeconfig.DriverMemory}); !errors.Is(err, storage.ErrMemoryDriver) {
		t.Fatalf("expected ErrMemoryDriver, got %v", err)
	}
	if _, err := storage.Open(runtimeconfig.StorageConfig{Driver: "oracle"}); !errors.Is(err, storage.ErrDriverUnknown) {
		t.Fatalf("expected ErrDriverUnknown, got %v", err)
	}
	if err := storage.EnsureSchema(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil database")
	}
}

func TestNewCache(t *testing.T) {
	service, serializer, err := storage.NewCache(runtimeconfig.CacheConfig{})
	if err != nil {
		t.Fatalf("disabled cache: %v", err)
	}
	if service != nil || serializer != nil {
		t.Fatalf("expected nil cache when disabled")
	}

	service, serializer, err = storage.NewCache(runtimeconfig.CacheConfig{Enabled: true, TTL: time.Minute})
	if err != nil {
		t.Fatalf("enabled cache: %v", err)
	}
	if service == nil || serializer == nil {
		t.Fatalf("expected cache service and serializer")
	}
}

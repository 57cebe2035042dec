package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	repocache "github.com/goliatone/go-repository-cache/cache"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/nycb2b/site/internal/runtimeconfig"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/extra/bundebug"
)

var (
	// ErrMemoryDriver is returned by Open when the configuration selects the
	// in-memory repositories, which need no database handle.
	ErrMemoryDriver  = errors.New("storage: memory driver has no database")
	ErrDriverUnknown = errors.New("storage: unknown driver")
)

// Open connects to the database selected by cfg and returns a bun handle.
func Open(cfg runtimeconfig.StorageConfig) (*bun.DB, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))

	var (
		sqlDB *sql.DB
		db    *bun.DB
		err   error
	)
	switch driver {
	case runtimeconfig.DriverMemory:
		return nil, ErrMemoryDriver
	case runtimeconfig.DriverSQLite:
		sqlDB, err = sql.Open("sqlite3", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("storage: open sqlite: %w", err)
		}
		// sqlite serialises writers; a single connection avoids SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
		db = bun.NewDB(sqlDB, sqlitedialect.New())
	case runtimeconfig.DriverPostgres:
		sqlDB, err = sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("storage: open postgres: %w", err)
		}
		db = bun.NewDB(sqlDB, pgdialect.New())
	default:
		return nil, fmt.Errorf("%w: %q", ErrDriverUnknown, cfg.Driver)
	}

	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db, nil
}

// EnsureSchema creates the tables for the supplied models when missing.
func EnsureSchema(ctx context.Context, db *bun.DB, models ...any) error {
	if db == nil {
		return errors.New("storage: database required")
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("storage: create table for %T: %w", model, err)
		}
	}
	return nil
}

// NewCache builds the repository read cache. It returns nil values when
// caching is disabled so callers can pass them straight to the
// *WithCache repository constructors.
func NewCache(cfg runtimeconfig.CacheConfig) (repocache.CacheService, repocache.KeySerializer, error) {
	if !cfg.Enabled {
		return nil, nil, nil
	}
	cacheCfg := repocache.DefaultConfig()
	if cfg.TTL > 0 {
		cacheCfg.TTL = cfg.TTL
	}
	service, err := repocache.NewCacheService(cacheCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("storage: cache service: %w", err)
	}
	return service, repocache.NewDefaultKeySerializer(), nil
}

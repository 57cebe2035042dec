package testsupport

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

var memoryDBCounter atomic.Int64

// NewSQLiteMemoryDB opens an in-memory sqlite database. Each call gets its
// own named database so parallel tests never share tables.
func NewSQLiteMemoryDB() (*sql.DB, error) {
	name := fmt.Sprintf("file:site_test_%d?mode=memory&cache=shared", memoryDBCounter.Add(1))
	return sql.Open("sqlite3", name)
}

// NewBunDB returns a bun handle over a fresh in-memory database with tables
// created for the supplied models. The database is closed when the test ends.
func NewBunDB(t testing.TB, models ...any) *bun.DB {
	t.Helper()

	sqlDB, err := NewSQLiteMemoryDB()
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
	})

	ctx := context.Background()
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			t.Fatalf("create table %T: %v", model, err)
		}
	}
	return db
}

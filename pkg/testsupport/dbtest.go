package testsupport

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-invites/internal/store"
)

// NewSQLiteDB opens an empty in-memory sqlite database private to t.
func NewSQLiteDB(t testing.TB) *bun.DB {
	t.Helper()
	sqlDB, err := sql.Open("sqlite3", "file:"+uuid.NewString()+"?mode=memory&cache=shared&_fk=1")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// NewSiteDB is NewSQLiteDB with the invitation_sites table created.
func NewSiteDB(t testing.TB) *bun.DB {
	t.Helper()
	db := NewSQLiteDB(t)
	if err := store.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

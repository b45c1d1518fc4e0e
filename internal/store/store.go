// Package store persists generated invitation sites.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-invites/internal/domain"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// DefaultSQLiteDSN is used when no DSN is configured for sqlite.
const DefaultSQLiteDSN = "file:invites.db?cache=shared&_busy_timeout=5000"

var (
	ErrSiteNotFound      = errors.New("store: site not found")
	ErrUnsupportedDriver = errors.New("store: unsupported driver")
	ErrDatabaseRequired  = errors.New("store: database required")
)

// Text codes attached to store errors.
const (
	TextCodeSiteNotFound = "SITE_NOT_FOUND"
	TextCodeSlugTaken    = "SITE_SLUG_TAKEN"
	TextCodeDuplicate    = "SITE_DUPLICATE"
)

// Config selects the database backing the site store.
type Config struct {
	Driver       string
	DSN          string
	MaxOpenConns int
}

// Open connects to the configured database and verifies it is reachable.
func Open(ctx context.Context, cfg Config) (*bun.DB, error) {
	driver, err := normalizeDriver(cfg.Driver)
	if err != nil {
		return nil, err
	}

	var db *bun.DB
	switch driver {
	case DriverSQLite:
		dsn := strings.TrimSpace(cfg.DSN)
		if dsn == "" {
			dsn = DefaultSQLiteDSN
		}
		sqlDB, err := sql.Open(DriverSQLite, dsn)
		if err != nil {
			return nil, fmt.Errorf("store: open sqlite: %w", err)
		}
		db = bun.NewDB(sqlDB, sqlitedialect.New())
		db.SetMaxOpenConns(1)
	case DriverPostgres:
		connector, err := pq.NewConnector(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("store: postgres dsn: %w", err)
		}
		db = bun.NewDB(sql.OpenDB(connector), pgdialect.New())
		if cfg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping %s: %w", driver, err)
	}
	return db, nil
}

func normalizeDriver(value string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "sqlite", "sqlite3":
		return DriverSQLite, nil
	case "postgres", "postgresql", "pg":
		return DriverPostgres, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, value)
	}
}

// Migrate creates the sites table and its indexes when missing.
func Migrate(ctx context.Context, db *bun.DB) error {
	if db == nil {
		return ErrDatabaseRequired
	}
	if _, err := db.NewCreateTable().Model((*domain.GeneratedSite)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("store: create sites table: %w", err)
	}
	if _, err := db.NewCreateIndex().
		Model((*domain.GeneratedSite)(nil)).
		Index("invitation_sites_task_id_idx").
		Column("task_id").
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("store: create task index: %w", err)
	}
	return nil
}

// Columns named by duplicateKey.
const (
	columnSlug    = "slug"
	columnUnknown = ""
)

// duplicateKey reports whether err is a unique constraint failure and the
// column it names, or columnUnknown when the driver does not say.
func duplicateKey(err error) (bool, string) {
	if err == nil {
		return false, columnUnknown
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.ExtendedCode != sqlite3.ErrConstraintUnique && sqliteErr.ExtendedCode != sqlite3.ErrConstraintPrimaryKey {
			return false, columnUnknown
		}
		return true, constraintColumn(sqliteErr.Error())
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code != "23505" {
			return false, columnUnknown
		}
		return true, constraintColumn(pqErr.Constraint + " " + pqErr.Detail)
	}
	for current := err; current != nil; current = errors.Unwrap(current) {
		repoErr, ok := current.(*goerrors.Error)
		if !ok || repoErr.Category != repository.CategoryDatabaseDuplicate {
			continue
		}
		detail := fmt.Sprint(repoErr.Metadata["constraint"], " ", repoErr.Metadata["detail"])
		return true, constraintColumn(detail)
	}
	message := strings.ToLower(err.Error())
	if strings.Contains(message, "unique constraint") || strings.Contains(message, "duplicate key") {
		return true, constraintColumn(message)
	}
	return false, columnUnknown
}

// constraintColumn reads the offending column from a driver message such as
// "UNIQUE constraint failed: invitation_sites.slug" or a pq constraint name.
func constraintColumn(text string) string {
	text = strings.ToLower(text)
	switch {
	case strings.Contains(text, "slug"):
		return columnSlug
	case strings.Contains(text, ".id"), strings.Contains(text, "pkey"), strings.Contains(text, "(id)"):
		return "id"
	default:
		return columnUnknown
	}
}

package invites

import (
	"embed"
)

//go:embed data/sql/migrations/*.sql
var migrationsFS embed.FS

// GetMigrationsFS returns the embedded migration files for hosts that manage
// schema changes with their own migration runner.
func GetMigrationsFS() embed.FS {
	return migrationsFS
}

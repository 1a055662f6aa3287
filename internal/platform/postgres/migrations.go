package postgres

import "embed"

// MigrationsFS holds the embedded SQL migration files applied by goose.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS

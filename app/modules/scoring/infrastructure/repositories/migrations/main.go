package scoringmigrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the scoring module's schema changes.
var Migrations = migrate.NewMigrations()

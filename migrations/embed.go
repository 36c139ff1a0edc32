// Package migrations embeds the SQLite schema applied by database.ApplyMigrations.
package migrations

import "embed"

// FS contains the numbered up/down migration files.
//
//go:embed *.sql
var FS embed.FS

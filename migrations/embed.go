// Package migrations embeds the PostgreSQL schema migrations applied by cmd/migrate.
package migrations

import "embed"

// FS contains the golang-migrate up and down files.
//
//go:embed *.sql
var FS embed.FS

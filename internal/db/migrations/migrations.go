// Package migrations embeds the goose SQL migrations shared by the
// Postgres and SQLite familiarity stores.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

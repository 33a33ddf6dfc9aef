package migrations

import "embed"

// FS contains embedded SQLite migrations for resolution storage.
//
//go:embed *.sql
var FS embed.FS

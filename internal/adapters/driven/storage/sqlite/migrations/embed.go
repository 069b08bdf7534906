// Package migrations embeds the versioned schema files for the library
// database. Files are applied in lexical order and recorded in
// schema_migrations.
package migrations

import "embed"

// FS holds the .sql migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS

// Package migrations embeds the versioned schema for each supported database.
// Files follow golang-migrate naming: NNNNNN_name.up.sql / NNNNNN_name.down.sql.
package migrations

import "embed"

// SQLite holds the SQLite migrations under the "sqlite" directory.
//
//go:embed sqlite/*.sql
var SQLite embed.FS

// Postgres holds the PostgreSQL migrations under the "postgres" directory.
//
//go:embed postgres/*.sql
var Postgres embed.FS

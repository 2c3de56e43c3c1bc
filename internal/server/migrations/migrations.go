// Package migrations embeds the goose schema migrations for the SQL
// snapshot backends, one directory per dialect.
package migrations

import "embed"

//go:embed postgres/*.sql sqlite/*.sql
var Migrations embed.FS

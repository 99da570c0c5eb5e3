// Package migrations embeds the goose migrations for the optional Postgres mode.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

// Package migrations embeds the goose SQL migrations for the console's
// local cache database.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS

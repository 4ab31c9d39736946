// Package migrations embeds the goose SQL migrations for the showtime schema.
package migrations

import "embed"

// Dir is the directory inside FS that holds the migrations.
const Dir = "."

//go:embed *.sql
var FS embed.FS

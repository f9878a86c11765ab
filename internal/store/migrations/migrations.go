// Package migrations embeds the park.db schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

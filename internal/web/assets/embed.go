// Package assets embeds the web app templates and static files.
package assets

import "embed"

//go:embed templates/*.html static
var FS embed.FS

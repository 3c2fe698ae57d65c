// Package assets embeds the dashboard's static files.
package assets

import "embed"

//go:embed app.css
var FS embed.FS

package server

import "embed"

// dist holds the gallery page, its script and the fallback placeholder.
//
//go:embed all:dist
var distFS embed.FS

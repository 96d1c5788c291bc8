package web

import "embed"

// Assets embeds the dashboard templates and static files into the binary.
//
//go:embed templates static
var Assets embed.FS

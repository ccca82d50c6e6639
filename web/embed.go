// Package web embeds the Helios dashboard, a single index.html that talks
// to the JSON API with the session cookie.
package web

import (
	"embed"
	"io/fs"
	"sync"
)

//go:embed all:dist
var dist embed.FS

// IndexFile is the dashboard entry point every unknown page falls back to.
const IndexFile = "index.html"

// Assets returns the dashboard files rooted at dist/, so IndexFile opens
// directly.
var Assets = sync.OnceValues(func() (fs.FS, error) {
	return fs.Sub(dist, "dist")
})

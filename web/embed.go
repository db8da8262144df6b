// Package web bundles the generation UI served by copyspell-d.
package web

import (
	"embed"
	"io/fs"
)

//go:embed dist/*
var assets embed.FS

// Assets returns the embedded UI rooted at dist/.
func Assets() (fs.FS, error) {
	return fs.Sub(assets, "dist")
}

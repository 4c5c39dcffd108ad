package assets

import (
	"embed"
	"io/fs"
)

// PlaceholderPrefix is the URL path segment placeholders are served under.
const PlaceholderPrefix = "placeholders"

//go:embed placeholders/*.svg
var placeholderFiles embed.FS

// Placeholders returns the static fallback artwork, keyed by file name
// (e.g. "push-achievement.svg").
func Placeholders() fs.FS {
	sub, err := fs.Sub(placeholderFiles, PlaceholderPrefix)
	if err != nil {
		panic(err)
	}
	return sub
}

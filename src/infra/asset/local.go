// Package asset resolves attachment files from the local disk or from object
// storage.
package asset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sandai/challonge/src/app/challonge"
)

// Local reads assets from disk. Relative references resolve against Root.
type Local struct {
	Root string
}

// Load reads the file at ref.
func (l Local) Load(_ context.Context, ref string) (challonge.Asset, error) {
	path := ref
	if l.Root != "" && !filepath.IsAbs(path) {
		path = filepath.Join(l.Root, path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return challonge.Asset{}, fmt.Errorf("read asset %s: %w", ref, err)
	}
	name := filepath.Base(path)
	return challonge.Asset{Name: name, ContentType: challonge.ContentType(name, content), Content: content}, nil
}

// Package archive manages the on-disk Markdown archive: category
// subdirectories, the per-run README, and failure list files.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
)

// Archive is a rooted output directory holding converted documents in
// category subdirectories.
type Archive struct {
	root string
}

// New creates (if needed) and opens an archive rooted at dir.
func New(dir string) (*Archive, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive directory %s: %w", dir, err)
	}
	return &Archive{root: dir}, nil
}

// Root returns the archive root directory.
func (a *Archive) Root() string {
	return a.root
}

// WriteDocument stores a document under its category subdirectory and
// returns the written path.
func (a *Archive) WriteDocument(category, filename, content string) (string, error) {
	dir := filepath.Join(a.root, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create category directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write document %s: %w", path, err)
	}
	return path, nil
}

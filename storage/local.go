package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LocalSource reads course documents from a directory on disk. Only .txt
// files at the top level are considered; subdirectories are ignored.
type LocalSource struct {
	dir string
}

// NewLocalSource creates a source over the given directory
func NewLocalSource(dir string) *LocalSource {
	return &LocalSource{dir: dir}
}

// List returns the .txt file names in the directory, sorted for stable
// ingestion order
func (s *LocalSource) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read documents directory %s: %w", s.dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".txt") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Read opens the named document
func (s *LocalSource) Read(ctx context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to open document %s: %w", name, err)
	}
	return f, nil
}

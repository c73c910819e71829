package service

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// KnowledgeSource lists and reads knowledge-base documents. The indexer
// only needs names and text; where the bytes live (local directory, S3
// bucket) is the implementation's business.
type KnowledgeSource interface {
	// List returns document names in lexicographic order. A source that
	// does not exist yet returns an empty list, not an error.
	List(ctx context.Context) ([]string, error)
	// Read returns the full text of a named document.
	Read(ctx context.Context, name string) (string, error)
	// Path returns a human-readable location for the named document,
	// recorded in chunk metadata.
	Path(name string) string
}

// DirSource reads .txt and .md files from a local directory.
type DirSource struct {
	dir string
}

func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// List returns eligible filenames sorted lexicographically. Directory
// listing order varies across platforms; sorting keeps chunk ids
// reproducible between runs. A missing directory is created empty.
func (s *DirSource) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			if mkErr := os.MkdirAll(s.dir, 0o755); mkErr != nil {
				return nil, mkErr
			}
			return []string{}, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !isKnowledgeFile(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (s *DirSource) Read(ctx context.Context, name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *DirSource) Path(name string) string {
	return filepath.Join(s.dir, name)
}

func isKnowledgeFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md":
		return true
	}
	return false
}

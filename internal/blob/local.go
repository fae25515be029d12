package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Local stores uploads on the filesystem. The API serves them back under
// /blobs/{name}.
type Local struct {
	basePath  string
	publicURL string
	mu        sync.RWMutex
}

var _ Store = (*Local)(nil)

// NewLocal creates a Local store rooted at basePath, creating it if needed.
func NewLocal(basePath, publicURL string) (*Local, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}
	return &Local{
		basePath:  basePath,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// Put implements Store.
func (l *Local) Put(_ context.Context, name, _ string, r io.Reader) (string, error) {
	if !validName(name) {
		return "", ErrInvalidName
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tmp, err := os.CreateTemp(l.basePath, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close blob: %w", err)
	}
	if err := os.Rename(tmp.Name(), l.Path(name)); err != nil {
		return "", fmt.Errorf("commit blob: %w", err)
	}

	return l.publicURL + "/blobs/" + name, nil
}

// Open returns a reader for a stored blob.
func (l *Local) Open(name string) (*os.File, error) {
	if !validName(name) {
		return nil, ErrInvalidName
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	f, err := os.Open(l.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("blob %s not found: %w", name, err)
		}
		return nil, fmt.Errorf("open blob: %w", err)
	}
	return f, nil
}

// Path returns the filesystem path for a blob name.
func (l *Local) Path(name string) string {
	return filepath.Join(l.basePath, name)
}

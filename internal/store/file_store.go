package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cloudpick/internal/domain"
)

const fileMode os.FileMode = 0o644

// AtomicWriter lands downloads under a root directory.
type AtomicWriter struct {
	root string
}

var _ domain.FileWriter = (*AtomicWriter)(nil)

func NewAtomicWriter(root string) *AtomicWriter {
	return &AtomicWriter{root: root}
}

// WriteFrom writes r to path relative to the root, creating parent
// directories. Paths escaping the root are rejected.
func (w *AtomicWriter) WriteFrom(path string, r io.Reader) (int64, error) {
	target, err := w.resolve(path)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, fmt.Errorf("create parent of %s: %w", target, err)
	}
	n, err := writeFrom(target, r, fileMode)
	if err != nil {
		return n, fmt.Errorf("write %s: %w", target, err)
	}
	return n, nil
}

func (w *AtomicWriter) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimLeft(path, "/")))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", &domain.ValidationError{Field: "path", Reason: fmt.Sprintf("%q escapes the download directory", path)}
	}
	return filepath.Join(w.root, clean), nil
}

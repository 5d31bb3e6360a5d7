package store

import (
	"io"
	"os"
	"path/filepath"
)

// writeFrom streams r into a temp file next to path, then atomically replaces
// the target. A failed copy leaves any previous file untouched.
func writeFrom(path string, r io.Reader, mode os.FileMode) (int64, error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	f, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return 0, err
	}
	tmp := f.Name()

	// Best-effort cleanup if anything fails before rename.
	defer func() { _ = os.Remove(tmp) }()

	n, err := io.Copy(f, r)
	if err != nil {
		_ = f.Close()
		return n, err
	}
	if err := f.Chmod(mode); err != nil {
		_ = f.Close()
		return n, err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return n, err
	}
	if err := f.Close(); err != nil {
		return n, err
	}

	return n, os.Rename(tmp, path)
}

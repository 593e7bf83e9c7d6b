// Package bundle provides atomic ZIP packaging of order results.
package bundle

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
)

// Factory creates archive writers in a download directory.
type Factory struct {
	dir string
}

// NewFactory creates a bundle factory rooted at dir. The directory is
// created on first use.
func NewFactory(dir string) *Factory {
	return &Factory{dir: dir}
}

// New starts a bundle named "<name>_bundle.zip". The archive is staged at
// a temporary path and only renamed into place on Commit, so a failure
// partway never leaves a partial archive at the final path.
func (f *Factory) New(name string) (*Writer, error) {
	if err := os.MkdirAll(f.dir, 0750); err != nil {
		return nil, fmt.Errorf("creating download directory: %w", err)
	}

	final := filepath.Join(f.dir, name+"_bundle.zip")
	tmp, err := os.CreateTemp(f.dir, name+"_bundle.*.zip.tmp")
	if err != nil {
		return nil, fmt.Errorf("creating temporary bundle: %w", err)
	}

	return &Writer{
		file:      tmp,
		zw:        zip.NewWriter(tmp),
		finalPath: final,
	}, nil
}

// Writer writes one ZIP archive for one order.
type Writer struct {
	file      *os.File
	zw        *zip.Writer
	finalPath string
	committed bool
}

// Add writes one entry. Directory components of the name are stripped;
// colliding basenames are not deduplicated, the last write wins within the
// archive.
func (w *Writer) Add(name string, r io.Reader) error {
	entry := path.Base(filepath.ToSlash(name))
	fw, err := w.zw.Create(entry)
	if err != nil {
		return fmt.Errorf("creating archive entry %s: %w", entry, err)
	}
	if _, err := io.Copy(fw, r); err != nil {
		return fmt.Errorf("writing archive entry %s: %w", entry, err)
	}
	return nil
}

// Commit flushes and closes the archive, then renames it into place.
func (w *Writer) Commit() (string, error) {
	if err := w.zw.Close(); err != nil {
		_ = w.file.Close()
		return "", fmt.Errorf("finalizing archive: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		_ = w.file.Close()
		return "", fmt.Errorf("syncing archive: %w", err)
	}
	if err := w.file.Close(); err != nil {
		return "", fmt.Errorf("closing archive: %w", err)
	}
	if err := os.Rename(w.file.Name(), w.finalPath); err != nil {
		return "", fmt.Errorf("committing archive: %w", err)
	}
	w.committed = true
	return w.finalPath, nil
}

// Discard aborts the bundle and removes the temporary file. Calling it
// after a successful Commit is a no-op, which lets callers defer it
// unconditionally.
func (w *Writer) Discard() error {
	if w.committed {
		return nil
	}
	_ = w.zw.Close()
	_ = w.file.Close()
	if err := os.Remove(w.file.Name()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

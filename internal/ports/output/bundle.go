package output

import (
	"context"
	"io"
)

// BundleWriter writes one archive for one completed order. Entries become
// visible at the final path only after Commit; Discard removes all trace
// of a partially written bundle.
type BundleWriter interface {
	// Add writes one archive entry with the given name.
	Add(name string, r io.Reader) error

	// Commit finalizes the archive atomically and returns its path.
	Commit() (string, error)

	// Discard aborts the bundle and deletes any temporary file. Safe to
	// call after Commit.
	Discard() error
}

// BundleFactory creates archive writers in the configured download
// directory.
type BundleFactory interface {
	New(name string) (BundleWriter, error)
}

// BundleSink places a committed archive at its long-term destination
// (local directory, object storage).
type BundleSink interface {
	// Store uploads or moves the archive at localPath under the given key.
	// Returns a human-readable destination reference.
	Store(ctx context.Context, localPath string, key string) (string, error)
}

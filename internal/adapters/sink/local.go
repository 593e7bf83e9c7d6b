// Package sink provides destinations for committed bundles.
package sink

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

// LocalSink keeps bundles on the local filesystem.
type LocalSink struct {
	basePath string
}

// NewLocalSink creates a new local sink adapter.
func NewLocalSink(basePath string) *LocalSink {
	return &LocalSink{basePath: basePath}
}

// Store moves the archive under the sink directory. When the archive is
// already inside the directory, nothing is copied.
func (s *LocalSink) Store(_ context.Context, localPath string, key string) (string, error) {
	dest := filepath.Join(s.basePath, key)
	if same, err := samePath(localPath, dest); err == nil && same {
		return dest, nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0750); err != nil {
		return "", err
	}

	// Rename first; fall back to copy across filesystems.
	if err := os.Rename(localPath, dest); err == nil {
		return dest, nil
	}

	src, err := os.Open(localPath) //#nosec G304 -- localPath is a controlled local path
	if err != nil {
		return "", err
	}
	defer func() { _ = src.Close() }()

	dst, err := os.Create(dest) //#nosec G304 -- dest is a controlled local path
	if err != nil {
		return "", err
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return dest, os.Remove(localPath)
}

func samePath(a, b string) (bool, error) {
	aa, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	bb, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return aa == bb, nil
}

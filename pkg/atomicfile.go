// Package pkg provides utilities for securehls.
package pkg

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// WriteFileAtomic writes data to path so that readers observe either the old
// content or the complete new content. The data goes to a temporary file in the
// destination directory, is synced, and is renamed over path.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		slog.Error("failed to create directory", "path", dir, "error", err)
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		slog.Error("failed to create temp file", "path", dir, "error", err)
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	syncErr := tmp.Sync()
	closeErr := tmp.Close()

	for _, err := range []error{writeErr, syncErr, closeErr} {
		if err != nil {
			_ = os.Remove(tmpPath)

			slog.Error("failed to write temp file", "path", tmpPath, "error", err)

			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	if err := os.Chmod(tmpPath, perm); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to chmod %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)

		slog.Error("failed to rename temp file", "from", tmpPath, "to", path, "error", err)

		return fmt.Errorf("failed to rename %s: %w", tmpPath, err)
	}

	slog.Debug("wrote file atomically", "path", path, "bytes", len(data))

	return nil
}

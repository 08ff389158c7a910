package segment

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFileAtomic writes data to a temporary file in the same directory
// as path, fsyncs it, and renames it into place, so a crash never leaves
// path half-written. Both segment files and the top-level index meta
// (cairn.saveMeta) use this to satisfy spec.md's "segment files and meta
// updates are written via a temp-file-plus-rename sequence, with an
// fsync before the rename" requirement.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("segment: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("segment: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("segment: fsync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("segment: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("segment: rename into place: %w", err)
	}
	return syncDir(dir)
}

// syncDir fsyncs a directory so the rename itself is durable, not just
// the file contents. Best-effort: some platforms/filesystems return
// EINVAL for Sync on a directory handle, which we ignore, matching the
// "best-effort directory fsync" language in spec.md's crash-safety
// section.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return nil
	}
	defer d.Close()
	_ = d.Sync()
	return nil
}

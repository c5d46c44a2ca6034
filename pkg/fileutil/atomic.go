// Package fileutil provides the file operations folio needs to change the
// serving root without exposing half-written state: atomic replacement of
// files and symlinks, bounded reads, and content hashing.
package fileutil

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// AtomicWriteFile replaces path with data. The data is written and synced to
// a temporary file in the same directory, then renamed over path, so readers
// see either the old file or the new one.
//
// The parent directory must exist.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".folio-atomic-*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return errors.Wrap(err, "writing temp file")
	}
	if err = tmp.Chmod(perm); err != nil {
		return errors.Wrap(err, "setting file permissions")
	}
	if err = tmp.Sync(); err != nil {
		return errors.Wrap(err, "syncing temp file")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, "renaming temp file")
	}
	return nil
}

// AtomicWriteJSON replaces path with v encoded as indented JSON and a
// trailing newline. The file is created with 0644 permissions.
func AtomicWriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling JSON")
	}
	return AtomicWriteFile(path, append(data, '\n'), 0o644)
}

// ReplaceSymlink points link at target, replacing any existing link in a
// single rename. target is stored as given, so a relative target stays
// relative to link's directory.
func ReplaceSymlink(target, link string) error {
	tmp := filepath.Join(filepath.Dir(link), "."+filepath.Base(link)+"-"+uuid.NewString())
	if err := os.Symlink(target, tmp); err != nil {
		return errors.Wrap(err, "creating symlink")
	}
	if err := os.Rename(tmp, link); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrapf(err, "replacing %s", filepath.Base(link))
	}
	return nil
}

// WriteFileAll writes data to path, creating missing parent directories.
// Unlike AtomicWriteFile it writes in place; it is meant for fresh
// directories nobody reads yet.
func WriteFileAll(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "creating parent directory")
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		return errors.Wrap(err, "writing file")
	}
	return nil
}

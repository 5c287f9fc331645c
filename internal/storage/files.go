package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Exists reports whether the path exists.
func Exists(path string) bool {
	present, err := statPath(path)
	return err == nil && present
}

// statPath distinguishes an absent path from a stat failure, so callers can
// report ErrStorage instead of treating an unreadable path as missing.
func statPath(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("%w: failed to stat %s: %v", ErrStorage, path, err)
}

func readFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: input file not found: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: failed to read file %s: %v", ErrStorage, path, err)
	}
	return b, nil
}

// writeFile writes data to path, creating the parent directory first. A
// zero permission leaves the OS default in place.
func writeFile(path string, data []byte, filePerm, dirPerm uint32) error {
	parent := filepath.Dir(path)
	mkMode := os.FileMode(dirPerm)
	if mkMode == 0 {
		mkMode = 0o755
	}
	if err := os.MkdirAll(parent, mkMode); err != nil {
		return fmt.Errorf("%w: failed to create directory %s: %v", ErrStorage, parent, err)
	}
	if dirPerm != 0 {
		if err := os.Chmod(parent, os.FileMode(dirPerm)); err != nil {
			return fmt.Errorf("%w: failed to set permissions on %s: %v", ErrStorage, parent, err)
		}
	}

	wrMode := os.FileMode(filePerm)
	if wrMode == 0 {
		wrMode = 0o644
	}
	if err := os.WriteFile(path, data, wrMode); err != nil {
		return fmt.Errorf("%w: failed to write file %s: %v", ErrStorage, path, err)
	}
	// WriteFile only applies the mode on creation, so enforce it.
	if filePerm != 0 {
		if err := os.Chmod(path, os.FileMode(filePerm)); err != nil {
			return fmt.Errorf("%w: failed to set permissions on %s: %v", ErrStorage, path, err)
		}
	}
	return nil
}

// DeleteDir recursively removes a directory tree. Removing an absent path
// is a no-op.
func DeleteDir(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("%w: failed to remove directory %s: %v", ErrStorage, path, err)
	}
	return nil
}

// RenameDir renames old to new. It fails with ErrNotFound when old is
// absent and ErrExists when new is already present.
func RenameDir(old, new string) error {
	present, err := statPath(old)
	if err != nil {
		return err
	}
	if !present {
		return fmt.Errorf("%w: source directory '%s' not found", ErrNotFound, old)
	}
	present, err = statPath(new)
	if err != nil {
		return err
	}
	if present {
		return fmt.Errorf("%w: destination '%s'", ErrExists, new)
	}
	if err := os.Rename(old, new); err != nil {
		return fmt.Errorf("%w: failed to rename %s to %s: %v", ErrStorage, old, new, err)
	}
	return nil
}

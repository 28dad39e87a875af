package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultDirPermissions is used for directories created by the installer.
const DefaultDirPermissions os.FileMode = 0o755

// EnsureDir creates the directory and any missing parents.
// Creating an existing directory is not an error.
func EnsureDir(path string) error {
	if err := os.MkdirAll(filepath.Clean(path), DefaultDirPermissions); err != nil {
		return fmt.Errorf("create directory %s: %w", path, err)
	}

	return nil
}

// Symlink creates a symbolic link at linkPath pointing at target,
// creating missing parent directories first. A relative target is kept
// as-is so the operating system resolves it against the link's directory.
func Symlink(target, linkPath string) error {
	if err := EnsureDir(filepath.Dir(linkPath)); err != nil {
		return err
	}

	if err := os.Symlink(target, linkPath); err != nil {
		return fmt.Errorf("create link %s: %w", linkPath, err)
	}

	return nil
}

// Package fsutil holds the directory bootstrapping helpers used when a
// pipeline is created with CreatePaths.
package fsutil

import (
	"os"

	"github.com/pkg/errors"
)

// EnsureDir creates the directory and any missing parents.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return errors.Wrapf(err, "unable to create directory %s", path)
	}

	return nil
}

// DirExists reports whether path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, errors.Wrapf(err, "unable to stat %s", path)
	}

	return info.IsDir(), nil
}

package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	rootDirName = ".permcalc"
	dirPerm     = 0o700
)

// DefaultDir is ~/.permcalc.
func DefaultDir() (string, error) {
	base, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("unable to retrieve user home dir: %w", err)
	}
	return filepath.Join(base, rootDirName), nil
}

// EnsureDir creates dir (or the default dir when empty) and returns its
// absolute path.
func EnsureDir(dir string) (string, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return "", err
		}
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve state dir: %w", err)
	}

	if err := os.MkdirAll(abs, dirPerm); err != nil {
		return "", fmt.Errorf("unable to create state dir: %w", err)
	}

	return abs, nil
}

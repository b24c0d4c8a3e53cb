//go:build !linux

package server

import (
	"fmt"
	"io/fs"
	"os"
)

func setSocketPermissions(path string, mode fs.FileMode) error {
	if err := os.Chmod(path, mode); err != nil {
		return fmt.Errorf("chmod socket: %w", err)
	}
	return nil
}

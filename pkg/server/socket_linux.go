//go:build linux

package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"strconv"
)

const socketGroup = "permcalc"

// setSocketPermissions hands the socket to the permcalc group when it exists.
func setSocketPermissions(path string, mode fs.FileMode) error {
	grp, err := user.LookupGroup(socketGroup)
	switch {
	case err == nil:
		gid, err := strconv.Atoi(grp.Gid)
		if err != nil {
			return fmt.Errorf("parse %s group gid %q: %w", socketGroup, grp.Gid, err)
		}
		if err := os.Chown(path, -1, gid); err != nil {
			return fmt.Errorf("chown socket: %w", err)
		}
	case !errors.As(err, new(user.UnknownGroupError)):
		return fmt.Errorf("lookup %s group: %w", socketGroup, err)
	}

	if err := os.Chmod(path, mode); err != nil {
		return fmt.Errorf("chmod socket: %w", err)
	}
	return nil
}

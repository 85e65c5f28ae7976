//go:build linux

package platform

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// reserve allocates disk blocks for [0, size) with fallocate(2), so that
// writes through a mapping cannot fault with SIGBUS on a full disk. Returns
// false if the filesystem does not support it.
//
//nolint:gosec // G115: fd values are small non-negative integers
func reserve(fd *os.File, size int64) (bool, error) {
	err := unix.Fallocate(int(fd.Fd()), 0, 0, size)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, unix.EOPNOTSUPP) || errors.Is(err, unix.ENOSYS) {
		return false, nil
	}
	return false, err
}

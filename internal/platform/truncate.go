package platform

import (
	"os"

	"golang.org/x/sys/unix"
)

// TruncateExtender grows files with ftruncate(2). The added range is a hole
// and reads back as zeros; no data is written.
//
// With Reserve set, blocks are first allocated with fallocate(2) where the
// filesystem supports it. The range still reads as zeros but is no longer
// sparse.
type TruncateExtender struct {
	Reserve bool
}

func (TruncateExtender) Strategy() Strategy { return Truncate }

// Extend sets the length of fd to size if it is currently shorter.
//
//nolint:gosec // G115: fd values are small non-negative integers
func (t TruncateExtender) Extend(fd *os.File, size int64) error {
	if err := checkSize(fd, size); err != nil {
		return err
	}
	cur, err := fileSize(fd)
	if err != nil {
		return err
	}
	if cur >= size {
		return nil
	}
	if t.Reserve {
		ok, err := reserve(fd, size)
		if err != nil {
			return newError("fallocate", fd.Name(), ResizeFailure, err)
		}
		if ok {
			// fallocate with mode 0 already extended the length.
			return nil
		}
	}
	if err := unix.Ftruncate(int(fd.Fd()), size); err != nil {
		return newError("ftruncate", fd.Name(), ResizeFailure, err)
	}
	return nil
}

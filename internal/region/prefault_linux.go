//go:build linux

package region

import "golang.org/x/sys/unix"

// MADV_POPULATE_WRITE was added in Linux 5.14.
const madvPopulateWrite = 23

// prefault asks the kernel to populate the pages for writing. Kernels older
// than 5.14 reject the advice with EINVAL, in which case each page is
// written instead.
func prefault(data []byte, pageSize int) {
	if len(data) == 0 {
		return
	}
	if err := unix.Madvise(data, madvPopulateWrite); err == nil {
		return
	}
	touchPages(data, pageSize)
}

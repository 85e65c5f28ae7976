package platform

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// BlockSize is the size of each zero block written by FillExtender.
const BlockSize = 4096

// FillExtender materializes the file by writing zero blocks over [0, size)
// and then issuing DurabilityBarrier. Existing bytes in that range are
// overwritten, so it is only suitable for scratch files. The zero value is
// ready to use.
type FillExtender struct {
	// pwrite and barrier are replaced in tests; nil means the real syscalls.
	pwrite  func(fd int, p []byte, offset int64) (int, error)
	barrier func() error
}

// NewFillExtender returns a FillExtender that writes with pwrite(2) and
// syncs with DurabilityBarrier.
func NewFillExtender() *FillExtender {
	return &FillExtender{pwrite: unix.Pwrite, barrier: DurabilityBarrier}
}

func (*FillExtender) Strategy() Strategy { return Fill }

// Extend writes zero blocks up to size if fd is currently shorter.
//
//nolint:gosec // G115: fd values are small non-negative integers
func (f *FillExtender) Extend(fd *os.File, size int64) error {
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

	buf := make([]byte, BlockSize)
	rawFd := int(fd.Fd())

	blocks := size / BlockSize
	for i := int64(0); i < blocks; i++ {
		if err := f.writeFull(rawFd, buf, i*BlockSize); err != nil {
			return newError("pwrite", fd.Name(), WriteFailure, err)
		}
	}
	if rem := size % BlockSize; rem > 0 {
		if err := f.writeFull(rawFd, buf[:rem], size-rem); err != nil {
			return newError("pwrite", fd.Name(), WriteFailure, err)
		}
	}

	barrier := f.barrier
	if barrier == nil {
		barrier = DurabilityBarrier
	}
	if err := barrier(); err != nil {
		return newError("sync", fd.Name(), SyncFailure, err)
	}
	return nil
}

func (f *FillExtender) writeFull(fd int, p []byte, offset int64) error {
	pwrite := f.pwrite
	if pwrite == nil {
		pwrite = unix.Pwrite
	}
	written := 0
	for written < len(p) {
		n, err := pwrite(fd, p[written:], offset+int64(written))
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		written += n
	}
	return nil
}

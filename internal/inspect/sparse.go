package inspect

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// Segment describes a contiguous region of a file that is either backed by
// data blocks or a hole.
type Segment struct {
	Offset int64
	Length int64
	IsData bool
}

// Segments lays out [0, size) of fd as alternating holes and data runs,
// found with SEEK_DATA and SEEK_HOLE. A filesystem that cannot report holes
// yields one data segment covering the whole range.
func Segments(fd *os.File, size int64) ([]Segment, error) {
	if size <= 0 {
		return nil, nil
	}
	rawFd := int(fd.Fd()) //nolint:gosec // G115: fd conversion is safe for file descriptors

	var segs []Segment
	for off := int64(0); off < size; {
		data, ok, err := seekTo(rawFd, off, unix.SEEK_DATA, size)
		if err != nil || !ok {
			return wholeFileOr(err, size)
		}
		segs = appendRun(segs, off, data, false)
		if data == size {
			break
		}

		hole, ok, err := seekTo(rawFd, data, unix.SEEK_HOLE, size)
		if err != nil || !ok {
			return wholeFileOr(err, size)
		}
		if hole <= data {
			hole = size
		}
		segs = appendRun(segs, data, hole, true)
		off = hole
	}
	return segs, nil
}

// seekTo runs lseek with whence and clamps the result to size. ENXIO means
// nothing more of the requested kind before EOF, reported as size. ok is
// false when the filesystem does not support whence.
func seekTo(fd int, off int64, whence int, size int64) (int64, bool, error) {
	pos, err := unix.Seek(fd, off, whence)
	switch {
	case errors.Is(err, unix.ENXIO):
		return size, true, nil
	case errors.Is(err, unix.EINVAL):
		return 0, false, nil
	case err != nil:
		return 0, false, err
	}
	return min(pos, size), true, nil
}

func appendRun(segs []Segment, from, to int64, isData bool) []Segment {
	if to <= from {
		return segs
	}
	return append(segs, Segment{Offset: from, Length: to - from, IsData: isData})
}

func wholeFileOr(err error, size int64) ([]Segment, error) {
	if err != nil {
		return nil, err
	}
	return []Segment{{Offset: 0, Length: size, IsData: true}}, nil
}

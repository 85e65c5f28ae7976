// Package region maps backing files after making sure they are long enough.
package region

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/bamsammich/fsize/internal/filesize"
)

// ErrEmptyRegion is returned when asked to map zero bytes.
var ErrEmptyRegion = errors.New("region: cannot map an empty region")

// Region is a read-write shared mapping of [0, size) of a file.
type Region struct {
	file *os.File
	mm   mmap.MMap
}

// Map extends path to at least size bytes with m, then maps the first size
// bytes read-write. The file must already exist.
func Map(m *filesize.Manager, path string, size int64) (*Region, error) {
	if size <= 0 {
		return nil, ErrEmptyRegion
	}
	if size > math.MaxInt {
		return nil, fmt.Errorf("region: size %d exceeds address space", size)
	}

	fd, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	if err := m.Extend(fd, size); err != nil {
		fd.Close()
		return nil, err
	}

	mm, err := mmap.MapRegion(fd, int(size), mmap.RDWR, 0, 0)
	if err != nil {
		fd.Close()
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}
	return &Region{file: fd, mm: mm}, nil
}

// Bytes returns the mapped memory. It is invalid after Close.
func (r *Region) Bytes() []byte { return r.mm }

// Len returns the mapped length.
func (r *Region) Len() int { return len(r.mm) }

// Flush writes dirty pages of the mapping back to the file.
func (r *Region) Flush() error { return r.mm.Flush() }

// Close unmaps the region and closes the file.
func (r *Region) Close() error {
	unmapErr := r.mm.Unmap()
	closeErr := r.file.Close()
	return errors.Join(unmapErr, closeErr)
}

// IsZero reports whether every byte of b is zero.
func IsZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// Touch faults every page of the region in for writing and returns the
// number of pages. pageSize <= 0 means the system page size.
func (r *Region) Touch(pageSize int) int {
	if pageSize <= 0 {
		pageSize = os.Getpagesize()
	}
	prefault(r.mm, pageSize)
	return (len(r.mm) + pageSize - 1) / pageSize
}

// Package inspect reports the length, allocation and content digest of
// backing files.
package inspect

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// Options controls what Inspect computes.
type Options struct {
	// Hash reads the whole file and computes its BLAKE3-256 digest.
	Hash bool
}

// Report describes one file.
type Report struct {
	Path      string
	Size      int64
	Mode      os.FileMode
	DataBytes int64 // bytes inside data segments
	HoleBytes int64 // bytes inside holes
	Segments  []Segment
	Digest    string // hex BLAKE3-256, empty unless Options.Hash
}

// Sparse reports whether any part of the file is a hole.
func (r Report) Sparse() bool { return r.HoleBytes > 0 }

// Inspect opens path read-only and builds its Report.
func Inspect(path string, opts Options) (Report, error) {
	fd, err := os.Open(path)
	if err != nil {
		return Report{}, err
	}
	defer fd.Close()

	info, err := fd.Stat()
	if err != nil {
		return Report{}, err
	}
	if !info.Mode().IsRegular() {
		return Report{}, fmt.Errorf("%s: not a regular file", path)
	}

	r := Report{Path: path, Size: info.Size(), Mode: info.Mode().Perm()}

	r.Segments, err = Segments(fd, r.Size)
	if err != nil {
		return Report{}, fmt.Errorf("map segments of %s: %w", path, err)
	}
	for _, seg := range r.Segments {
		if seg.IsData {
			r.DataBytes += seg.Length
		} else {
			r.HoleBytes += seg.Length
		}
	}

	if opts.Hash {
		r.Digest, err = digest(fd)
		if err != nil {
			return Report{}, fmt.Errorf("hash %s: %w", path, err)
		}
	}
	return r, nil
}

func digest(r io.ReaderAt) (string, error) {
	h := blake3.New()
	if _, err := io.Copy(h, io.NewSectionReader(r, 0, 1<<63-1)); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ZeroDigest returns the hex BLAKE3-256 digest of n zero bytes, the
// expected digest of a freshly extended file of length n.
func ZeroDigest(n int64) string {
	h := blake3.New()
	buf := make([]byte, 64*1024)
	for n > 0 {
		chunk := min(n, int64(len(buf)))
		_, _ = h.Write(buf[:chunk])
		n -= chunk
	}
	return hex.EncodeToString(h.Sum(nil))
}

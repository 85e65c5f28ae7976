package platform

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// Strategy identifies how a file is grown to its target length.
type Strategy int

const (
	Auto     Strategy = iota // resolve to DefaultStrategy
	Truncate                 // ftruncate(2), relies on sparse growth
	Fill                     // pwrite(2) zero blocks, then sync(2)
)

func (s Strategy) String() string {
	switch s {
	case Auto:
		return "auto"
	case Truncate:
		return "truncate"
	case Fill:
		return "fill"
	default:
		return "unknown"
	}
}

// ParseStrategy parses a strategy name as accepted on the command line and
// in the config file. The empty string means Auto.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Auto, nil
	case "truncate":
		return Truncate, nil
	case "fill":
		return Fill, nil
	default:
		return Auto, fmt.Errorf("unknown strategy %q (use auto, truncate or fill)", s)
	}
}

// Resolve maps Auto onto the build's DefaultStrategy.
func (s Strategy) Resolve() Strategy {
	if s == Auto {
		return DefaultStrategy
	}
	return s
}

// Extender grows an open file to at least the requested length. It never
// shrinks the file; a request at or below the current length is a no-op.
type Extender interface {
	Extend(fd *os.File, size int64) error
	Strategy() Strategy
}

// Option configures the Extender returned by New.
type Option func(*options)

type options struct {
	reserve bool
}

// WithReserve makes the truncate strategy allocate blocks with fallocate(2)
// before growing the file. It has no effect on the fill strategy.
func WithReserve(reserve bool) Option {
	return func(o *options) { o.reserve = reserve }
}

// New returns the Extender for the given strategy. Auto resolves to
// DefaultStrategy.
//
//nolint:ireturn // factory returns interface by design
func New(s Strategy, opts ...Option) Extender {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if s.Resolve() == Fill {
		return NewFillExtender()
	}
	return TruncateExtender{Reserve: o.reserve}
}

// fileSize returns the current on-disk length reported by fstat(2).
//
//nolint:gosec // G115: fd values are small non-negative integers
func fileSize(fd *os.File) (int64, error) {
	st, err := fstat(int(fd.Fd()))
	if err != nil {
		return 0, newError("fstat", fd.Name(), MetadataFailure, err)
	}
	return st.Size, nil
}

func checkSize(fd *os.File, size int64) error {
	if size < 0 {
		return newError("extend", fd.Name(), InvalidSize,
			fmt.Errorf("%w: %d", ErrInvalidSize, size))
	}
	return nil
}

func fstat(fd int) (unix.Stat_t, error) {
	var st unix.Stat_t
	err := unix.Fstat(fd, &st)
	return st, err
}

package platform

import (
	"errors"
	"fmt"
	"syscall"
)

// Kind classifies where a size operation failed.
type Kind int

const (
	OpenFailure Kind = iota + 1
	MetadataFailure
	ResizeFailure
	WriteFailure
	SyncFailure
	CloseFailure
	InvalidSize
)

var kindNames = [...]string{
	OpenFailure:     "OpenFailure",
	MetadataFailure: "MetadataFailure",
	ResizeFailure:   "ResizeFailure",
	WriteFailure:    "WriteFailure",
	SyncFailure:     "SyncFailure",
	CloseFailure:    "CloseFailure",
	InvalidSize:     "InvalidSize",
}

func (k Kind) String() string {
	if k > 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// ErrInvalidSize is wrapped by errors for negative size requests.
var ErrInvalidSize = errors.New("size must be non-negative")

// Error reports a failed open, stat, resize, write or sync together with the
// underlying OS error.
type Error struct {
	Op   string // syscall or step, e.g. "open", "ftruncate"
	Path string
	Kind Kind
	Err  error
}

func newError(op, path string, kind Kind, err error) *Error {
	return &Error{Op: op, Path: path, Kind: kind, Err: err}
}

// NewError wraps err as an *Error. Used by callers that perform the open and
// close steps themselves.
func NewError(op, path string, kind Kind, err error) *Error {
	return newError(op, path, kind, err)
}

func (e *Error) Error() string {
	if errno := e.Errno(); errno != 0 {
		return fmt.Sprintf("%s %s: %v (errno %d)", e.Op, e.Path, e.Err, int(errno))
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Errno returns the OS error code behind the failure, or 0 if there is none.
func (e *Error) Errno() syscall.Errno {
	var errno syscall.Errno
	if errors.As(e.Err, &errno) {
		return errno
	}
	return 0
}

// KindOf returns the Kind of err if it is (or wraps) an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

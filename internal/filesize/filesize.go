// Package filesize makes sure backing files are long enough to be mapped.
//
// Failures are returned as *platform.Error values and also logged as a
// diagnostic carrying the failing step, the error kind and the OS errno.
package filesize

import (
	"errors"
	"log/slog"
	"os"

	"github.com/bamsammich/fsize/internal/platform"
)

// CreateMode is the permission set given to files made by CreateFile.
const CreateMode os.FileMode = 0o600

// Manager creates and extends files using a single Extender.
type Manager struct {
	ext    platform.Extender
	logger *slog.Logger
}

// New returns a Manager backed by ext. A nil logger means slog.Default().
func New(ext platform.Extender, logger *slog.Logger) *Manager {
	if ext == nil {
		ext = platform.New(platform.Auto)
	}
	return &Manager{ext: ext, logger: logger}
}

var defaultManager = New(nil, nil)

// CreateFile creates path with the default Manager.
func CreateFile(path string) error { return defaultManager.CreateFile(path) }

// ExtendFile extends path with the default Manager.
func ExtendFile(path string, size int64) error { return defaultManager.ExtendFile(path, size) }

// Extend extends fd with the default Manager.
func Extend(fd *os.File, size int64) error { return defaultManager.Extend(fd, size) }

// Strategy reports which strategy the Manager grows files with.
func (m *Manager) Strategy() platform.Strategy { return m.ext.Strategy() }

func (m *Manager) log() *slog.Logger {
	if m.logger != nil {
		return m.logger
	}
	return slog.Default()
}

// CreateFile creates path, or truncates it if it exists, leaving an empty
// file readable and writable by the owner only.
func (m *Manager) CreateFile(path string) error {
	fd, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, CreateMode)
	if err != nil {
		return m.fail(platform.NewError("open", path, platform.OpenFailure, unwrapPath(err)))
	}
	// O_CREATE leaves the mode of a pre-existing file alone.
	if err := fd.Chmod(CreateMode); err != nil {
		fd.Close()
		return m.fail(platform.NewError("fchmod", path, platform.MetadataFailure, unwrapPath(err)))
	}
	if err := fd.Close(); err != nil {
		return m.fail(platform.NewError("close", path, platform.CloseFailure, unwrapPath(err)))
	}
	m.log().Debug("created file", "path", path)
	return nil
}

// Extend grows fd to at least size bytes. The caller keeps ownership of fd.
func (m *Manager) Extend(fd *os.File, size int64) error {
	if err := m.ext.Extend(fd, size); err != nil {
		return m.fail(err)
	}
	m.log().Debug("extended file",
		"path", fd.Name(),
		"size", size,
		"strategy", m.ext.Strategy().String(),
	)
	return nil
}

// ExtendFile opens an existing path read-write, grows it to at least size
// bytes and closes it. It never creates path.
func (m *Manager) ExtendFile(path string, size int64) error {
	fd, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return m.fail(platform.NewError("open", path, platform.OpenFailure, unwrapPath(err)))
	}

	extErr := m.Extend(fd, size)
	closeErr := fd.Close()
	if extErr != nil {
		return extErr
	}
	if closeErr != nil {
		return m.fail(platform.NewError("close", path, platform.CloseFailure, unwrapPath(closeErr)))
	}
	return nil
}

func (m *Manager) fail(err error) error {
	attrs := []any{"error", err}
	var e *platform.Error
	if errors.As(err, &e) {
		attrs = append(attrs,
			"op", e.Op,
			"path", e.Path,
			"kind", e.Kind.String(),
			"errno", int(e.Errno()),
		)
	}
	m.log().Error("file size operation failed", attrs...)
	return err
}

// unwrapPath strips the *os.PathError layer so the path is not repeated in
// the final message.
func unwrapPath(err error) error {
	var pe *os.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}

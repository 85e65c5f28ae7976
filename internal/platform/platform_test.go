package platform

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func openTemp(t *testing.T, name string) *os.File {
	t.Helper()
	fd, err := os.OpenFile(filepath.Join(t.TempDir(), name), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	require.NoError(t, err)
	t.Cleanup(func() { fd.Close() })
	return fd
}

func sizeOf(t *testing.T, fd *os.File) int64 {
	t.Helper()
	info, err := fd.Stat()
	require.NoError(t, err)
	return info.Size()
}

func assertZeros(t *testing.T, fd *os.File, from, to int64) {
	t.Helper()
	buf := make([]byte, to-from)
	n, err := fd.ReadAt(buf, from)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("byte at offset %d = %#x, want 0", from+int64(i), b)
		}
	}
}

func TestStrategyString(t *testing.T) {
	assert.Equal(t, "auto", Auto.String())
	assert.Equal(t, "truncate", Truncate.String())
	assert.Equal(t, "fill", Fill.String())
	assert.Equal(t, "unknown", Strategy(42).String())
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		input string
		want  Strategy
	}{
		{"", Auto},
		{"auto", Auto},
		{"truncate", Truncate},
		{"FILL", Fill},
		{" fill ", Fill},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStrategy(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseStrategy("fallocate")
	assert.Error(t, err)
}

func TestNewResolvesStrategy(t *testing.T) {
	assert.Equal(t, DefaultStrategy, New(Auto).Strategy())
	assert.Equal(t, Truncate, New(Truncate).Strategy())
	assert.Equal(t, Fill, New(Fill).Strategy())
	assert.Equal(t, TruncateExtender{Reserve: true}, New(Truncate, WithReserve(true)))
}

func TestTruncateExtend(t *testing.T) {
	fd := openTemp(t, "t1")
	ext := TruncateExtender{}

	require.NoError(t, ext.Extend(fd, 10000))
	assert.Equal(t, int64(10000), sizeOf(t, fd))
	assertZeros(t, fd, 0, 10000)

	// Smaller request is a no-op.
	require.NoError(t, ext.Extend(fd, 5000))
	assert.Equal(t, int64(10000), sizeOf(t, fd))

	// Same request again is a no-op.
	require.NoError(t, ext.Extend(fd, 10000))
	assert.Equal(t, int64(10000), sizeOf(t, fd))
}

func TestTruncateExtendKeepsExistingData(t *testing.T) {
	fd := openTemp(t, "data")
	_, err := fd.Write([]byte("hello"))
	require.NoError(t, err)

	require.NoError(t, TruncateExtender{}.Extend(fd, 8192))
	assert.Equal(t, int64(8192), sizeOf(t, fd))

	got := make([]byte, 5)
	_, err = fd.ReadAt(got, 0)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
	assertZeros(t, fd, 5, 8192)
}

func TestTruncateExtendReserve(t *testing.T) {
	fd := openTemp(t, "reserved")

	require.NoError(t, TruncateExtender{Reserve: true}.Extend(fd, 3*BlockSize+1))
	assert.Equal(t, int64(3*BlockSize+1), sizeOf(t, fd))
	assertZeros(t, fd, 0, 3*BlockSize+1)
}

func TestExtendZeroSize(t *testing.T) {
	for _, ext := range []Extender{TruncateExtender{}, NewFillExtender()} {
		t.Run(ext.Strategy().String(), func(t *testing.T) {
			fd := openTemp(t, "empty")
			require.NoError(t, ext.Extend(fd, 0))
			assert.Equal(t, int64(0), sizeOf(t, fd))
		})
	}
}

func TestExtendNegativeSize(t *testing.T) {
	for _, ext := range []Extender{TruncateExtender{}, NewFillExtender()} {
		t.Run(ext.Strategy().String(), func(t *testing.T) {
			fd := openTemp(t, "neg")
			err := ext.Extend(fd, -1)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidSize)

			kind, ok := KindOf(err)
			require.True(t, ok)
			assert.Equal(t, InvalidSize, kind)
			assert.Equal(t, int64(0), sizeOf(t, fd))
		})
	}
}

func TestExtendClosedDescriptor(t *testing.T) {
	for _, ext := range []Extender{TruncateExtender{}, NewFillExtender()} {
		t.Run(ext.Strategy().String(), func(t *testing.T) {
			fd := openTemp(t, "closed")
			require.NoError(t, fd.Close())

			err := ext.Extend(fd, 100)
			require.Error(t, err)
			kind, ok := KindOf(err)
			require.True(t, ok)
			assert.Equal(t, MetadataFailure, kind)
		})
	}
}

func TestTruncateExtendReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ro")
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	fd, err := os.Open(path)
	require.NoError(t, err)
	defer fd.Close()

	err = TruncateExtender{}.Extend(fd, 100)
	require.Error(t, err)

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, ResizeFailure, e.Kind)
	assert.Equal(t, "ftruncate", e.Op)
	assert.NotZero(t, e.Errno())
	assert.Contains(t, e.Error(), "errno")
}

type recordedWrite struct {
	offset int64
	length int
}

func recordingFill(t *testing.T) (*FillExtender, *[]recordedWrite, *int) {
	t.Helper()
	var writes []recordedWrite
	syncs := 0
	f := &FillExtender{
		pwrite: func(fd int, p []byte, offset int64) (int, error) {
			writes = append(writes, recordedWrite{offset: offset, length: len(p)})
			for _, b := range p {
				if b != 0 {
					t.Fatalf("scratch buffer is not zeroed at offset %d", offset)
				}
			}
			return unix.Pwrite(fd, p, offset)
		},
		barrier: func() error {
			syncs++
			return nil
		},
	}
	return f, &writes, &syncs
}

func TestFillExtendBlocks(t *testing.T) {
	fd := openTemp(t, "fill")
	ext, writes, syncs := recordingFill(t)

	require.NoError(t, ext.Extend(fd, 9000))
	assert.Equal(t, int64(9000), sizeOf(t, fd))
	assert.Equal(t, []recordedWrite{
		{offset: 0, length: 4096},
		{offset: 4096, length: 4096},
		{offset: 8192, length: 808},
	}, *writes)
	assert.Equal(t, 1, *syncs)
	assertZeros(t, fd, 0, 9000)
}

func TestFillExtendExactMultiple(t *testing.T) {
	fd := openTemp(t, "exact")
	ext, writes, _ := recordingFill(t)

	require.NoError(t, ext.Extend(fd, 2*BlockSize))
	assert.Len(t, *writes, 2)
	assert.Equal(t, int64(2*BlockSize), sizeOf(t, fd))
}

func TestFillExtendNoop(t *testing.T) {
	fd := openTemp(t, "noop")
	require.NoError(t, fd.Truncate(10000))
	ext, writes, syncs := recordingFill(t)

	require.NoError(t, ext.Extend(fd, 5000))
	assert.Empty(t, *writes)
	assert.Equal(t, 0, *syncs)
	assert.Equal(t, int64(10000), sizeOf(t, fd))
}

func TestFillExtendShortWrites(t *testing.T) {
	fd := openTemp(t, "short")
	calls := 0
	ext := &FillExtender{
		pwrite: func(fd int, p []byte, offset int64) (int, error) {
			calls++
			// Write at most 1000 bytes per call.
			if len(p) > 1000 {
				p = p[:1000]
			}
			return unix.Pwrite(fd, p, offset)
		},
		barrier: func() error { return nil },
	}

	require.NoError(t, ext.Extend(fd, 5000))
	assert.Equal(t, int64(5000), sizeOf(t, fd))
	assert.Equal(t, 6, calls) // 4096 -> 5 calls, 904 -> 1 call
}

func TestFillExtendWriteFailure(t *testing.T) {
	fd := openTemp(t, "wfail")
	synced := false
	ext := &FillExtender{
		pwrite: func(int, []byte, int64) (int, error) {
			return 0, syscall.ENOSPC
		},
		barrier: func() error {
			synced = true
			return nil
		},
	}

	err := ext.Extend(fd, 100)
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, WriteFailure, e.Kind)
	assert.Equal(t, syscall.ENOSPC, e.Errno())
	assert.False(t, synced)
}

func TestFillExtendZeroLengthWrite(t *testing.T) {
	fd := openTemp(t, "zero")
	ext := &FillExtender{
		pwrite:  func(int, []byte, int64) (int, error) { return 0, nil },
		barrier: func() error { return nil },
	}

	err := ext.Extend(fd, 100)
	require.Error(t, err)
	kind, _ := KindOf(err)
	assert.Equal(t, WriteFailure, kind)
}

func TestFillExtendSyncFailure(t *testing.T) {
	fd := openTemp(t, "sfail")
	ext := &FillExtender{
		pwrite:  unix.Pwrite,
		barrier: func() error { return syscall.EIO },
	}

	err := ext.Extend(fd, 100)
	require.Error(t, err)
	kind, _ := KindOf(err)
	assert.Equal(t, SyncFailure, kind)
	assert.True(t, errors.Is(err, syscall.EIO))
}

func TestFillExtendRealBarrier(t *testing.T) {
	fd := openTemp(t, "real")
	require.NoError(t, NewFillExtender().Extend(fd, BlockSize+1))
	assert.Equal(t, int64(BlockSize+1), sizeOf(t, fd))
	assertZeros(t, fd, 0, BlockSize+1)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "OpenFailure", OpenFailure.String())
	assert.Equal(t, "ResizeFailure", ResizeFailure.String())
	assert.Equal(t, "Unknown", Kind(0).String())
	assert.Equal(t, "Unknown", Kind(99).String())
}

func TestKindOfPlainError(t *testing.T) {
	_, ok := KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestFillExtenderZeroValue(t *testing.T) {
	fd := openTemp(t, "zerovalue")
	var ext FillExtender
	require.NoError(t, ext.Extend(fd, 100))
	assert.Equal(t, int64(100), sizeOf(t, fd))
}

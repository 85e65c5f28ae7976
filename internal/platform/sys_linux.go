//go:build linux

package platform

import "golang.org/x/sys/unix"

// DefaultStrategy is Truncate: Linux filesystems grow files sparsely.
const DefaultStrategy = Truncate

// DurabilityBarrier flushes every dirty page on the system with sync(2).
// It is process-wide, not scoped to any one file, and may block for as long
// as the kernel needs to write back all buffered data. Linux sync(2) never
// reports an error.
func DurabilityBarrier() error {
	unix.Sync()
	return nil
}

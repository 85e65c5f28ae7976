//go:build !linux

package platform

import "golang.org/x/sys/unix"

// DefaultStrategy is Fill: sparse growth is not assumed off Linux.
const DefaultStrategy = Fill

// DurabilityBarrier flushes every dirty page on the system with sync(2).
// It is process-wide, not scoped to any one file.
func DurabilityBarrier() error {
	return unix.Sync()
}

//go:build !linux

package platform

import "os"

// reserve is unsupported off Linux (fallocate is Linux-only).
func reserve(_ *os.File, _ int64) (bool, error) { return false, nil }

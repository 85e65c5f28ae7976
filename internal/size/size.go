// Package size converts between byte counts and human-readable sizes.
package size

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	KiB int64 = 1 << (10 * (iota + 1))
	MiB
	GiB
	TiB
)

// Parse parses a human-readable size string into bytes.
// Supports: 100, 100B, 100K, 100M, 100G, 100T (case-insensitive), with an
// optional trailing "iB" ("100KiB"). Uses powers of 1024.
func Parse(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty size string")
	}

	numStr := s
	upper := strings.ToUpper(s)
	if strings.HasSuffix(upper, "IB") && len(s) > 2 {
		numStr = s[:len(s)-2]
		upper = upper[:len(upper)-2]
	}

	multiplier := int64(1)
	switch upper[len(upper)-1] {
	case 'B':
		numStr = numStr[:len(numStr)-1]
	case 'K':
		multiplier = KiB
		numStr = numStr[:len(numStr)-1]
	case 'M':
		multiplier = MiB
		numStr = numStr[:len(numStr)-1]
	case 'G':
		multiplier = GiB
		numStr = numStr[:len(numStr)-1]
	case 'T':
		multiplier = TiB
		numStr = numStr[:len(numStr)-1]
	}

	if numStr == "" || strings.HasPrefix(numStr, "-") {
		return 0, fmt.Errorf("invalid size: %q", s)
	}

	if n, err := strconv.ParseInt(numStr, 10, 64); err == nil {
		if n > (1<<63-1)/multiplier {
			return 0, fmt.Errorf("size overflows int64: %q", s)
		}
		return n * multiplier, nil
	}

	f, err := strconv.ParseFloat(numStr, 64)
	if err != nil || f < 0 || math.IsNaN(f) {
		return 0, fmt.Errorf("invalid size: %q", s)
	}
	v := f * float64(multiplier)
	if v >= 1<<63 {
		return 0, fmt.Errorf("size overflows int64: %q", s)
	}
	return int64(v), nil
}

// Format renders n bytes using binary units, e.g. "9.77 KiB".
func Format(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	units := []string{"KiB", "MiB", "GiB", "TiB", "PiB"}
	val := float64(n) / 1024
	for _, u := range units {
		if val < 1024 {
			if val < 10 {
				return fmt.Sprintf("%.2f %s", val, u)
			}
			if val < 100 {
				return fmt.Sprintf("%.1f %s", val, u)
			}
			return fmt.Sprintf("%.0f %s", val, u)
		}
		val /= 1024
	}
	return fmt.Sprintf("%.1f EiB", val)
}

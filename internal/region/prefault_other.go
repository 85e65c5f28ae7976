//go:build !linux

package region

// prefault writes each page, there being no populate advice off Linux.
func prefault(data []byte, pageSize int) {
	touchPages(data, pageSize)
}

//go:build !unix

package alloc

import "unsafe"

// fallbackAlign mirrors the page alignment an mmap-backed region gets for
// free. The base address feeds block alignment arithmetic downstream.
const fallbackAlign = 4096

// mapRegion falls back to a Go-heap slice when mmap is not available. The
// Region keeps the slice alive, so allocations remain valid until Close.
func mapRegion(length int) ([]byte, func() error, error) {
	raw := make([]byte, length+fallbackAlign)
	addr := uintptr(unsafe.Pointer(&raw[0]))
	shift := 0
	if rem := addr % fallbackAlign; rem != 0 {
		shift = fallbackAlign - int(rem)
	}
	data := raw[shift : shift+length : shift+length]
	return data, func() error { return nil }, nil
}

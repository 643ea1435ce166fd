package alloc

import (
	"os"
	"unsafe"

	"github.com/memkit/memkit/mem"
)

// maxRegionSize keeps block offsets representable as int32 in the allocators
// built on top of a Region.
const maxRegionSize = 1 << 30 // 1 GiB

// Region is a contiguous, page-aligned segment of memory outside the Go
// heap where possible. Allocators carve Regions into blocks; the lifetime of
// every allocation made from a Region ends no later than the Region's Close.
type Region struct {
	data  []byte
	unmap func() error
}

// NewRegion obtains a region of at least size bytes, rounded up to the page
// size.
func NewRegion(size uintptr) (*Region, error) {
	if size == 0 || size > maxRegionSize {
		return nil, ErrRegionSize
	}
	length := int(mem.AlignUp(size, uintptr(os.Getpagesize())))
	data, unmap, err := mapRegion(length)
	if err != nil {
		return nil, err
	}
	return &Region{data: data, unmap: unmap}, nil
}

// Bytes returns the backing segment.
func (r *Region) Bytes() []byte { return r.data }

// Base returns the address of the first byte.
func (r *Region) Base() unsafe.Pointer {
	if len(r.data) == 0 {
		return nil
	}
	return unsafe.Pointer(&r.data[0])
}

// Size returns the segment length in bytes.
func (r *Region) Size() uintptr { return uintptr(len(r.data)) }

// Contains reports whether p points into the region.
func (r *Region) Contains(p unsafe.Pointer) bool {
	if p == nil || len(r.data) == 0 {
		return false
	}
	base := uintptr(r.Base())
	return uintptr(p) >= base && uintptr(p) < base+r.Size()
}

// Close returns the segment to the OS. Calling Close twice is a no-op.
func (r *Region) Close() error {
	if r.data == nil {
		return nil
	}
	r.data = nil
	return r.unmap()
}

package alloc

import (
	"unsafe"

	"github.com/memkit/memkit/mem"
)

// BumpAllocator is an append-only arena over a single Region. Allocation is
// a pointer bump, Release is a no-op, and the whole arena is recycled at
// once with Reset. Because objects are never torn down individually, the
// arena declares mem.CapSkipsDispose and ownership handles built on it skip
// element Dispose calls.
//
// Resize succeeds only for the most recent allocation, where the bump
// pointer can be moved without disturbing anything else.
type BumpAllocator struct {
	region *Region

	// next is the bump pointer: the region offset of the next allocation.
	next uintptr

	// last/lastEnd bracket the most recent allocation, the only one that
	// can be resized in place. last == noLast when nothing is resizable.
	last    uintptr
	lastEnd uintptr

	allocs uint64
}

const noLast = ^uintptr(0)

// NewBump returns an arena carving r. The caller retains ownership of r and
// must keep it open for the arena's lifetime.
func NewBump(r *Region) *BumpAllocator {
	return &BumpAllocator{region: r, last: noLast}
}

// Capabilities reports recognition plus wholesale teardown.
func (b *BumpAllocator) Capabilities() mem.Capabilities {
	return mem.CapRecognizes | mem.CapSkipsDispose
}

// Allocate bumps the pointer past an aligned slot for layout, or returns nil
// when the region is exhausted.
func (b *BumpAllocator) Allocate(layout mem.Layout) unsafe.Pointer {
	if layout.Size == 0 {
		return nil
	}
	align := layout.Align
	if align == 0 {
		align = mem.MaxAlign
	}
	base := uintptr(b.region.Base())
	off := mem.AlignUp(base+b.next, align) - base
	end := off + layout.Size
	if end < off || end > b.region.Size() {
		return nil
	}
	b.last = off
	b.lastEnd = end
	b.next = end
	b.allocs++
	return unsafe.Add(b.region.Base(), off)
}

// Release is a no-op: bump memory is reclaimed wholesale by Reset.
func (b *BumpAllocator) Release(p unsafe.Pointer) {}

// Resize moves the bump pointer when p is the most recent allocation and the
// new end still fits. Any other allocation cannot move in place.
func (b *BumpAllocator) Resize(p unsafe.Pointer, newSize uintptr) bool {
	if p == nil || newSize == 0 || b.last == noLast {
		return false
	}
	if p != unsafe.Add(b.region.Base(), b.last) {
		return false
	}
	end := b.last + newSize
	if end < b.last || end > b.region.Size() {
		return false
	}
	b.lastEnd = end
	b.next = end
	return true
}

// Capacity returns the region size.
func (b *BumpAllocator) Capacity() uintptr { return b.region.Size() }

// GetLayout is unsupported; the arena keeps no per-allocation metadata.
func (b *BumpAllocator) GetLayout(kind mem.LayoutKind, p unsafe.Pointer) mem.Layout {
	return mem.Layout{}
}

// Recognizes reports whether p lies in the allocated prefix of the region.
func (b *BumpAllocator) Recognizes(p unsafe.Pointer) bool {
	if !b.region.Contains(p) {
		return false
	}
	return uintptr(p)-uintptr(b.region.Base()) < b.next
}

// Reset recycles the arena. Every previously returned address becomes
// invalid immediately.
func (b *BumpAllocator) Reset() {
	b.next = 0
	b.last = noLast
	b.lastEnd = 0
}

// Used returns the bytes consumed so far, padding included.
func (b *BumpAllocator) Used() uintptr { return b.next }

// Allocs returns the number of successful allocations since construction.
func (b *BumpAllocator) Allocs() uint64 { return b.allocs }

var _ mem.Allocator = (*BumpAllocator)(nil)

package alloc

import (
	"math/bits"
	"unsafe"

	"github.com/memkit/memkit/mem"
)

const (
	// hdrSize is the boundary-tag header in front of every block.
	hdrSize = int32(unsafe.Sizeof(blockHeader{}))

	// minBlockSize is the smallest block worth carving out: header plus
	// room for the free-list links and a little payload.
	minBlockSize = int32(32)

	// maxAlignRequest caps the alignment BestFitAllocator will honor; the
	// region base itself is only page-aligned.
	maxAlignRequest = uintptr(4096)

	// noBlock terminates free-list chains.
	noBlock = int32(-1)
)

// blockHeader sits at the start of every block. size is the total block size
// including the header; an allocated block stores it negated, so the sign
// carries the allocation state. prevSize is the boundary tag of the
// physically preceding block (0 for the first block), enabling backward
// coalescing without a footer.
type blockHeader struct {
	size      int32
	prevSize  int32
	requested uint32
	pad       uint16 // payload offset past the header (alignment correction)
	alignLog2 uint8
	_         uint8
}

// freeLinks lives in the payload area of free blocks only.
type freeLinks struct {
	next, prev int32
}

// BestFitAllocator is a general-purpose provider over one Region: best-fit
// search of a free list, block splitting, bidirectional coalescing, and
// in-place resize in both directions. Allocated payload addresses are kept
// in an index so release, introspection, and recognition are O(1).
type BestFitAllocator struct {
	region   *Region
	freeHead int32
	index    map[uintptr]int32
	inUse    uintptr
	allocs   uint64
	releases uint64
}

// NewBestFit builds an allocator owning the whole of r. The caller keeps r
// open for the allocator's lifetime.
func NewBestFit(r *Region) (*BestFitAllocator, error) {
	if r.Size() < uintptr(minBlockSize) {
		return nil, ErrRegionTooSmall
	}
	if r.Size() > maxRegionSize {
		return nil, ErrRegionSize
	}
	a := &BestFitAllocator{
		region:   r,
		freeHead: noBlock,
		index:    make(map[uintptr]int32),
	}
	h := a.hdr(0)
	h.size = int32(r.Size())
	h.prevSize = 0
	a.pushFree(0)
	return a, nil
}

func (a *BestFitAllocator) base() uintptr { return uintptr(a.region.Base()) }

func (a *BestFitAllocator) hdr(off int32) *blockHeader {
	return (*blockHeader)(unsafe.Pointer(&a.region.data[off]))
}

func (a *BestFitAllocator) links(off int32) *freeLinks {
	return (*freeLinks)(unsafe.Pointer(&a.region.data[off+hdrSize]))
}

func (a *BestFitAllocator) pushFree(off int32) {
	l := a.links(off)
	l.prev = noBlock
	l.next = a.freeHead
	if a.freeHead != noBlock {
		a.links(a.freeHead).prev = off
	}
	a.freeHead = off
}

func (a *BestFitAllocator) removeFree(off int32) {
	l := a.links(off)
	if l.prev != noBlock {
		a.links(l.prev).next = l.next
	} else {
		a.freeHead = l.next
	}
	if l.next != noBlock {
		a.links(l.next).prev = l.prev
	}
}

// setPrevSize updates the boundary tag of the block following [off, off+size).
func (a *BestFitAllocator) setPrevSize(off, size int32) {
	follow := off + size
	if uintptr(follow) < a.region.Size() {
		a.hdr(follow).prevSize = size
	}
}

// Capabilities reports full layout introspection plus recognition.
func (a *BestFitAllocator) Capabilities() mem.Capabilities {
	return mem.CapRequestedLayout | mem.CapUsableLayout |
		mem.CapAllocatedLayout | mem.CapRecognizes
}

// Allocate finds the smallest free block that can carry layout, splits off
// any worthwhile tail, and returns the aligned payload address. It returns
// nil when no block fits.
func (a *BestFitAllocator) Allocate(layout mem.Layout) unsafe.Pointer {
	if layout.Size == 0 {
		return nil
	}
	align := layout.Align
	if align == 0 {
		align = mem.MaxAlign
	}
	if align > maxAlignRequest || align&(align-1) != 0 {
		return nil
	}

	// Best-fit scan: smallest block whose aligned payload still fits.
	best := noBlock
	var bestPayload uintptr
	for off := a.freeHead; off != noBlock; off = a.links(off).next {
		h := a.hdr(off)
		payload := mem.AlignUp(a.base()+uintptr(off)+uintptr(hdrSize), align)
		if payload+layout.Size <= a.base()+uintptr(off)+uintptr(h.size) {
			if best == noBlock || h.size < a.hdr(best).size {
				best = off
				bestPayload = payload
			}
		}
	}
	if best == noBlock {
		return nil
	}

	a.removeFree(best)
	h := a.hdr(best)
	size := h.size

	// Split off the tail when it can stand alone as a block.
	cut := int32(mem.AlignUp(bestPayload+layout.Size-a.base(), 8))
	if tail := best + size - cut; tail >= minBlockSize {
		size = cut - best
		th := a.hdr(cut)
		th.size = tail
		th.prevSize = size
		a.setPrevSize(cut, tail)
		a.pushFree(cut)
	}

	h.size = -size
	h.requested = uint32(layout.Size)
	h.pad = uint16(bestPayload - (a.base() + uintptr(best) + uintptr(hdrSize)))
	h.alignLog2 = uint8(bits.TrailingZeros(uint(align)))
	a.setPrevSize(best, size)

	a.index[bestPayload] = best
	a.inUse += uintptr(size)
	a.allocs++
	return unsafe.Pointer(&a.region.data[bestPayload-a.base()])
}

// Release returns p's block to the free list, coalescing with its physical
// neighbors. A nil or unrecognized p is a no-op.
func (a *BestFitAllocator) Release(p unsafe.Pointer) {
	if p == nil {
		return
	}
	off, ok := a.index[uintptr(p)]
	if !ok {
		return
	}
	delete(a.index, uintptr(p))

	h := a.hdr(off)
	size := -h.size
	a.inUse -= uintptr(size)
	a.releases++

	// Forward coalesce.
	if next := off + size; uintptr(next) < a.region.Size() && a.hdr(next).size > 0 {
		a.removeFree(next)
		size += a.hdr(next).size
	}

	// Backward coalesce via the boundary tag.
	if h.prevSize > 0 {
		prev := off - h.prevSize
		if ph := a.hdr(prev); ph.size > 0 {
			a.removeFree(prev)
			size += ph.size
			off = prev
			h = ph
		}
	}

	h.size = size
	a.setPrevSize(off, size)
	a.pushFree(off)
}

// Resize changes p's allocation to newSize in place. Shrinking gives the
// tail back to the free list; growing succeeds only when the physically next
// block is free and large enough. On failure the allocation is untouched.
func (a *BestFitAllocator) Resize(p unsafe.Pointer, newSize uintptr) bool {
	if p == nil || newSize == 0 {
		return false
	}
	off, ok := a.index[uintptr(p)]
	if !ok {
		return false
	}
	h := a.hdr(off)
	size := -h.size
	newEnd := uintptr(p) + newSize
	blockEnd := a.base() + uintptr(off) + uintptr(size)

	if newEnd > blockEnd {
		// Absorb the next block if it is free and closes the gap.
		next := off + size
		if uintptr(next) >= a.region.Size() {
			return false
		}
		nh := a.hdr(next)
		if nh.size <= 0 || blockEnd+uintptr(nh.size) < newEnd {
			return false
		}
		a.removeFree(next)
		size += nh.size
		h.size = -size
		a.inUse += uintptr(nh.size)
		a.setPrevSize(off, size)
	}

	// Give back any worthwhile tail past the new end.
	cut := int32(mem.AlignUp(newEnd-a.base(), 8))
	if cut < off+hdrSize {
		cut = off + hdrSize
	}
	if tail := off + size - cut; tail >= minBlockSize {
		size = cut - off
		h.size = -size
		a.inUse -= uintptr(tail)
		a.setPrevSize(off, size)

		th := a.hdr(cut)
		th.size = tail
		th.prevSize = size

		// The tail may itself touch a free neighbor.
		if follow := cut + tail; uintptr(follow) < a.region.Size() && a.hdr(follow).size > 0 {
			a.removeFree(follow)
			th.size += a.hdr(follow).size
			tail = th.size
		}
		a.setPrevSize(cut, tail)
		a.pushFree(cut)
	}

	h.requested = uint32(newSize)
	return true
}

// Capacity returns the region size.
func (a *BestFitAllocator) Capacity() uintptr { return a.region.Size() }

// GetLayout reports the requested, usable, or total-reserved layout of p.
func (a *BestFitAllocator) GetLayout(kind mem.LayoutKind, p unsafe.Pointer) mem.Layout {
	if p == nil {
		return mem.Layout{}
	}
	off, ok := a.index[uintptr(p)]
	if !ok {
		return mem.Layout{}
	}
	h := a.hdr(off)
	size := uintptr(-h.size)
	align := uintptr(1) << h.alignLog2
	switch kind {
	case mem.LayoutRequested:
		return mem.Layout{Size: uintptr(h.requested), Align: align}
	case mem.LayoutUsable:
		blockEnd := a.base() + uintptr(off) + size
		return mem.Layout{Size: blockEnd - uintptr(p), Align: align}
	case mem.LayoutAllocated:
		return mem.Layout{Size: size, Align: 8}
	default:
		return mem.Layout{}
	}
}

// Recognizes reports whether p is a live allocation of this provider.
func (a *BestFitAllocator) Recognizes(p unsafe.Pointer) bool {
	_, ok := a.index[uintptr(p)]
	return ok
}

// Stats is a point-in-time usage snapshot.
type Stats struct {
	Capacity        uintptr
	InUse           uintptr
	FreeBytes       uintptr
	LargestFree     uintptr
	AllocatedBlocks int
	FreeBlocks      int
	Allocs          uint64
	Releases        uint64
}

// Stats walks the free list and returns current usage and fragmentation
// numbers.
func (a *BestFitAllocator) Stats() Stats {
	s := Stats{
		Capacity:        a.region.Size(),
		InUse:           a.inUse,
		AllocatedBlocks: len(a.index),
		Allocs:          a.allocs,
		Releases:        a.releases,
	}
	for off := a.freeHead; off != noBlock; off = a.links(off).next {
		sz := uintptr(a.hdr(off).size)
		s.FreeBytes += sz
		if sz > s.LargestFree {
			s.LargestFree = sz
		}
		s.FreeBlocks++
	}
	return s
}

var _ mem.Allocator = (*BestFitAllocator)(nil)

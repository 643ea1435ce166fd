package ref

import (
	"sync/atomic"
	"unsafe"

	"github.com/memkit/memkit/mem"
)

// action is the caller's obligation after a decrement.
type action uint8

const (
	// actionNone: other references remain, nothing to do.
	actionNone action = iota

	// actionExpire: the last shared reference dropped but weak references
	// survive. Tear down the object; the control block stays.
	actionExpire

	// actionFree: the last reference of any kind dropped. The control
	// block's memory goes too.
	actionFree
)

const (
	countMask = uint32(0xffff)
	weakShift = 16
	maxCount  = uint32(0xffff)

	weakOne = uint32(1) << weakShift
	bothOne = weakOne | 1
)

// controlBlock is the shared metadata for one allocation. It is plain data
// placed inside provider memory, at the start of the combined block for
// in-place creation or in a block of its own for promotion. The owning
// Allocator is carried by every handle instead, since Go interface values
// must stay on the Go heap where the collector can see them.
type controlBlock struct {
	// counts packs the weak count (high 16 bits) and shared count (low 16)
	// into one word so both move in a single atomic operation.
	counts atomic.Uint32

	elems uint32
	flags uint32
	_     uint32

	// data is the managed object's address: inside the combined block, or
	// in a separate allocation for promoted Uniques.
	data unsafe.Pointer
}

const (
	// flagExternalData: data lives in its own allocation (promotion) and
	// must be released separately when the object dies.
	flagExternalData uint32 = 1 << 0
)

var ctrlLayout = mem.Layout{
	Size:  unsafe.Sizeof(controlBlock{}),
	Align: unsafe.Alignof(controlBlock{}),
}

func sharedOf(v uint32) uint32 { return v & countMask }
func weakOf(v uint32) uint32   { return v >> weakShift }

// newControlBlock performs one allocation sized for metadata plus data: the
// control block at the start, the object region at the alignment-corrected
// offset right after it. Returns nils when the provider cannot satisfy the
// request. Counts start at (weak=1, shared=1).
func newControlBlock(a mem.Allocator, objLayout mem.Layout, elems uintptr) (*controlBlock, unsafe.Pointer) {
	objAlign := objLayout.Align
	if objAlign == 0 {
		objAlign = mem.MaxAlign
	}
	dataOff := mem.AlignUp(ctrlLayout.Size, objAlign)

	align := objAlign
	if align < ctrlLayout.Align {
		align = ctrlLayout.Align
	}
	full, err := mem.Layout{Size: dataOff, Align: align}.Extend(objLayout.Size)
	if err != nil {
		return nil, nil
	}

	p := a.Allocate(full)
	if p == nil {
		return nil, nil
	}
	cb := (*controlBlock)(p)
	data := unsafe.Add(p, dataOff)
	cb.counts.Store(bothOne)
	cb.elems = uint32(elems)
	cb.flags = 0
	cb.data = data
	return cb, data
}

// promoteControlBlock allocates a metadata-only block pointing at existing,
// already-constructed data. No data copy takes place. Returns nil when the
// provider cannot satisfy the request; the data is untouched either way.
func promoteControlBlock(a mem.Allocator, data unsafe.Pointer, elems uintptr) *controlBlock {
	p := a.Allocate(ctrlLayout)
	if p == nil {
		return nil
	}
	cb := (*controlBlock)(p)
	cb.counts.Store(bothOne)
	cb.elems = uint32(elems)
	cb.flags = flagExternalData
	cb.data = data
	return cb
}

// incrementShared adds a shared reference, which implies a weak reference,
// so both fields move together. It fails when the object is already gone
// (shared == 0) or either count would overflow, retrying on contention until
// it succeeds or the precondition turns false.
func (c *controlBlock) incrementShared() bool {
	c.checkCounts()
	for {
		v := c.counts.Load()
		if sharedOf(v) == 0 || sharedOf(v) == maxCount || weakOf(v) == maxCount {
			return false
		}
		if c.counts.CompareAndSwap(v, v+bothOne) {
			c.checkCounts()
			return true
		}
	}
}

// incrementWeak adds a weak reference only. It fails when the control block
// is already on its way out (weak == 0) or the count would overflow.
func (c *controlBlock) incrementWeak() bool {
	c.checkCounts()
	for {
		v := c.counts.Load()
		if weakOf(v) == 0 || weakOf(v) == maxCount {
			return false
		}
		if c.counts.CompareAndSwap(v, v+weakOne) {
			c.checkCounts()
			return true
		}
	}
}

// decrementShared drops one shared (and its implied weak) reference with a
// single unconditional atomic subtract; no precondition needs checking, so
// no CAS loop is involved and the operation cannot be starved.
func (c *controlBlock) decrementShared() action {
	c.checkCounts()
	prev := c.counts.Add(^bothOne+1) + bothOne // two's-complement subtract
	switch {
	case weakOf(prev) == 1 && sharedOf(prev) == 1:
		return actionFree
	case sharedOf(prev) == 1:
		c.checkCounts()
		return actionExpire
	default:
		c.checkCounts()
		return actionNone
	}
}

// decrementWeak drops one weak reference.
func (c *controlBlock) decrementWeak() action {
	c.checkCounts()
	prev := c.counts.Add(^weakOne+1) + weakOne
	if weakOf(prev) == 1 {
		return actionFree
	}
	c.checkCounts()
	return actionNone
}

// useCount returns the current shared count.
func (c *controlBlock) useCount() uint32 {
	return sharedOf(c.counts.Load())
}

package alloc

import (
	"unsafe"

	"github.com/memkit/memkit/mem"
)

// TrackingAllocator forwards to a wrapped Allocator while keeping a ledger
// of live allocations. The ledger lets it answer requested-layout and
// recognition queries the wrapped provider may not support, so the composed
// capability set gains mem.CapRequestedLayout and mem.CapRecognizes on top
// of whatever the wrapped provider declares.
type TrackingAllocator struct {
	inner  mem.Allocator
	ledger map[uintptr]mem.Layout

	allocs   uint64
	releases uint64
	failed   uint64
	inUse    uintptr
	peak     uintptr
}

// TrackingStats is a snapshot of a TrackingAllocator's counters.
type TrackingStats struct {
	Allocs   uint64
	Releases uint64
	Failed   uint64
	InUse    uintptr
	Peak     uintptr
}

// NewTracking wraps inner with allocation accounting.
func NewTracking(inner mem.Allocator) *TrackingAllocator {
	return &TrackingAllocator{
		inner:  inner,
		ledger: make(map[uintptr]mem.Layout),
	}
}

// Capabilities composes the wrapped set with the capabilities the ledger
// provides on its own.
func (t *TrackingAllocator) Capabilities() mem.Capabilities {
	return t.inner.Capabilities().Union(mem.CapRequestedLayout | mem.CapRecognizes)
}

// Allocate forwards and records the requested layout on success.
func (t *TrackingAllocator) Allocate(layout mem.Layout) unsafe.Pointer {
	p := t.inner.Allocate(layout)
	if p == nil {
		t.failed++
		return nil
	}
	t.ledger[uintptr(p)] = layout
	t.allocs++
	t.inUse += layout.Size
	if t.inUse > t.peak {
		t.peak = t.inUse
	}
	return p
}

// Release forwards and settles the ledger entry.
func (t *TrackingAllocator) Release(p unsafe.Pointer) {
	if p == nil {
		return
	}
	if layout, ok := t.ledger[uintptr(p)]; ok {
		t.inUse -= layout.Size
		t.releases++
		delete(t.ledger, uintptr(p))
	}
	t.inner.Release(p)
}

// Resize forwards and, on success, updates the recorded size.
func (t *TrackingAllocator) Resize(p unsafe.Pointer, newSize uintptr) bool {
	if !t.inner.Resize(p, newSize) {
		return false
	}
	if layout, ok := t.ledger[uintptr(p)]; ok {
		t.inUse -= layout.Size
		t.inUse += newSize
		layout.Size = newSize
		t.ledger[uintptr(p)] = layout
		if t.inUse > t.peak {
			t.peak = t.inUse
		}
	}
	return true
}

// Capacity forwards to the wrapped provider.
func (t *TrackingAllocator) Capacity() uintptr { return t.inner.Capacity() }

// GetLayout answers requested-layout queries from the ledger and forwards
// everything else.
func (t *TrackingAllocator) GetLayout(kind mem.LayoutKind, p unsafe.Pointer) mem.Layout {
	if kind == mem.LayoutRequested {
		if layout, ok := t.ledger[uintptr(p)]; ok {
			return layout
		}
	}
	return t.inner.GetLayout(kind, p)
}

// Recognizes consults the ledger first, then the wrapped provider.
func (t *TrackingAllocator) Recognizes(p unsafe.Pointer) bool {
	if _, ok := t.ledger[uintptr(p)]; ok {
		return true
	}
	return t.inner.Recognizes(p)
}

// Metrics returns a snapshot of the accounting counters.
func (t *TrackingAllocator) Metrics() TrackingStats {
	return TrackingStats{
		Allocs:   t.allocs,
		Releases: t.releases,
		Failed:   t.failed,
		InUse:    t.inUse,
		Peak:     t.peak,
	}
}

var _ mem.Allocator = (*TrackingAllocator)(nil)

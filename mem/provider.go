package mem

import "unsafe"

// Unbounded is the Capacity value of providers that do not track a limit.
const Unbounded = ^uintptr(0)

// LayoutKind selects which of the three layouts associated with an
// allocation a GetLayout call reports. The requested size, the size usable
// without corruption, and the size actually reserved (metadata included)
// may all legitimately differ.
type LayoutKind uint8

const (
	// LayoutRequested is the layout the caller passed to Allocate.
	LayoutRequested LayoutKind = iota

	// LayoutUsable is the largest layout the caller may use in place.
	LayoutUsable

	// LayoutAllocated is the total reservation, including provider overhead.
	LayoutAllocated
)

// Deallocator is the release-and-introspection half of a memory provider.
// Ownership handles depend only on this interface; the full Allocator is
// required only at the call sites that actually allocate.
//
// Deallocator implementations are not required to be goroutine-safe; that is
// the concrete provider's concern.
type Deallocator interface {
	// Capabilities returns the provider's capability set, fixed at
	// construction.
	Capabilities() Capabilities

	// Release reclaims p. A nil p is a no-op. p must have been returned by
	// this same provider; anything else is undefined behavior, not a
	// recoverable error.
	Release(p unsafe.Pointer)

	// Capacity returns the total bytes this provider can manage, or
	// Unbounded when it does not track one.
	Capacity() uintptr

	// GetLayout reports the layout of kind associated with a previously
	// provided p, or the zero Layout when the query is unsupported or p is
	// unrecognized.
	GetLayout(kind LayoutKind, p unsafe.Pointer) Layout

	// Recognizes reports whether this provider produced p. It exists to
	// route a call to the correct one of several disjoint providers, never
	// to pre-validate a Release against an unrelated provider.
	Recognizes(p unsafe.Pointer) bool
}

// Allocator is a Deallocator that can also satisfy arbitrary-layout
// allocation requests and resize them in place.
type Allocator interface {
	Deallocator

	// Allocate returns memory satisfying layout, or nil when the request
	// cannot be satisfied. It never panics on exhaustion.
	Allocate(layout Layout) unsafe.Pointer

	// Resize grows or shrinks the allocation at p to newSize in place.
	// On failure it returns false and leaves the allocation untouched.
	Resize(p unsafe.Pointer, newSize uintptr) bool
}

// Pool is a Deallocator that allocates with a single Layout bound at
// construction.
type Pool interface {
	Deallocator

	// Allocate returns memory satisfying the bound layout, or nil.
	Allocate() unsafe.Pointer

	// Layout returns the layout bound at construction.
	Layout() Layout
}

// Disposer is implemented by element types that need teardown before their
// memory is reclaimed. It is the explicit stand-in for a destructor.
type Disposer interface {
	Dispose()
}

// DestroyAndRelease disposes the n elements starting at p, unless d declares
// CapSkipsDispose, and then releases the memory through d. A nil p is a
// no-op. It is the single terminal-cleanup path shared by Unique and Shared
// handles.
func DestroyAndRelease[T any](d Deallocator, p *T, n uintptr) {
	if p == nil {
		return
	}
	if !d.Capabilities().Has(CapSkipsDispose) {
		DisposeAll(p, n)
	}
	d.Release(unsafe.Pointer(p))
}

// DisposeAll runs Dispose on each of the n elements starting at p, for
// element types that implement Disposer. Types that do not are left alone.
func DisposeAll[T any](p *T, n uintptr) {
	if p == nil || n == 0 {
		return
	}
	if _, ok := any(p).(Disposer); !ok {
		return
	}
	elems := unsafe.Slice(p, n)
	for i := range elems {
		any(&elems[i]).(Disposer).Dispose()
	}
}

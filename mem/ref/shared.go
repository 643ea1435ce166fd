package ref

import (
	"unsafe"

	"github.com/memkit/memkit/mem"
)

// Shared is a reference-counted owner of provider-allocated memory. Copies
// made through Clone observe the same value and share one control block; the
// value is torn down when the last Shared drops, its memory when the last
// Weak drops too.
type Shared[T any] struct {
	val *T
	cb  *controlBlock
	a   mem.Allocator
}

// Owner is the common ordering facet of Shared and Weak handles: a strict
// weak ordering over control-block identity, usable to key mixed handles
// from the same allocation in ordered containers.
type Owner interface {
	owner() uintptr
}

// MakeShared allocates a T together with its control block in one block,
// copies v into place, and returns the first owning handle. The zero Shared
// is returned on allocation failure, retaining nothing.
func MakeShared[T any](a mem.Allocator, v T) Shared[T] {
	cb, data := newControlBlock(a, mem.LayoutOf[T](), 1)
	if cb == nil {
		return Shared[T]{}
	}
	tp := (*T)(data)
	*tp = v
	return Shared[T]{val: tp, cb: cb, a: a}
}

// MakeSharedSlice allocates n zeroed contiguous Ts under one control block.
func MakeSharedSlice[T any](a mem.Allocator, n uintptr) Shared[T] {
	if n == 0 {
		return Shared[T]{}
	}
	layout, err := mem.LayoutOfSlice[T](n)
	if err != nil {
		return Shared[T]{}
	}
	cb, data := newControlBlock(a, layout, n)
	if cb == nil {
		return Shared[T]{}
	}
	tp := (*T)(data)
	clear(unsafe.Slice(tp, n))
	return Shared[T]{val: tp, cb: cb, a: a}
}

// FromUnique promotes a live Unique into shared ownership by allocating a
// metadata-only control block pointed at the existing data; nothing is
// copied or re-constructed. Promotion needs arbitrary-layout allocation, so
// it fails cleanly when the Unique's deallocator is not an Allocator, and
// likewise on allocation failure. In every failure case the Unique is left
// fully intact and usable, making the operation retryable; it is cleared
// only on success.
func FromUnique[T any](u *Unique[T]) Shared[T] {
	if u == nil || u.val == nil {
		return Shared[T]{}
	}
	a, ok := u.dealloc.(mem.Allocator)
	if !ok {
		return Shared[T]{}
	}
	cb := promoteControlBlock(a, unsafe.Pointer(u.val), u.elems)
	if cb == nil {
		return Shared[T]{}
	}
	out := Shared[T]{val: u.val, cb: cb, a: a}
	*u = Unique[T]{}
	return out
}

// Clone adds a shared reference and returns the copy. Cloning the zero
// handle yields the zero handle; a live handle guarantees shared >= 1, so
// the only other way to get an empty result is counter saturation.
func (s *Shared[T]) Clone() Shared[T] {
	if s.cb == nil {
		return Shared[T]{}
	}
	if !s.cb.incrementShared() {
		return Shared[T]{}
	}
	return *s
}

// Move transfers the reference out of s, leaving it empty. The count is
// untouched.
func (s *Shared[T]) Move() Shared[T] {
	out := *s
	*s = Shared[T]{}
	return out
}

// Get returns the referenced value, or nil for the zero handle.
func (s *Shared[T]) Get() *T { return s.val }

// Slice views the referenced elements. Nil for the zero handle.
func (s *Shared[T]) Slice() []T {
	if s.val == nil {
		return nil
	}
	return unsafe.Slice(s.val, uintptr(s.cb.elems))
}

// IsZero reports whether the handle references nothing.
func (s *Shared[T]) IsZero() bool { return s.cb == nil }

// UseCount returns the current shared count, 0 for the zero handle.
func (s *Shared[T]) UseCount() uint32 {
	if s.cb == nil {
		return 0
	}
	return s.cb.useCount()
}

// Len returns the element count recorded in the control block.
func (s *Shared[T]) Len() uintptr {
	if s.cb == nil {
		return 0
	}
	return uintptr(s.cb.elems)
}

// Reset drops this reference and empties the handle. When the last shared
// reference drops the object is torn down; when weak references survive the
// combined block is shrunk in place to the control block's own footprint,
// keeping its address stable for outstanding Weak handles. When the resize
// cannot shrink in place the oversized block simply stays put. Idempotent.
func (s *Shared[T]) Reset() {
	if s.cb == nil {
		return
	}
	val, cb, a := s.val, s.cb, s.a
	*s = Shared[T]{}

	switch cb.decrementShared() {
	case actionNone:
	case actionExpire:
		external := cb.flags&flagExternalData != 0
		finalize(a, cb, val)
		if !external {
			_ = a.Resize(unsafe.Pointer(cb), ctrlLayout.Size)
		}
	case actionFree:
		finalize(a, cb, val)
		a.Release(unsafe.Pointer(cb))
	}
}

// finalize tears the object down exactly once: Dispose per element unless
// the provider skips dispose, plus release of the separate data block when
// the control block was created by promotion.
func finalize[T any](a mem.Allocator, cb *controlBlock, val *T) {
	if cb.flags&flagExternalData != 0 {
		mem.DestroyAndRelease(a, val, uintptr(cb.elems))
		return
	}
	if !a.Capabilities().Has(mem.CapSkipsDispose) {
		mem.DisposeAll(val, uintptr(cb.elems))
	}
}

// owner implements Owner.
func (s *Shared[T]) owner() uintptr { return uintptr(unsafe.Pointer(s.cb)) }

// OwnerBefore orders this handle before o by control-block identity:
// irreflexive, asymmetric, transitive, and consistent across Shared and
// Weak handles of the same allocation.
func (s *Shared[T]) OwnerBefore(o Owner) bool { return s.owner() < o.owner() }

// Equal reports whether both handles reference the same object through the
// same control block. Comparing the control block too avoids false
// positives between unrelated allocations that reuse a freed address.
func (s *Shared[T]) Equal(o *Shared[T]) bool {
	return s.val == o.val && s.cb == o.cb
}

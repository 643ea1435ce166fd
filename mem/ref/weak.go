package ref

import (
	"unsafe"

	"github.com/memkit/memkit/mem"
)

// Weak is a non-owning reference: it keeps the control block alive but not
// the object, and must be locked to obtain a Shared before the object can
// be touched.
type Weak[T any] struct {
	cb *controlBlock
	a  mem.Allocator
}

// WeakFrom derives a weak reference from a live Shared. The zero Weak is
// returned for the zero handle or on counter saturation.
func WeakFrom[T any](s *Shared[T]) Weak[T] {
	if s.cb == nil {
		return Weak[T]{}
	}
	if !s.cb.incrementWeak() {
		return Weak[T]{}
	}
	return Weak[T]{cb: s.cb, a: s.a}
}

// Clone adds another weak reference.
func (w *Weak[T]) Clone() Weak[T] {
	if w.cb == nil {
		return Weak[T]{}
	}
	if !w.cb.incrementWeak() {
		return Weak[T]{}
	}
	return *w
}

// Move transfers the reference out of w, leaving it empty.
func (w *Weak[T]) Move() Weak[T] {
	out := *w
	*w = Weak[T]{}
	return out
}

// Lock attempts to regain shared ownership. It succeeds only while the
// object is still live, recovering the data address from the control block;
// otherwise it returns the zero Shared. Lock never blocks: it is a bounded
// counter increment that fails as soon as the object is observed dead.
func (w *Weak[T]) Lock() Shared[T] {
	if w.cb == nil {
		return Shared[T]{}
	}
	if !w.cb.incrementShared() {
		return Shared[T]{}
	}
	return Shared[T]{val: (*T)(w.cb.data), cb: w.cb, a: w.a}
}

// Expired reports whether the object is gone and Lock can no longer succeed.
func (w *Weak[T]) Expired() bool { return w.UseCount() == 0 }

// UseCount returns the current shared count, 0 for the zero handle.
func (w *Weak[T]) UseCount() uint32 {
	if w.cb == nil {
		return 0
	}
	return w.cb.useCount()
}

// IsZero reports whether the handle references nothing.
func (w *Weak[T]) IsZero() bool { return w.cb == nil }

// Reset drops this weak reference and empties the handle. The last weak
// reference to go releases the control block's memory through its recorded
// provider. Idempotent.
func (w *Weak[T]) Reset() {
	if w.cb == nil {
		return
	}
	cb, a := w.cb, w.a
	*w = Weak[T]{}
	if cb.decrementWeak() == actionFree {
		a.Release(unsafe.Pointer(cb))
	}
}

// owner implements Owner.
func (w *Weak[T]) owner() uintptr { return uintptr(unsafe.Pointer(w.cb)) }

// OwnerBefore orders this handle before o by control-block identity.
func (w *Weak[T]) OwnerBefore(o Owner) bool { return w.owner() < o.owner() }

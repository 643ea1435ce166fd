package ref

import (
	"unsafe"

	"github.com/memkit/memkit/mem"
)

// Unique is the exclusive owner of value memory and of the Deallocator that
// must eventually reclaim it. At most one live Unique holds a given
// (value, deallocator) pair; transfer ownership with Move, never by copying
// the struct.
type Unique[T any] struct {
	val     *T
	dealloc mem.Deallocator
	elems   uintptr
}

// MakeUnique allocates a T from a, copies v into it, and returns the owning
// handle. The zero Unique is returned on allocation failure.
func MakeUnique[T any](a mem.Allocator, v T) Unique[T] {
	p := a.Allocate(mem.LayoutOf[T]())
	if p == nil {
		return Unique[T]{}
	}
	tp := (*T)(p)
	*tp = v
	return Unique[T]{val: tp, dealloc: a, elems: 1}
}

// MakeUniqueSlice allocates n zeroed contiguous Ts. Each element is disposed
// individually on Reset.
func MakeUniqueSlice[T any](a mem.Allocator, n uintptr) Unique[T] {
	if n == 0 {
		return Unique[T]{}
	}
	layout, err := mem.LayoutOfSlice[T](n)
	if err != nil {
		return Unique[T]{}
	}
	p := a.Allocate(layout)
	if p == nil {
		return Unique[T]{}
	}
	tp := (*T)(p)
	clear(unsafe.Slice(tp, n))
	return Unique[T]{val: tp, dealloc: a, elems: n}
}

// WrapUnique takes ownership of p, which must have been produced by d.
// Wrapping an address from any other provider is undefined behavior.
func WrapUnique[T any](d mem.Deallocator, p *T) Unique[T] {
	if p == nil {
		return Unique[T]{}
	}
	return Unique[T]{val: p, dealloc: d, elems: 1}
}

// Get returns the owned value, or nil for the zero handle.
func (u *Unique[T]) Get() *T { return u.val }

// Slice views the owned elements. Nil for the zero handle.
func (u *Unique[T]) Slice() []T {
	if u.val == nil {
		return nil
	}
	return unsafe.Slice(u.val, u.elems)
}

// Len returns the owned element count (1 for scalars, 0 when empty).
func (u *Unique[T]) Len() uintptr { return u.elems }

// IsZero reports whether the handle owns nothing.
func (u *Unique[T]) IsZero() bool { return u.val == nil }

// Deallocator returns the provider that will reclaim the value.
func (u *Unique[T]) Deallocator() mem.Deallocator { return u.dealloc }

// Reset disposes the owned elements (unless the provider skips dispose),
// releases their memory, and empties the handle. Idempotent.
func (u *Unique[T]) Reset() {
	if u.val == nil {
		return
	}
	mem.DestroyAndRelease(u.dealloc, u.val, u.elems)
	*u = Unique[T]{}
}

// Move transfers ownership out of u, leaving it empty.
func (u *Unique[T]) Move() Unique[T] {
	out := *u
	*u = Unique[T]{}
	return out
}

// ConvertUnique moves ownership from a Unique[U] into a Unique[T] through an
// explicit pointer conversion. conv must return a view at the same address
// (an embedded leading field, or an identical-layout reinterpretation):
// release goes through the converted pointer. The relation between U and T
// is checked where conv is written, at compile time. The source is emptied
// on success and untouched when empty.
func ConvertUnique[T, U any](u *Unique[U], conv func(*U) *T) Unique[T] {
	if u.val == nil {
		return Unique[T]{}
	}
	out := Unique[T]{val: conv(u.val), dealloc: u.dealloc, elems: u.elems}
	*u = Unique[U]{}
	return out
}

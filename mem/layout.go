package mem

import "unsafe"

// MaxAlign is the platform's maximum natural alignment. Layouts built
// without an explicit alignment use it, matching what the Go compiler
// guarantees for any scalar type.
const MaxAlign = unsafe.Alignof(struct {
	f float64
	u uint64
}{})

// Layout describes a memory request: a size in bytes and a power-of-two
// alignment. It is an immutable value type; methods return new Layouts.
type Layout struct {
	Size  uintptr
	Align uintptr
}

// NewLayout returns a Layout of the given size with MaxAlign alignment.
func NewLayout(size uintptr) Layout {
	return Layout{Size: size, Align: MaxAlign}
}

// NewLayoutAligned returns a Layout with an explicit alignment.
// A zero alignment is replaced by MaxAlign.
func NewLayoutAligned(size, align uintptr) Layout {
	if align == 0 {
		align = MaxAlign
	}
	return Layout{Size: size, Align: align}
}

// LayoutOf returns the Layout of a single T.
func LayoutOf[T any]() Layout {
	var v T
	return Layout{Size: unsafe.Sizeof(v), Align: unsafe.Alignof(v)}
}

// LayoutOfSlice returns the Layout of n contiguous Ts.
// It fails with ErrSizeOverflow if the total size wraps around.
func LayoutOfSlice[T any](n uintptr) (Layout, error) {
	var v T
	size := unsafe.Sizeof(v)
	if n != 0 && size > ^uintptr(0)/n {
		return Layout{}, ErrSizeOverflow
	}
	return Layout{Size: size * n, Align: unsafe.Alignof(v)}, nil
}

// Extend returns a copy of l with n more bytes. Alignment is unchanged.
func (l Layout) Extend(n uintptr) (Layout, error) {
	if l.Size+n < l.Size {
		return Layout{}, ErrSizeOverflow
	}
	return Layout{Size: l.Size + n, Align: l.Align}, nil
}

// IsZero reports whether l is the empty Layout, the value providers return
// for unsupported or unrecognized introspection queries.
func (l Layout) IsZero() bool {
	return l.Size == 0 && l.Align == 0
}

// AlignUp rounds x up to the next multiple of align.
// align must be a power of two.
func AlignUp(x, align uintptr) uintptr {
	return (x + align - 1) &^ (align - 1)
}

// IsAligned reports whether p satisfies align, which must be a power of two.
func IsAligned(p unsafe.Pointer, align uintptr) bool {
	return uintptr(p)&(align-1) == 0
}

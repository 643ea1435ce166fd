package mem

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLayout_DefaultAlignment(t *testing.T) {
	l := NewLayout(24)
	assert.Equal(t, uintptr(24), l.Size)
	assert.Equal(t, uintptr(MaxAlign), l.Align)
}

func TestNewLayoutAligned_ZeroAlignFallsBack(t *testing.T) {
	l := NewLayoutAligned(8, 0)
	assert.Equal(t, uintptr(MaxAlign), l.Align)

	l = NewLayoutAligned(8, 64)
	assert.Equal(t, uintptr(64), l.Align)
}

func TestLayoutOf_MatchesUnsafe(t *testing.T) {
	type payload struct {
		a uint64
		b byte
	}
	l := LayoutOf[payload]()
	var v payload
	assert.Equal(t, unsafe.Sizeof(v), l.Size)
	assert.Equal(t, unsafe.Alignof(v), l.Align)
}

func TestLayoutOfSlice_ScalesSize(t *testing.T) {
	l, err := LayoutOfSlice[uint32](10)
	require.NoError(t, err)
	assert.Equal(t, uintptr(40), l.Size)
	assert.Equal(t, uintptr(4), l.Align)
}

func TestLayoutOfSlice_Overflow(t *testing.T) {
	_, err := LayoutOfSlice[uint64](^uintptr(0)/2)
	require.ErrorIs(t, err, ErrSizeOverflow)
}

func TestLayout_Extend(t *testing.T) {
	l := NewLayoutAligned(16, 4)

	ext, err := l.Extend(8)
	require.NoError(t, err)
	assert.Equal(t, uintptr(24), ext.Size)
	assert.Equal(t, uintptr(4), ext.Align, "alignment must be unchanged")

	// Original is untouched (value semantics).
	assert.Equal(t, uintptr(16), l.Size)
}

func TestLayout_ExtendOverflow(t *testing.T) {
	l := NewLayout(^uintptr(0) - 4)
	_, err := l.Extend(8)
	require.ErrorIs(t, err, ErrSizeOverflow)
}

func TestLayout_IsZero(t *testing.T) {
	assert.True(t, Layout{}.IsZero())
	assert.False(t, NewLayout(0).IsZero(), "zero size with default align is not the zero Layout")
	assert.False(t, NewLayout(1).IsZero())
}

func TestAlignUp(t *testing.T) {
	cases := []struct {
		x, align, want uintptr
	}{
		{0, 8, 0},
		{1, 8, 8},
		{8, 8, 8},
		{9, 8, 16},
		{17, 16, 32},
		{5, 1, 5},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, AlignUp(c.x, c.align), "AlignUp(%d, %d)", c.x, c.align)
	}
}

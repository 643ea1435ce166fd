package alloc

import (
	"os"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegion_RoundsToPageSize(t *testing.T) {
	r, err := NewRegion(1)
	require.NoError(t, err)
	defer r.Close()

	page := uintptr(os.Getpagesize())
	assert.Equal(t, page, r.Size())
	assert.True(t, uintptr(r.Base())%page == 0, "base should be page aligned")
}

func TestNewRegion_RejectsZeroAndOversized(t *testing.T) {
	_, err := NewRegion(0)
	require.ErrorIs(t, err, ErrRegionSize)

	_, err = NewRegion(maxRegionSize + 1)
	require.ErrorIs(t, err, ErrRegionSize)
}

func TestRegion_Contains(t *testing.T) {
	r, err := NewRegion(4096)
	require.NoError(t, err)
	defer r.Close()

	assert.True(t, r.Contains(r.Base()))
	assert.True(t, r.Contains(unsafe.Add(r.Base(), 4095)))
	assert.False(t, r.Contains(unsafe.Add(r.Base(), 4096)))
	assert.False(t, r.Contains(nil))
}

func TestRegion_WriteReadBack(t *testing.T) {
	r, err := NewRegion(4096)
	require.NoError(t, err)
	defer r.Close()

	b := r.Bytes()
	for i := range b {
		b[i] = byte(i)
	}
	assert.Equal(t, byte(255), b[255])
}

func TestRegion_DoubleCloseIsNoOp(t *testing.T) {
	r, err := NewRegion(4096)
	require.NoError(t, err)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	assert.Nil(t, r.Base())
	assert.False(t, r.Contains(unsafe.Pointer(t)))
}

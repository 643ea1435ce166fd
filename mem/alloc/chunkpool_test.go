package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memkit/memkit/mem"
)

func newChunkPoolForTest(t *testing.T, layout mem.Layout, maxCached int) (*ChunkPool, *BestFitAllocator) {
	t.Helper()
	a := newBestFitForTest(t, 1<<16)
	return NewChunkPool(a, layout, maxCached), a
}

func TestChunkPool_BoundLayout(t *testing.T) {
	layout := mem.NewLayoutAligned(48, 16)
	p, _ := newChunkPoolForTest(t, layout, 0)

	assert.Equal(t, layout, p.Layout())

	c := p.Allocate()
	require.NotNil(t, c)
	assert.True(t, mem.IsAligned(c, 16))
}

func TestChunkPool_ReusesReleasedChunks(t *testing.T) {
	p, inner := newChunkPoolForTest(t, mem.NewLayout(64), 0)

	c1 := p.Allocate()
	require.NotNil(t, c1)
	p.Release(c1)
	assert.Equal(t, 1, p.Cached())

	c2 := p.Allocate()
	assert.Equal(t, c1, c2, "pool must serve from the reuse cache first")
	assert.Equal(t, 0, p.Cached())

	// The inner provider saw exactly one allocation.
	assert.Equal(t, uint64(1), inner.Stats().Allocs)
}

func TestChunkPool_CacheBound(t *testing.T) {
	p, inner := newChunkPoolForTest(t, mem.NewLayout(64), 2)

	c1, c2, c3 := p.Allocate(), p.Allocate(), p.Allocate()
	require.NotNil(t, c1)
	require.NotNil(t, c2)
	require.NotNil(t, c3)

	p.Release(c1)
	p.Release(c2)
	p.Release(c3) // over the cache bound, forwarded to the inner provider
	assert.Equal(t, 2, p.Cached())
	assert.False(t, inner.Recognizes(c3), "overflow chunk goes back to the provider")
}

func TestChunkPool_Drain(t *testing.T) {
	p, inner := newChunkPoolForTest(t, mem.NewLayout(64), 0)

	c := p.Allocate()
	require.NotNil(t, c)
	p.Release(c)
	require.Equal(t, 1, p.Cached())

	p.Drain()
	assert.Equal(t, 0, p.Cached())
	assert.Equal(t, uintptr(0), inner.Stats().InUse)
}

func TestChunkPool_ForwardsIntrospection(t *testing.T) {
	p, inner := newChunkPoolForTest(t, mem.NewLayout(64), 0)

	assert.Equal(t, inner.Capabilities(), p.Capabilities())
	assert.Equal(t, inner.Capacity(), p.Capacity())

	c := p.Allocate()
	require.NotNil(t, c)
	assert.True(t, p.Recognizes(c))
	assert.Equal(t, uintptr(64), p.GetLayout(mem.LayoutRequested, c).Size)
}

var _ mem.Pool = (*ChunkPool)(nil)

package ref

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memkit/memkit/internal/testutil"
	"github.com/memkit/memkit/mem"
	"github.com/memkit/memkit/mem/alloc"
)

func TestMakeUnique_OwnsValue(t *testing.T) {
	a := newArenaAllocator(t, 4096)

	u := MakeUnique(a, uint64(42))
	require.False(t, u.IsZero())
	assert.Equal(t, uint64(42), *u.Get())
	assert.Equal(t, uintptr(1), u.Len())
	assert.True(t, a.Recognizes(unsafe.Pointer(u.Get())))

	u.Reset()
	assert.True(t, u.IsZero())
	assert.Nil(t, u.Get())
	assert.Equal(t, uintptr(0), a.Stats().InUse, "reset must return the memory")
}

func TestMakeUnique_AllocationFailure(t *testing.T) {
	a := newArenaAllocator(t, 4096)

	u := MakeUniqueSlice[uint64](a, 1<<20)
	assert.True(t, u.IsZero())
	assert.Equal(t, uintptr(0), a.Stats().InUse)
}

func TestUnique_ResetDisposesOnce(t *testing.T) {
	a := newArenaAllocator(t, 4096)
	var counter testutil.LifecycleCounter
	counter.Reset()

	u := MakeUnique(a, testutil.NewTracked(&counter, 7))
	require.False(t, u.IsZero())
	require.Equal(t, int64(1), counter.Constructed())

	u.Reset()
	assert.Equal(t, int64(1), counter.Disposed())

	u.Reset() // idempotent
	assert.Equal(t, int64(1), counter.Disposed())
}

func TestUnique_SkipsDisposeCapability(t *testing.T) {
	r, err := alloc.NewRegion(4096)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	arena := alloc.NewBump(r) // declares skips-dispose

	var counter testutil.LifecycleCounter
	u := MakeUnique(arena, testutil.NewTracked(&counter, 1))
	require.False(t, u.IsZero())

	u.Reset()
	assert.Equal(t, int64(0), counter.Disposed(), "arena teardown is wholesale, not per object")
}

func TestUnique_SliceDisposesEachElement(t *testing.T) {
	a := newArenaAllocator(t, 8192)
	var counter testutil.LifecycleCounter

	const n = 16
	u := MakeUniqueSlice[testutil.Tracked](a, n)
	require.False(t, u.IsZero())
	require.Len(t, u.Slice(), n)

	for i := range u.Slice() {
		u.Slice()[i] = testutil.NewTracked(&counter, i)
	}
	require.Equal(t, int64(n), counter.Constructed())

	u.Reset()
	assert.Equal(t, int64(n), counter.Disposed())
	assert.Equal(t, int64(0), counter.Live())
}

func TestUnique_Move(t *testing.T) {
	a := newArenaAllocator(t, 4096)
	var counter testutil.LifecycleCounter

	u := MakeUnique(a, testutil.NewTracked(&counter, 5))
	val := u.Get()

	moved := u.Move()
	assert.True(t, u.IsZero(), "source must be emptied")
	assert.Equal(t, val, moved.Get())
	assert.Equal(t, int64(0), counter.Disposed(), "move is not a teardown")

	moved.Reset()
	assert.Equal(t, int64(1), counter.Disposed())
}

func TestWrapUnique(t *testing.T) {
	a := newArenaAllocator(t, 4096)

	p := a.Allocate(mem.LayoutOf[uint32]())
	require.NotNil(t, p)
	u := WrapUnique(a, (*uint32)(p))
	require.False(t, u.IsZero())

	*u.Get() = 99
	u.Reset()
	assert.Equal(t, uintptr(0), a.Stats().InUse)

	empty := WrapUnique[uint32](a, nil)
	assert.True(t, empty.IsZero())
}

func TestConvertUnique_EmbeddedUpcast(t *testing.T) {
	a := newArenaAllocator(t, 4096)

	type header struct {
		tag uint32
	}
	type record struct {
		header
		body uint64
	}

	u := MakeUnique(a, record{header: header{tag: 3}, body: 11})
	require.False(t, u.IsZero())

	h := ConvertUnique(&u, func(r *record) *header { return &r.header })
	assert.True(t, u.IsZero(), "source must be emptied")
	require.False(t, h.IsZero())
	assert.Equal(t, uint32(3), h.Get().tag)

	h.Reset()
	assert.Equal(t, uintptr(0), a.Stats().InUse, "release goes through the converted view")
}

func TestConvertUnique_EmptySourceUntouched(t *testing.T) {
	var u Unique[uint64]
	out := ConvertUnique(&u, func(p *uint64) *uint64 { return p })
	assert.True(t, out.IsZero())
}

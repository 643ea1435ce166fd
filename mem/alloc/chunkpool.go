package alloc

import (
	"unsafe"

	"github.com/memkit/memkit/mem"
)

// ChunkPool serves a single Layout, bound at construction, from a wrapped
// Allocator. Released chunks go into a reuse cache and are handed out again
// before the wrapped provider is consulted, so hot fixed-size churn never
// touches the free list underneath.
//
// As a forwarding provider its capability set is the wrapped provider's,
// composed by OR with anything the pool adds itself (nothing, today).
type ChunkPool struct {
	inner     mem.Allocator
	layout    mem.Layout
	maxCached int
	cache     []unsafe.Pointer
}

// NewChunkPool binds layout to a pool over inner. maxCached bounds the reuse
// cache; 0 means an unbounded cache.
func NewChunkPool(inner mem.Allocator, layout mem.Layout, maxCached int) *ChunkPool {
	p := &ChunkPool{inner: inner, layout: layout, maxCached: maxCached}
	if maxCached > 0 {
		p.cache = make([]unsafe.Pointer, 0, maxCached)
	}
	return p
}

// Capabilities forwards the wrapped provider's set.
func (p *ChunkPool) Capabilities() mem.Capabilities {
	return p.inner.Capabilities()
}

// Allocate returns a cached chunk when one is available, otherwise a fresh
// allocation of the bound layout.
func (p *ChunkPool) Allocate() unsafe.Pointer {
	if n := len(p.cache); n > 0 {
		c := p.cache[n-1]
		p.cache = p.cache[:n-1]
		return c
	}
	return p.inner.Allocate(p.layout)
}

// Release caches p for reuse, or forwards it when the cache is full.
func (p *ChunkPool) Release(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	if p.maxCached == 0 || len(p.cache) < p.maxCached {
		p.cache = append(p.cache, ptr)
		return
	}
	p.inner.Release(ptr)
}

// Layout returns the layout bound at construction.
func (p *ChunkPool) Layout() mem.Layout { return p.layout }

// Capacity forwards to the wrapped provider.
func (p *ChunkPool) Capacity() uintptr { return p.inner.Capacity() }

// GetLayout forwards to the wrapped provider.
func (p *ChunkPool) GetLayout(kind mem.LayoutKind, ptr unsafe.Pointer) mem.Layout {
	return p.inner.GetLayout(kind, ptr)
}

// Recognizes forwards to the wrapped provider.
func (p *ChunkPool) Recognizes(ptr unsafe.Pointer) bool {
	return p.inner.Recognizes(ptr)
}

// Drain returns every cached chunk to the wrapped provider.
func (p *ChunkPool) Drain() {
	for _, c := range p.cache {
		p.inner.Release(c)
	}
	p.cache = p.cache[:0]
}

// Cached returns the number of chunks currently parked in the cache.
func (p *ChunkPool) Cached() int { return len(p.cache) }

var _ mem.Pool = (*ChunkPool)(nil)

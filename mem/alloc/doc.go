// Package alloc provides concrete memory providers implementing the
// contracts in package mem.
//
// # Providers
//
// Region: a page-aligned anonymous mapping obtained from the OS (mmap on
// unix, a plain Go slice elsewhere). Regions are the raw backing segment the
// allocators below carve up; a Region by itself is not a provider.
//
// BumpAllocator: an O(1) append-only arena. Release is a no-op and the whole
// arena is recycled with Reset, so it declares skips-dispose: element
// teardown is the caller's problem at arena granularity, not per object.
//
// BestFitAllocator: a general-purpose heap over one Region. Boundary-tagged
// block headers (negative size marks an allocated block), a best-fit scan of
// the free list, block splitting above a threshold, bidirectional coalescing
// on release, and in-place resize in both directions. This is the provider
// of choice for the ownership handles in mem/ref, whose expired control
// blocks rely on shrink-in-place to give data bytes back.
//
// ChunkPool: a mem.Pool bound to one layout, built over any Allocator, with
// a small reuse cache in front of it.
//
// TrackingAllocator: a forwarding provider that keeps an allocation ledger
// (counts, bytes in use, peak) and uses it to answer requested-layout and
// ownership queries the wrapped provider cannot, composing its capability
// set by OR.
//
// # Thread safety
//
// None of these providers is goroutine-safe. Callers synchronize externally;
// the ownership layer in mem/ref only requires that of its own counters.
package alloc

// Package ref provides ownership handles over provider-allocated memory:
// Unique (exclusive), Shared (reference-counted), and Weak (non-owning,
// lockable) views of objects placed in memory obtained from a mem.Allocator.
//
// # Control blocks
//
// Every Shared/Weak family shares one control block holding a single packed
// counter word: the weak count in the high 16 bits, the shared count in the
// low 16. Packing both counts into one word lets every transition be a
// single atomic operation, so the handles are safe to use from any number of
// goroutines without locks. Shared ownership implies weak ownership: the
// counts start at (weak=1, shared=1) and shared transitions always move both.
//
// The object and its control block have distinct lifetimes. When the last
// Shared drops, the object is torn down; the control block survives until
// the last Weak drops too. In between ("expired"), the combined allocation
// is shrunk in place to the control block's own footprint where the provider
// supports it, returning the data bytes without moving the control block out
// from under outstanding Weak handles.
//
// # Failure model
//
// Construction returns zero-value handles on allocation failure. Promoting a
// Unique into a Shared is the one side-effecting operation designed to be
// retryable: on failure the Unique is left fully intact.
//
// # Caveats
//
// Handle memory lives outside the Go heap. Element types must not hold the
// only reference to Go-heap objects, since the garbage collector does not
// scan provider memory.
//
// Unique has no concurrency story: it is single-owner by construction and
// must not be shared across goroutines without external synchronization.
package ref

// Package mem defines the capability-negotiated contract between memory
// providers and the ownership handles built on top of them.
//
// # Overview
//
// A memory provider hands out raw, untyped memory described by a Layout
// (size plus power-of-two alignment). Providers come in three shapes:
//
//   - Deallocator: release and introspection only, no allocation
//   - Allocator: Deallocator plus allocate-by-layout and in-place resize
//   - Pool: Deallocator plus allocation with a layout bound at construction
//
// Optional provider behaviors are advertised through a Capabilities bit set
// fixed at construction, so callers negotiate features at runtime instead of
// depending on concrete types.
//
// # Lifetime
//
// Memory returned by a provider is valid until released back to the same
// provider. Using an address after release, or releasing it through a
// different provider, is undefined behavior. Recognizes exists solely to
// route a release to the correct one of several disjoint providers, never to
// pre-validate a release against an unrelated one.
//
// # Failure model
//
// Allocation never panics: exhaustion and oversized requests surface as a
// nil address. Callers check for nil before use and decide whether to retry
// or fall back.
//
// Concrete providers live in mem/alloc; ownership handles (Unique, Shared,
// Weak) live in mem/ref.
package mem

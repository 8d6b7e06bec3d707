// Package mempool implements a fixed-size-chunk memory pool (slab allocator)
// for the hot allocation path of index construction and search.
//
// A Pool pre-reserves one contiguous arena, slices it into equal chunks, and
// hands chunks out through an O(1) freelist. Requests the pool cannot service
// (pool disabled, size larger than a chunk, freelist empty) fall back to the
// regular Go allocator transparently, so Alloc never fails from the caller's
// point of view. Release validates buffers against the arena bounds and the
// freelist before reinserting them; foreign buffers are simply left to the
// garbage collector and integrity violations (double free, freelist overflow)
// are logged and ignored rather than escalated.
//
// # Concurrency Model
//
// A Pool has no internal locking. It is designed for single-threaded access,
// or for callers that provide their own mutual exclusion around Alloc/Release
// pairs. Destroy must not race with any other operation.
//
// # Ownership
//
// Buffers returned by Alloc on the fast path are borrowed from the arena: the
// pool retains ultimate ownership and every buffer must be released exactly
// once. Destroying the pool invalidates every outstanding buffer; the caller
// is responsible for not using buffers past that point.
package mempool

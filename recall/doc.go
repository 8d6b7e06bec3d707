// Package recall estimates the result quality of approximate vector queries.
//
// Approximate indexes trade exactness for speed; recall tracking measures how
// much exactness was traded away in production, without a labeled ground
// truth set. A Tracker samples every Nth finished query, re-derives the
// expected result set by scanning the backing vectors within the query's
// k-th result distance, and folds the ratio of returned to expected results
// into per-index statistics.
//
// Ground-truth scans are full scans and therefore expensive. They run only
// for sampled queries, in parallel over source blocks, stop early once the
// expected set provably exceeds the requested limit, and can be throttled
// with a rate limit.
//
// The tracker is a pure consumer of result identifiers and counters: it
// never touches index internals and is safe for concurrent use.
package recall

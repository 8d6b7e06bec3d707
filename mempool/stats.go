package mempool

import "fmt"

// counters accumulates pool activity. Plain integers: the pool has no
// internal locking, so neither do its counters.
type counters struct {
	fastAllocs          uint64
	fallbackAllocs      uint64
	exhaustionFallbacks uint64
	doubleFrees         uint64
	badReleases         uint64
}

// Stats is a point-in-time snapshot of pool state and activity.
type Stats struct {
	ChunkSize   int
	TotalChunks int
	FreeChunks  int

	// FastAllocs counts allocations served from the freelist.
	FastAllocs uint64
	// FallbackAllocs counts allocations routed to the regular allocator,
	// including exhaustion fallbacks.
	FallbackAllocs uint64
	// ExhaustionFallbacks counts fallbacks taken only because the freelist
	// was empty; a high value means the pool is undersized.
	ExhaustionFallbacks uint64
	// DoubleFrees counts releases refused because the chunk was already free.
	DoubleFrees uint64
	// BadReleases counts releases refused for other integrity reasons
	// (freelist overflow, unaligned in-arena pointer).
	BadReleases uint64
}

// Stats returns a snapshot of the pool's counters and occupancy.
func (p *Pool) Stats() Stats {
	return Stats{
		ChunkSize:           p.arena.chunkSize,
		TotalChunks:         p.totalChunks,
		FreeChunks:          p.free.count,
		FastAllocs:          p.stats.fastAllocs,
		FallbackAllocs:      p.stats.fallbackAllocs,
		ExhaustionFallbacks: p.stats.exhaustionFallbacks,
		DoubleFrees:         p.stats.doubleFrees,
		BadReleases:         p.stats.badReleases,
	}
}

func (s Stats) String() string {
	return fmt.Sprintf(
		"Pool{chunks: %d/%d free, chunk_bytes: %d, fast: %d, fallback: %d (exhausted: %d), double_free: %d, bad_release: %d}",
		s.FreeChunks, s.TotalChunks, s.ChunkSize,
		s.FastAllocs, s.FallbackAllocs, s.ExhaustionFallbacks,
		s.DoubleFrees, s.BadReleases,
	)
}

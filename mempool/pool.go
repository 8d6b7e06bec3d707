package mempool

import (
	"log/slog"

	"github.com/binarycleric/pgvector/scope"
)

// Pool composes an arena and a freelist with allocation policy. See the
// package documentation for the ownership and concurrency contract.
type Pool struct {
	arena       *arena
	free        freelist
	scope       *scope.Scope
	logger      *slog.Logger
	enabled     bool
	destroyed   bool
	offHeap     bool // only consulted during New
	totalChunks int
	stats       counters
}

// Option configures a Pool at creation time.
type Option func(*Pool)

// WithLogger sets the logger used for the pool's diagnostics and warnings.
// Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pool) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithOffHeap backs the arena with an anonymous memory mapping instead of a
// heap slice, keeping large arenas out of GC scans. The mapping is released
// by the pool's scope on Destroy.
func WithOffHeap() Option {
	return func(p *Pool) {
		p.offHeap = true
	}
}

// New creates a pool of chunkCount chunks of chunkSize bytes each. The chunk
// size is rounded up to Alignment before the total is computed; a geometry
// whose total byte size overflows fails with *ErrSizeOverflow and reserves
// nothing. The arena and freelist live on a child scope of parent, so
// destroying the pool (or the parent scope) releases everything in one step.
func New(chunkSize, chunkCount int, parent *scope.Scope, opts ...Option) (*Pool, error) {
	if chunkSize <= 0 || chunkCount < 0 {
		return nil, ErrBadGeometry
	}

	p := &Pool{
		logger:      slog.Default(),
		enabled:     true,
		totalChunks: chunkCount,
	}
	for _, opt := range opts {
		opt(p)
	}

	// Detect overflow explicitly: alignUp can wrap for sizes near MaxInt, and
	// the product is checked by dividing back.
	aligned := alignUp(chunkSize)
	total := aligned * chunkCount
	if aligned <= 0 || (chunkCount > 0 && (total < 0 || total/chunkCount != aligned)) {
		return nil, &ErrSizeOverflow{ChunkSize: chunkSize, ChunkCount: chunkCount}
	}

	sc := parent.Child("mempool")
	a, err := newArena(aligned, chunkCount, p.offHeap, sc)
	if err != nil {
		sc.Destroy()
		return nil, err
	}

	p.arena = a
	p.free = newFreelist(chunkCount)
	p.scope = sc
	sc.Defer(func() {
		p.free.slots = nil
		p.free.count = 0
	})

	p.logger.Debug("memory pool created",
		"chunks", chunkCount,
		"chunk_bytes", aligned,
		"total_bytes", total)

	return p, nil
}

// ChunkSize returns the aligned chunk size.
func (p *Pool) ChunkSize() int {
	return p.arena.chunkSize
}

// TotalChunks returns the number of chunks the arena was sliced into.
func (p *Pool) TotalChunks() int {
	return p.totalChunks
}

// FreeChunks returns the current freelist occupancy.
func (p *Pool) FreeChunks() int {
	return p.free.count
}

// Enabled reports whether the pool services requests. A disabled pool routes
// every request to the regular allocator.
func (p *Pool) Enabled() bool {
	return p != nil && p.enabled
}

// SetEnabled administratively enables or disables the pool.
func (p *Pool) SetEnabled(enabled bool) {
	p.enabled = enabled
}

// allocPath classifies an allocation request against the pool's state.
// Keeping the decision separate from the allocation makes the fallback
// policy testable on its own.
type allocPath int

const (
	// pathFast services the request from the freelist.
	pathFast allocPath = iota
	// pathFallback routes to the regular allocator: pool absent, disabled,
	// or request larger than a chunk.
	pathFallback
	// pathFallbackExhausted routes to the regular allocator because the
	// freelist is empty; logged separately to aid capacity tuning.
	pathFallbackExhausted
)

func (p *Pool) route(size int) allocPath {
	switch {
	case p == nil || !p.enabled || size > p.arena.chunkSize:
		return pathFallback
	case p.free.empty():
		return pathFallbackExhausted
	default:
		return pathFast
	}
}

// Alloc returns a zero-initialized buffer of the requested size. It never
// fails: any disqualifying condition falls back to the regular allocator, so
// callers need not special-case pool exhaustion. Requests of non-positive
// size return nil.
func (p *Pool) Alloc(size int) []byte {
	if size <= 0 {
		return nil
	}

	switch p.route(size) {
	case pathFallbackExhausted:
		p.logger.Debug("memory pool exhausted, falling back to heap allocation")
		p.stats.exhaustionFallbacks++
		fallthrough
	case pathFallback:
		if p != nil {
			p.stats.fallbackAllocs++
		}
		return make([]byte, size)
	}

	idx := p.free.pop()
	buf := p.arena.chunk(idx)[:size]

	// Zero only the requested bytes; the rest of the chunk keeps whatever
	// the previous user left there.
	clear(buf)

	p.stats.fastAllocs++
	return buf
}

// Release returns buf to the pool. Buffers that did not come from the
// pool's arena (including every fallback allocation) are left to the garbage
// collector; Release makes that decision from pointer identity alone, so
// callers never need to remember which path served them. Double frees and
// freelist overflow are logged and otherwise ignored: release runs on
// cleanup paths where failing hard would cascade.
func (p *Pool) Release(buf []byte) {
	if p == nil || !p.enabled || len(buf) == 0 {
		return
	}

	off, ok := p.arena.offsetOf(&buf[0])
	if !ok {
		// Not from our arena; the GC owns it.
		return
	}

	if off%p.arena.chunkSize != 0 {
		// In bounds but not a chunk boundary we ever handed out.
		p.logger.Warn("memory pool release of unaligned pointer", "offset", off)
		p.stats.badReleases++
		return
	}

	if p.free.full() {
		// More releases than chunks: a pointer-accounting bug somewhere.
		// Never write past the freelist bound.
		p.logger.Warn("memory pool freelist overflow")
		p.stats.badReleases++
		return
	}

	idx := off / p.arena.chunkSize
	if p.free.contains(idx) {
		p.logger.Warn("memory pool double free detected", "chunk", idx)
		p.stats.doubleFrees++
		return
	}

	p.free.push(idx)
}

// Destroy releases the arena, the freelist, and the pool's scope in one
// step. Every buffer previously returned from the fast path is invalid
// afterwards. Destroy is idempotent and nil-safe.
func (p *Pool) Destroy() {
	if p == nil || p.destroyed {
		return
	}
	p.destroyed = true
	p.enabled = false

	p.logger.Debug("memory pool destroyed",
		"chunks_in_use", p.totalChunks-p.free.count,
		"chunks", p.totalChunks)

	p.scope.Destroy()
}

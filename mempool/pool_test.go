package mempool

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/binarycleric/pgvector/scope"
)

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func newTestPool(t *testing.T, chunkSize, chunkCount int, opts ...Option) (*Pool, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	sc := scope.New("test")
	t.Cleanup(sc.Destroy)

	pool, err := New(chunkSize, chunkCount, sc, append(opts, WithLogger(testLogger(&buf)))...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return pool, &buf
}

func TestNew(t *testing.T) {
	t.Run("geometry", func(t *testing.T) {
		pool, _ := newTestPool(t, 60, 4)

		// 60 rounds up to the platform alignment.
		if pool.ChunkSize() != alignUp(60) {
			t.Errorf("expected chunkSize=%d, got %d", alignUp(60), pool.ChunkSize())
		}
		if pool.TotalChunks() != 4 {
			t.Errorf("expected 4 chunks, got %d", pool.TotalChunks())
		}
		if pool.FreeChunks() != 4 {
			t.Errorf("expected 4 free chunks, got %d", pool.FreeChunks())
		}
		if !pool.Enabled() {
			t.Error("new pool should be enabled")
		}
	})

	t.Run("bad geometry", func(t *testing.T) {
		sc := scope.New("test")
		defer sc.Destroy()

		for _, tc := range []struct{ size, count int }{
			{0, 4}, {-1, 4}, {64, -1},
		} {
			if _, err := New(tc.size, tc.count, sc); !errors.Is(err, ErrBadGeometry) {
				t.Errorf("size=%d count=%d: expected ErrBadGeometry, got %v", tc.size, tc.count, err)
			}
		}
	})

	t.Run("overflow guard", func(t *testing.T) {
		sc := scope.New("test")
		defer sc.Destroy()

		_, err := New(math.MaxInt/2, 4, sc)
		var overflow *ErrSizeOverflow
		if !errors.As(err, &overflow) {
			t.Fatalf("expected *ErrSizeOverflow, got %v", err)
		}
		if overflow.ChunkSize != math.MaxInt/2 || overflow.ChunkCount != 4 {
			t.Errorf("error should carry the requested geometry, got %+v", overflow)
		}
	})

	t.Run("zero chunks", func(t *testing.T) {
		pool, _ := newTestPool(t, 64, 0)

		// Every request falls back; nothing breaks.
		b := pool.Alloc(16)
		if len(b) != 16 {
			t.Fatalf("expected len=16, got %d", len(b))
		}
		pool.Release(b)
	})
}

func TestAlloc(t *testing.T) {
	t.Run("exhaustive reuse", func(t *testing.T) {
		const n = 8
		pool, _ := newTestPool(t, 64, n)

		bufs := make([][]byte, 0, n)
		for i := 0; i < n; i++ {
			b := pool.Alloc(48)
			if len(b) != 48 {
				t.Fatalf("alloc %d: expected len=48, got %d", i, len(b))
			}
			if pool.FreeChunks() != n-i-1 {
				t.Fatalf("alloc %d: expected %d free, got %d", i, n-i-1, pool.FreeChunks())
			}
			bufs = append(bufs, b)
		}

		// The (n+1)-th allocation falls back but is still usable, zeroed
		// memory of the requested size.
		extra := pool.Alloc(48)
		if len(extra) != 48 {
			t.Fatalf("fallback alloc: expected len=48, got %d", len(extra))
		}
		for i, v := range extra {
			if v != 0 {
				t.Fatalf("fallback alloc byte %d not zero: %d", i, v)
			}
		}
		if pool.FreeChunks() != 0 {
			t.Errorf("fallback must not touch the freelist, %d free", pool.FreeChunks())
		}

		stats := pool.Stats()
		if stats.FastAllocs != n {
			t.Errorf("expected %d fast allocs, got %d", n, stats.FastAllocs)
		}
		if stats.ExhaustionFallbacks != 1 {
			t.Errorf("expected 1 exhaustion fallback, got %d", stats.ExhaustionFallbacks)
		}

		for _, b := range bufs {
			pool.Release(b)
		}
		if pool.FreeChunks() != n {
			t.Errorf("expected all %d chunks back, got %d", n, pool.FreeChunks())
		}
	})

	t.Run("round trip at every occupancy", func(t *testing.T) {
		const n = 8
		pool, _ := newTestPool(t, 64, n)

		// Drain to depth k, then verify one release/alloc pair returns to
		// the fast path at that depth.
		for k := 1; k <= n; k++ {
			held := make([][]byte, 0, k)
			for i := 0; i < k; i++ {
				held = append(held, pool.Alloc(32))
			}
			before := pool.FreeChunks()

			pool.Release(held[k-1])
			if pool.FreeChunks() != before+1 {
				t.Fatalf("k=%d: release did not grow freelist", k)
			}
			held[k-1] = pool.Alloc(32)
			if pool.FreeChunks() != before {
				t.Fatalf("k=%d: alloc after release not on fast path", k)
			}

			for _, b := range held {
				pool.Release(b)
			}
		}
	})

	t.Run("zero fill precision", func(t *testing.T) {
		pool, _ := newTestPool(t, 64, 1)
		size := pool.ChunkSize()

		// Dirty the whole chunk, give it back, and take a smaller slice of
		// the same chunk.
		b := pool.Alloc(size)
		for i := range b {
			b[i] = 0xFF
		}
		pool.Release(b)

		const k = 24
		b = pool.Alloc(k)
		if len(b) != k {
			t.Fatalf("expected len=%d, got %d", k, len(b))
		}
		for i := 0; i < k; i++ {
			if b[i] != 0 {
				t.Errorf("byte %d should be zeroed, got %#x", i, b[i])
			}
		}
		// Bytes past the requested size are not part of the contract; the
		// implementation leaves them untouched, which proves it zeroed
		// exactly k bytes.
		rest := b[k:cap(b)]
		for i, v := range rest {
			if v != 0xFF {
				t.Errorf("byte %d past request was zeroed (got %#x)", k+i, v)
			}
		}
	})

	t.Run("oversized request falls back", func(t *testing.T) {
		pool, _ := newTestPool(t, 64, 2)

		b := pool.Alloc(pool.ChunkSize() + 1)
		if len(b) != pool.ChunkSize()+1 {
			t.Fatalf("expected len=%d, got %d", pool.ChunkSize()+1, len(b))
		}
		if pool.FreeChunks() != 2 {
			t.Error("oversized request must not touch the freelist")
		}
	})

	t.Run("disabled pool falls back", func(t *testing.T) {
		pool, _ := newTestPool(t, 64, 2)
		pool.SetEnabled(false)

		b := pool.Alloc(16)
		if len(b) != 16 {
			t.Fatalf("expected len=16, got %d", len(b))
		}
		if pool.FreeChunks() != 2 {
			t.Error("disabled pool must not touch the freelist")
		}
	})

	t.Run("nil pool", func(t *testing.T) {
		var pool *Pool

		b := pool.Alloc(16)
		if len(b) != 16 {
			t.Fatalf("expected len=16, got %d", len(b))
		}
		pool.Release(b)
		pool.Destroy()
	})

	t.Run("non-positive size", func(t *testing.T) {
		pool, _ := newTestPool(t, 64, 2)

		if pool.Alloc(0) != nil {
			t.Error("expected nil for size=0")
		}
		if pool.Alloc(-1) != nil {
			t.Error("expected nil for negative size")
		}
	})
}

func TestRoute(t *testing.T) {
	pool, _ := newTestPool(t, 64, 1)

	var nilPool *Pool
	if got := nilPool.route(16); got != pathFallback {
		t.Errorf("nil pool: expected pathFallback, got %d", got)
	}

	if got := pool.route(pool.ChunkSize() + 1); got != pathFallback {
		t.Errorf("oversized: expected pathFallback, got %d", got)
	}

	pool.SetEnabled(false)
	if got := pool.route(16); got != pathFallback {
		t.Errorf("disabled: expected pathFallback, got %d", got)
	}
	pool.SetEnabled(true)

	if got := pool.route(16); got != pathFast {
		t.Errorf("empty pool state: expected pathFast, got %d", got)
	}

	b := pool.Alloc(16)
	if got := pool.route(16); got != pathFallbackExhausted {
		t.Errorf("exhausted: expected pathFallbackExhausted, got %d", got)
	}
	pool.Release(b)
}

func TestRelease(t *testing.T) {
	t.Run("bounds independence", func(t *testing.T) {
		pool, _ := newTestPool(t, 64, 2)

		foreign := make([]byte, 32)
		before := pool.FreeChunks()
		pool.Release(foreign)
		if pool.FreeChunks() != before {
			t.Error("foreign release must not mutate the freelist")
		}
	})

	t.Run("double free", func(t *testing.T) {
		pool, logBuf := newTestPool(t, 64, 2)

		// Keep a second chunk outstanding so the freelist has room; a full
		// freelist is reported as overflow before the double-free scan runs.
		a := pool.Alloc(40)
		held := pool.Alloc(40)
		pool.Release(a)
		count := pool.FreeChunks()

		pool.Release(a)
		if pool.FreeChunks() != count {
			t.Errorf("double free must not grow the freelist: %d -> %d", count, pool.FreeChunks())
		}
		if pool.Stats().DoubleFrees != 1 {
			t.Errorf("expected 1 recorded double free, got %d", pool.Stats().DoubleFrees)
		}
		if !strings.Contains(logBuf.String(), "double free") {
			t.Error("expected a double-free warning in the log")
		}
		pool.Release(held)
	})

	t.Run("freelist overflow", func(t *testing.T) {
		pool, logBuf := newTestPool(t, 64, 2)

		a := pool.Alloc(40)
		pool.Release(a)

		// Freelist is back to capacity; re-releasing an in-arena chunk now
		// must hit the full check, not the double-free scan.
		before := pool.FreeChunks()
		pool.Release(a)
		if pool.FreeChunks() != before {
			t.Errorf("overflow release must not grow the freelist: %d -> %d", before, pool.FreeChunks())
		}
		if pool.Stats().BadReleases != 1 {
			t.Errorf("expected 1 recorded bad release, got %d", pool.Stats().BadReleases)
		}
		if pool.Stats().DoubleFrees != 0 {
			t.Errorf("expected no recorded double free, got %d", pool.Stats().DoubleFrees)
		}
		if !strings.Contains(logBuf.String(), "freelist overflow") {
			t.Error("expected a freelist-overflow warning in the log")
		}
	})

	t.Run("unaligned in-arena pointer", func(t *testing.T) {
		pool, logBuf := newTestPool(t, 64, 2)

		b := pool.Alloc(40)
		before := pool.FreeChunks()
		pool.Release(b[8:])
		if pool.FreeChunks() != before {
			t.Error("unaligned release must not mutate the freelist")
		}
		if !strings.Contains(logBuf.String(), "unaligned") {
			t.Error("expected an unaligned-release warning in the log")
		}
		pool.Release(b)
	})

	t.Run("nil buffer", func(t *testing.T) {
		pool, _ := newTestPool(t, 64, 2)
		pool.Release(nil) // no-op
		if pool.FreeChunks() != 2 {
			t.Error("nil release must not mutate the freelist")
		}
	})
}

// The worked scenario: chunk_size=64, chunk_count=2.
func TestScenario(t *testing.T) {
	pool, logBuf := newTestPool(t, 64, 2)

	a := pool.Alloc(40)
	if pool.FreeChunks() != 1 {
		t.Fatalf("after alloc A: expected 1 free, got %d", pool.FreeChunks())
	}

	b := pool.Alloc(40)
	if pool.FreeChunks() != 0 {
		t.Fatalf("after alloc B: expected 0 free, got %d", pool.FreeChunks())
	}

	c := pool.Alloc(40)
	if len(c) != 40 {
		t.Fatal("fallback allocation C must still be usable")
	}
	if pool.FreeChunks() != 0 {
		t.Fatalf("after alloc C: expected 0 free, got %d", pool.FreeChunks())
	}

	pool.Release(a)
	if pool.FreeChunks() != 1 {
		t.Fatalf("after release A: expected 1 free, got %d", pool.FreeChunks())
	}

	pool.Release(a)
	if pool.FreeChunks() != 1 {
		t.Fatalf("after double release A: expected 1 free, got %d", pool.FreeChunks())
	}
	if !strings.Contains(logBuf.String(), "double free") {
		t.Error("expected a double-free warning")
	}

	pool.Destroy()
	if !strings.Contains(logBuf.String(), "chunks_in_use=1") {
		t.Errorf("expected destruction diagnostic reporting 1 chunk in use, log:\n%s", logBuf.String())
	}
	_ = b
}

func TestDestroy(t *testing.T) {
	t.Run("idempotent", func(t *testing.T) {
		pool, _ := newTestPool(t, 64, 2)
		pool.Destroy()
		pool.Destroy()
		if pool.Enabled() {
			t.Error("destroyed pool should be disabled")
		}
	})

	t.Run("parent scope destroys pool memory", func(t *testing.T) {
		var buf bytes.Buffer
		sc := scope.New("test")
		pool, err := New(64, 2, sc, WithLogger(testLogger(&buf)))
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		sc.Destroy()
		if pool.arena.buf != nil {
			t.Error("parent scope destruction should release the arena")
		}
	})
}

func TestOffHeap(t *testing.T) {
	pool, _ := newTestPool(t, 64, 4, WithOffHeap())

	a := pool.Alloc(48)
	for i := range a {
		a[i] = byte(i)
	}
	b := pool.Alloc(48)

	if pool.FreeChunks() != 2 {
		t.Fatalf("expected 2 free, got %d", pool.FreeChunks())
	}

	pool.Release(a)
	pool.Release(b)
	if pool.FreeChunks() != 4 {
		t.Fatalf("expected 4 free, got %d", pool.FreeChunks())
	}

	pool.Destroy()
}

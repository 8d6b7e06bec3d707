package mempool

import "testing"

func TestGlobalRegistry(t *testing.T) {
	t.Cleanup(CleanupGlobal)

	if Global() != nil {
		t.Fatal("registry should be empty before InitGlobal")
	}

	if err := InitGlobal(); err != nil {
		t.Fatalf("InitGlobal failed: %v", err)
	}
	pool := Global()
	if pool == nil {
		t.Fatal("expected a pool after InitGlobal")
	}
	if pool.ChunkSize() != alignUp(DefaultChunkSize) || pool.TotalChunks() != DefaultChunkCount {
		t.Errorf("unexpected default geometry: %d x %d", pool.ChunkSize(), pool.TotalChunks())
	}

	// A second init is a no-op and keeps the same pool.
	if err := InitGlobal(); err != nil {
		t.Fatalf("second InitGlobal failed: %v", err)
	}
	if Global() != pool {
		t.Error("second InitGlobal must not replace the pool")
	}

	// The global pool round-trips like any other.
	b := Global().Alloc(128)
	if len(b) != 128 {
		t.Fatalf("expected len=128, got %d", len(b))
	}
	Global().Release(b)

	CleanupGlobal()
	if Global() != nil {
		t.Error("registry should be empty after CleanupGlobal")
	}
	CleanupGlobal() // idempotent
}

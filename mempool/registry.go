package mempool

import (
	"sync"

	"github.com/binarycleric/pgvector/scope"
)

// Default geometry for the process-wide tuple pool: enough chunks for a
// typical index build before exhaustion fallbacks kick in.
const (
	// DefaultChunkSize is the chunk size of the global pool, sized for one
	// index tuple allocation.
	DefaultChunkSize = 512
	// DefaultChunkCount is the number of chunks the global pool reserves.
	DefaultChunkCount = 32768
)

// The process-wide registry. InitGlobal/CleanupGlobal are the only writers;
// the mutex makes both idempotent entry points safe to call from process
// startup/shutdown hooks.
var (
	globalMu    sync.Mutex
	globalPool  *Pool
	globalScope *scope.Scope
)

// InitGlobal creates the process-wide pool with the default geometry under a
// process-lifetime scope. It is idempotent: if the pool already exists the
// call is a no-op.
func InitGlobal(opts ...Option) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalPool != nil {
		return nil
	}

	sc := scope.New("process")
	pool, err := New(DefaultChunkSize, DefaultChunkCount, sc, opts...)
	if err != nil {
		sc.Destroy()
		return err
	}

	globalScope = sc
	globalPool = pool
	return nil
}

// CleanupGlobal destroys the process-wide pool and clears the registry.
// Idempotent if the registry is already empty. Buffers handed out by the
// global pool are invalid afterwards.
func CleanupGlobal() {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalPool == nil {
		return
	}

	globalPool.Destroy()
	globalScope.Destroy()
	globalPool = nil
	globalScope = nil
}

// Global returns the process-wide pool, or nil before InitGlobal (and after
// CleanupGlobal). A nil pool is safe to use: every operation on it falls
// back or no-ops.
func Global() *Pool {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalPool
}

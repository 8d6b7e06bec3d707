package mempool

import (
	"unsafe"

	"github.com/binarycleric/pgvector/internal/mmap"
	"github.com/binarycleric/pgvector/scope"
)

// Alignment is the allocation alignment chunk sizes are rounded up to,
// matching the platform word size.
const Alignment = int(unsafe.Sizeof(uintptr(0)))

func alignUp(n int) int {
	return (n + Alignment - 1) &^ (Alignment - 1)
}

// arena is the pool's contiguous backing buffer, sliced into chunkCount
// chunks of chunkSize bytes each. The buffer lives either on the Go heap or
// in an anonymous mapping outside the GC; either way the owning scope
// releases it.
type arena struct {
	buf        []byte
	chunkSize  int
	chunkCount int
}

// newArena reserves the backing buffer under sc. chunkSize must already be
// aligned and chunkSize*chunkCount must not overflow (the caller checks).
func newArena(chunkSize, chunkCount int, offHeap bool, sc *scope.Scope) (*arena, error) {
	a := &arena{
		chunkSize:  chunkSize,
		chunkCount: chunkCount,
	}

	total := chunkSize * chunkCount
	if total > 0 {
		if offHeap {
			m, err := mmap.MapAnon(total)
			if err != nil {
				return nil, err
			}
			a.buf = m.Bytes()
			sc.DeferClose(m)
		} else {
			a.buf = make([]byte, total)
		}
	}
	sc.Defer(func() { a.buf = nil })

	return a, nil
}

// chunk returns the i-th chunk as a full-capacity slice.
func (a *arena) chunk(i int) []byte {
	lo := i * a.chunkSize
	hi := lo + a.chunkSize
	return a.buf[lo:hi:hi]
}

// offsetOf maps a pointer back to its byte offset within the arena. The
// second result is false when the pointer does not fall inside the backing
// buffer, i.e. the buffer was not handed out by this pool.
func (a *arena) offsetOf(p *byte) (int, bool) {
	if len(a.buf) == 0 {
		return 0, false
	}
	base := uintptr(unsafe.Pointer(unsafe.SliceData(a.buf)))
	addr := uintptr(unsafe.Pointer(p))
	if addr < base || addr >= base+uintptr(len(a.buf)) {
		return 0, false
	}
	return int(addr - base), true
}

package recall

// VectorSource is the tracker's boundary to the backing table. Ground-truth
// scans iterate every stored vector; sources expose their data in blocks so
// the scan can run block-parallel.
//
// Implementations must tolerate concurrent Block calls. IDs are the same
// identifiers the index reports in query results.
type VectorSource interface {
	// Blocks returns the number of scan blocks.
	Blocks() int
	// Block returns the identifiers and vectors of block i. The two slices
	// are parallel and must not be mutated by the caller.
	Block(i int) (ids []uint32, vectors [][]float32)
}

// MemorySource is a VectorSource over in-memory slices, split into
// fixed-size blocks. Useful for tests and for small indexes that keep all
// vectors resident.
type MemorySource struct {
	ids       []uint32
	vectors   [][]float32
	blockSize int
}

// NewMemorySource builds a source over parallel id/vector slices.
// blockSize <= 0 selects a single block.
func NewMemorySource(ids []uint32, vectors [][]float32, blockSize int) *MemorySource {
	if blockSize <= 0 {
		blockSize = len(ids)
		if blockSize == 0 {
			blockSize = 1
		}
	}
	return &MemorySource{
		ids:       ids,
		vectors:   vectors,
		blockSize: blockSize,
	}
}

// Blocks implements VectorSource.
func (m *MemorySource) Blocks() int {
	return (len(m.ids) + m.blockSize - 1) / m.blockSize
}

// Block implements VectorSource.
func (m *MemorySource) Block(i int) ([]uint32, [][]float32) {
	lo := i * m.blockSize
	hi := min(lo+m.blockSize, len(m.ids))
	return m.ids[lo:hi], m.vectors[lo:hi]
}

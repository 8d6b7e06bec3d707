package mempool

import (
	"errors"
	"fmt"
)

// ErrBadGeometry is returned when a pool is created with a non-positive chunk
// size or a negative chunk count.
var ErrBadGeometry = errors.New("mempool: chunk size must be positive and chunk count non-negative")

// ErrSizeOverflow indicates that chunk_size * chunk_count overflows the
// platform size type. The requested geometry is carried for diagnostics.
type ErrSizeOverflow struct {
	ChunkSize  int
	ChunkCount int
}

func (e *ErrSizeOverflow) Error() string {
	return fmt.Sprintf("mempool: pool size too large: %d chunks of %d bytes would overflow", e.ChunkCount, e.ChunkSize)
}

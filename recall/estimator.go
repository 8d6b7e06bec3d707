package recall

import (
	"context"
	"errors"
	"math"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"
)

// errScanLimit cancels the scan once the expected set provably exceeds the
// query limit; it never escapes countWithin.
var errScanLimit = errors.New("recall: scan limit reached")

// distEpsilon absorbs float rounding when comparing against the k-th
// distance, so the k-th result itself always counts as within radius.
var distEpsilon = math.Nextafter(1, 2) - 1

// countWithin scans src for vectors within radius of query. It returns the
// set of matching identifiers, unless the scan stopped early because more
// than limit matches exist, in which case exceeded is true and the set is
// incomplete (and returned nil).
//
// Blocks are scanned in parallel; the scan stops as soon as the limit is
// exceeded or ctx is canceled.
func (t *Tracker) countWithin(ctx context.Context, src VectorSource, query []float32, radius float64, limit int) (within *roaring.Bitmap, exceeded bool, err error) {
	blocks := src.Blocks()
	partial := make([]*roaring.Bitmap, blocks)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(t.scanParallelism)

	var total atomic.Int64
	for i := 0; i < blocks; i++ {
		i := i
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			ids, vectors := src.Block(i)
			bm := roaring.New()
			for j, vec := range vectors {
				d := float64(t.dist(query, vec))
				if d <= radius+distEpsilon {
					bm.Add(ids[j])
					if total.Add(1) > int64(limit) {
						return errScanLimit
					}
				}
			}
			partial[i] = bm
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, errScanLimit) {
			return nil, true, nil
		}
		return nil, false, err
	}

	merged := roaring.New()
	for _, bm := range partial {
		merged.Or(bm)
	}
	return merged, false, nil
}

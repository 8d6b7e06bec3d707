package recall

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// QuerySample accumulates what a single query returned: the result
// identifiers, how many results were requested, and the largest (k-th)
// result distance. The index hands one to the tracker when the query
// finishes; the tracker uses the k-th distance as the radius for its
// ground-truth scan.
type QuerySample struct {
	limit       int
	results     *roaring.Bitmap
	resultCount int
	maxDistance float64
}

// NewQuerySample starts a sample for a query requesting limit results.
func NewQuerySample(limit int) *QuerySample {
	return &QuerySample{
		limit:   limit,
		results: roaring.New(),
	}
}

// Add records one returned result identifier.
func (qs *QuerySample) Add(id uint32) {
	qs.results.Add(id)
	qs.resultCount++
}

// ObserveDistance records a result distance; the maximum seen becomes the
// sample's scan radius.
func (qs *QuerySample) ObserveDistance(d float64) {
	if d > qs.maxDistance {
		qs.maxDistance = d
	}
}

// Limit returns the number of results the query asked for.
func (qs *QuerySample) Limit() int {
	return qs.limit
}

// ResultCount returns the number of results recorded.
func (qs *QuerySample) ResultCount() int {
	return qs.resultCount
}

// MaxDistance returns the largest recorded result distance.
func (qs *QuerySample) MaxDistance() float64 {
	return qs.maxDistance
}

// Results returns the set of recorded result identifiers.
func (qs *QuerySample) Results() *roaring.Bitmap {
	return qs.results
}

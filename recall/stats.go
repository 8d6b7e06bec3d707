package recall

import "time"

// IndexStats are the accumulated recall statistics for one index.
type IndexStats struct {
	// TotalQueries counts every observed query, sampled or not.
	TotalQueries int64
	// SampledQueries counts the queries that went through ground-truth
	// estimation.
	SampledQueries int64
	// TotalResultsReturned sums result counts across all observed queries.
	TotalResultsReturned int64
	// CorrectMatches sums, over sampled queries, the number of returned
	// results that belong to the expected set.
	CorrectMatches int64
	// TotalExpected sums, over sampled queries, the size of the expected
	// result set (lower-bounded when the scan stops early).
	TotalExpected int64
	// CurrentRecall is CorrectMatches / TotalExpected.
	CurrentRecall float64
	// AvgResultsPerQuery is TotalResultsReturned / TotalQueries.
	AvgResultsPerQuery float64
	// LastUpdated is when the stats last changed.
	LastUpdated time.Time
}

// Row pairs an index name with its statistics in a Snapshot.
type Row struct {
	Index string
	IndexStats
}

// Package pgvector provides the memory-management and quality-tracking
// runtime for a vector-similarity index: a fixed-size-chunk memory pool for
// the hot tuple allocation path, and a sampling recall tracker that measures
// how close approximate query results come to ground truth.
//
// # Quick start
//
//	err := pgvector.Init(
//	    pgvector.WithRecallSettings(recall.Settings{
//	        TrackRecall: true,
//	        SampleRate:  100,
//	        MaxSamples:  10000,
//	    }),
//	)
//	defer pgvector.Shutdown()
//
//	// Hot path: borrow fixed-size buffers from the process-wide pool.
//	buf := pgvector.TuplePool().Alloc(320)
//	defer pgvector.TuplePool().Release(buf)
//
//	// After a query finishes, feed its results to the recall tracker.
//	pgvector.Recall().Observe(ctx, "items_embedding_idx", source, query, sample)
//
// The subpackages stand alone as well: mempool implements the pool, recall
// the tracker, distance the scan kernels, and scope the hierarchical release
// regions pool memory lives under.
package pgvector

// Package distance provides vector distance kernels used by the recall
// estimator's ground-truth scans.
//
// The kernels are portable Go with manually unrolled accumulator lanes,
// which lets the compiler vectorize the hot loops on amd64 and arm64.
package distance

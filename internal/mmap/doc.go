// Package mmap provides anonymous memory mappings for off-heap allocation.
//
// MapAnon creates a read-write anonymous mapping. The returned Mapping owns
// the memory and must be closed exactly once; the byte slice obtained from
// Bytes() is invalid after Close.
//
// Anonymous mappings keep large pool arenas outside the Go garbage
// collector's view, so a multi-hundred-megabyte arena does not inflate GC
// scan times.
//
//   - Unix (Linux, macOS, BSD): mmap(2) with MAP_ANON|MAP_PRIVATE
//   - Windows: VirtualAlloc with MEM_RESERVE|MEM_COMMIT
package mmap

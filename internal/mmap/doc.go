// Package mmap provides read-only memory-mapped file access for zero-copy
// I/O.
//
// # Overview
//
// Memory mapping gives direct access to file contents without copying data
// through kernel buffers. Image blobs served from local disk can reach
// hundreds of megabytes; mapping them keeps random verification reads cheap
// and leaves caching to the OS page cache.
//
// # Usage
//
//	m, err := mmap.Open("images/base-1.4.2.fzi")
//	if err != nil { ... }
//	defer m.Close()
//
//	// Zero-copy access to file contents
//	data := m.Bytes()
//
//	// Provide kernel hints for access patterns
//	m.Advise(mmap.AccessSequential)
//
// # Platform Support
//
// The package provides a unified API across platforms:
//
//   - Unix (Linux, macOS, BSD): Uses mmap(2) with madvise(2) for access hints
//   - Windows: Uses CreateFileMapping/MapViewOfFile (madvise is a no-op)
//
// # Thread Safety
//
// Mapping is safe for concurrent read access. Close is idempotent and
// protected by atomic operations. Callers must ensure no goroutines access
// Bytes() after Close() returns.
package mmap

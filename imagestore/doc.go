// Package imagestore provides storage abstraction for firmware image blobs.
//
// Store is the interface for reading and writing image files captured from
// or destined for a device. Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: In-memory store for tests and tooling
//   - LocalStore: Local filesystem with mmap reads and atomic writes
//   - s3.Store: Amazon S3 with range reads and streamed multipart uploads
//   - minio.Store: MinIO and other S3-compatible endpoints
//   - CachingStore: Block-level read cache in front of any other store
//
// # Custom Implementations
//
// Implement the Store interface to support custom backends:
//
//	type Store interface {
//	    Open(ctx, name) (Blob, error)           // Open for reading
//	    Create(ctx, name) (WritableBlob, error) // Create for streaming writes
//	    Put(ctx, name, data) error              // Atomic write
//	    Delete(ctx, name) error
//	    Exists(ctx, name) (bool, error)
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Blobs that can serve sequential ranges cheaply should also implement
// RangeReader; image loading prefers it over repeated ReadAt calls.
package imagestore

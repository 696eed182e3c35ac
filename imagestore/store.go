package imagestore

import (
	"context"
	"errors"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// errors.Is(err, ErrNotFound). The default maps to os.ErrNotExist.
var ErrNotFound = os.ErrNotExist

// ErrConflict is returned by conditional writes when the blob already exists.
var ErrConflict = errors.New("imagestore: blob already exists")

// Store is an abstraction for keeping firmware image blobs.
// Implementations must be safe for concurrent use.
type Store interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)

	// Create creates a blob for streaming writes. The blob becomes
	// visible when the returned writer is closed without error.
	Create(ctx context.Context, name string) (WritableBlob, error)

	// Put writes a blob atomically.
	Put(ctx context.Context, name string, data []byte) error

	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error

	// Exists reports whether a blob exists.
	Exists(ctx context.Context, name string) (bool, error)

	// List returns all blob names with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to an image blob.
type Blob interface {
	io.ReaderAt
	io.Closer
	// Size returns the size of the blob in bytes.
	Size() int64
}

// WritableBlob is a streaming write handle. The write is finalized by Close.
type WritableBlob interface {
	io.Writer
	io.Closer
	// Sync flushes buffered data where the backend supports it.
	Sync() error
}

// ConditionalPutter is an optional interface for stores that support
// atomic create-if-absent writes. Publishing a release image under an
// immutable name uses this to rule out silent overwrites.
type ConditionalPutter interface {
	// PutIfNotExists writes a blob only if the name is not already taken.
	// Returns ErrConflict if it is.
	PutIfNotExists(ctx context.Context, name string, data []byte) error
}

// Mappable is an optional interface for Blobs that support zero-copy access.
type Mappable interface {
	// Bytes returns the underlying byte slice.
	// The slice is valid until the Blob is closed.
	Bytes() ([]byte, error)
}

// RangeReader is an optional interface for Blobs that serve sequential
// ranges more cheaply than repeated ReadAt calls. Remote backends back it
// with a single ranged request.
type RangeReader interface {
	// ReadRange returns a reader over [off, off+length), truncated at the
	// end of the blob.
	ReadRange(off, length int64) (io.ReadCloser, error)
}

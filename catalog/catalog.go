// Package catalog tracks published firmware images and their metadata.
//
// A catalog maps an image name to a monotonically increasing sequence of
// versions. Committing a new version uses optimistic concurrency: the commit
// claims the next free version number, and a concurrent commit for the same
// name loses with ErrConflict instead of silently overwriting. Payload bytes
// live in an imagestore.Store; the catalog only records where they are and
// what they looked like when published.
package catalog

import (
	"context"
	"errors"
	"os"
	"time"
)

// ErrNotFound is returned when an image or version does not exist.
var ErrNotFound = os.ErrNotExist

// ErrConflict is returned when a concurrent commit claimed the version first.
var ErrConflict = errors.New("catalog: concurrent commit detected")

// ImageInfo describes a committed firmware image version.
type ImageInfo struct {
	// Name is the image name, unique per device line (e.g. "flip-a7/ext").
	Name string `json:"name"`

	// Version is assigned by Commit, starting at 1 per name.
	Version uint64 `json:"version"`

	// CreatedAt is when the version was committed.
	CreatedAt time.Time `json:"created_at"`

	// Size is the uncompressed payload size in bytes.
	Size int64 `json:"size"`

	// Checksum is the CRC32 of the image container.
	Checksum uint32 `json:"checksum"`

	// Compression names the payload compression ("none", "lz4", "zstd").
	Compression string `json:"compression"`

	// FileCount is the number of files in the image.
	FileCount int `json:"file_count"`
}

// Catalog stores versioned image metadata.
// Implementations must be safe for concurrent use.
type Catalog interface {
	// Commit registers info under the next free version for info.Name and
	// returns the assigned version. Returns ErrConflict when a concurrent
	// commit claimed that version first; callers retry by committing again.
	Commit(ctx context.Context, info ImageInfo) (uint64, error)

	// Latest returns the highest committed version for name.
	Latest(ctx context.Context, name string) (ImageInfo, error)

	// Get returns a specific version.
	Get(ctx context.Context, name string, version uint64) (ImageInfo, error)

	// List returns all committed versions across all names, ordered by
	// name then version.
	List(ctx context.Context) ([]ImageInfo, error)

	// Delete removes a version. Deleting a missing version is not an error.
	Delete(ctx context.Context, name string, version uint64) error
}

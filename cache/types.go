package cache

// Key identifies one cached block of a named blob.
type Key struct {
	// Name is the blob name in the backing store.
	Name string
	// Block is the block index within the blob.
	Block uint64
}

// BlockCache is a byte-oriented cache for immutable blocks.
// Returned slices must be treated as read-only.
type BlockCache interface {
	// Get returns a cached block. ok is false on a miss.
	Get(key Key) (b []byte, ok bool)

	// Set caches a block. Implementations may copy or retain b; the caller
	// must treat it as immutable afterwards.
	Set(key Key, b []byte)

	// Invalidate removes entries matching the predicate.
	Invalidate(predicate func(key Key) bool)

	// Close releases background resources.
	Close() error

	// Stats returns hit and miss counts.
	Stats() (hits, misses int64)
}

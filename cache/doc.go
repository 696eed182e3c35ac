// Package cache provides LRU block caches for image blobs.
//
// Remote stores pay a round trip per read; the caching layer in imagestore
// splits blobs into fixed-size blocks and keeps hot blocks here.
//
// LRUBlockCache holds blocks in memory under a byte budget. DiskBlockCache
// persists them under a directory and rebuilds its index on startup, so
// blocks survive process restarts. Both track hit/miss counts.
package cache

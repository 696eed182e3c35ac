package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/flashgo/cache"
)

// defaultCacheBlockSize is sized for image pulls from remote stores, where
// round trips dominate over transfer volume.
const defaultCacheBlockSize = 256 * 1024

// cacheFillConcurrency bounds parallel backend reads during a cache fill.
const cacheFillConcurrency = 8

// CachingStore wraps a Store with block-level read caching. Image blobs are
// immutable once written, so cached blocks only turn stale when a name is
// overwritten or deleted, and both paths invalidate.
//
// Writes pass through to the base store.
type CachingStore struct {
	inner     Store
	cache     cache.BlockCache
	blockSize int64
}

var (
	_ Store             = (*CachingStore)(nil)
	_ ConditionalPutter = (*CachingStore)(nil)
)

// NewCachingStore wraps inner with a block cache. blockSize defaults to
// 256 KiB if <= 0.
func NewCachingStore(inner Store, c cache.BlockCache, blockSize int64) *CachingStore {
	if blockSize <= 0 {
		blockSize = defaultCacheBlockSize
	}
	return &CachingStore{inner: inner, cache: c, blockSize: blockSize}
}

// Open opens a blob whose reads go through the block cache.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &cachingBlob{
		inner:     b,
		cache:     s.cache,
		name:      name,
		blockSize: s.blockSize,
		size:      b.Size(),
	}, nil
}

// Create creates a blob in the base store. Cached blocks for the name are
// dropped when the writer closes successfully, since a finished Create
// replaces whatever was there.
func (s *CachingStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	w, err := s.inner.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	return &invalidatingWriter{WritableBlob: w, store: s, name: name}, nil
}

// Put writes through to the base store and drops cached blocks for the name.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.invalidate(name)
	return s.inner.Put(ctx, name, data)
}

// PutIfNotExists delegates to the base store. It requires the base store to
// support conditional writes.
func (s *CachingStore) PutIfNotExists(ctx context.Context, name string, data []byte) error {
	cp, ok := s.inner.(ConditionalPutter)
	if !ok {
		return fmt.Errorf("imagestore: %T does not support conditional writes", s.inner)
	}
	return cp.PutIfNotExists(ctx, name, data)
}

// Delete removes the blob and its cached blocks.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.invalidate(name)
	return s.inner.Delete(ctx, name)
}

// Exists reports whether a blob exists in the base store.
func (s *CachingStore) Exists(ctx context.Context, name string) (bool, error) {
	return s.inner.Exists(ctx, name)
}

// List lists blob names in the base store.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

func (s *CachingStore) invalidate(name string) {
	s.cache.Invalidate(func(key cache.Key) bool {
		return key.Name == name
	})
}

// invalidatingWriter drops cached blocks once a replacing write lands.
type invalidatingWriter struct {
	WritableBlob
	store *CachingStore
	name  string
}

func (w *invalidatingWriter) Close() error {
	err := w.WritableBlob.Close()
	if err == nil {
		w.store.invalidate(w.name)
	}
	return err
}

// cachingBlob serves reads from fixed-size cached blocks, filling misses
// from the wrapped blob.
type cachingBlob struct {
	inner     Blob
	cache     cache.BlockCache
	name      string
	blockSize int64
	size      int64
}

func (b *cachingBlob) Close() error {
	return b.inner.Close()
}

func (b *cachingBlob) Size() int64 {
	return b.size
}

func (b *cachingBlob) ReadAt(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off < 0 {
		return 0, errors.New("imagestore: negative offset")
	}
	if off >= b.size {
		return 0, io.EOF
	}

	end := off + int64(len(p))
	if end > b.size {
		end = b.size
	}

	startBlock := off / b.blockSize
	endBlock := (end - 1) / b.blockSize

	if err := b.fillCache(startBlock, endBlock); err != nil {
		return 0, err
	}

	total := 0
	for blk := startBlock; blk <= endBlock; blk++ {
		blockData, err := b.fetchBlock(blk)
		if err != nil {
			return total, err
		}

		blkStart := blk * b.blockSize
		from := int64(0)
		if off > blkStart {
			from = off - blkStart
		}
		to := end - blkStart
		if to > int64(len(blockData)) {
			to = int64(len(blockData))
		}
		if to <= from {
			break
		}
		total += copy(p[blkStart+from-off:], blockData[from:to])
	}

	if total < len(p) {
		return total, io.EOF
	}
	return total, nil
}

// ReadRange serves sequential reads over the same cached blocks.
func (b *cachingBlob) ReadRange(off, length int64) (io.ReadCloser, error) {
	if off < 0 || length < 0 {
		return nil, errors.New("imagestore: negative range")
	}
	if off > b.size {
		off = b.size
	}
	if off+length > b.size {
		length = b.size - off
	}
	return io.NopCloser(io.NewSectionReader(b, off, length)), nil
}

func (b *cachingBlob) key(blk int64) cache.Key {
	return cache.Key{Name: b.name, Block: uint64(blk)}
}

// fillCache loads the missing blocks in [startBlock, endBlock], coalescing
// contiguous misses into single backend reads.
func (b *cachingBlob) fillCache(startBlock, endBlock int64) error {
	type run struct{ start, count int64 }
	var missing []run

	runStart, runCount := int64(-1), int64(0)
	for blk := startBlock; blk <= endBlock; blk++ {
		if _, ok := b.cache.Get(b.key(blk)); ok {
			if runStart != -1 {
				missing = append(missing, run{runStart, runCount})
				runStart, runCount = -1, 0
			}
			continue
		}
		if runStart == -1 {
			runStart = blk
		}
		runCount++
	}
	if runStart != -1 {
		missing = append(missing, run{runStart, runCount})
	}
	if len(missing) == 0 {
		return nil
	}

	var g errgroup.Group
	g.SetLimit(cacheFillConcurrency)

	for _, r := range missing {
		g.Go(func() error {
			byteStart := r.start * b.blockSize
			if byteStart >= b.size {
				return nil
			}
			byteLen := r.count * b.blockSize
			if byteStart+byteLen > b.size {
				byteLen = b.size - byteStart
			}

			buf := make([]byte, byteLen)
			n, err := b.inner.ReadAt(buf, byteStart)
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			buf = buf[:n]

			for i := int64(0); i < r.count && i*b.blockSize < int64(len(buf)); i++ {
				lo := i * b.blockSize
				hi := lo + b.blockSize
				if hi > int64(len(buf)) {
					hi = int64(len(buf))
				}
				// Copy so a cached block does not pin the whole run buffer.
				blockCopy := make([]byte, hi-lo)
				copy(blockCopy, buf[lo:hi])
				b.cache.Set(b.key(r.start+i), blockCopy)
			}
			return nil
		})
	}
	return g.Wait()
}

// fetchBlock returns one block, reading through if the fill was dropped or
// the block already got evicted again.
func (b *cachingBlob) fetchBlock(blk int64) ([]byte, error) {
	key := b.key(blk)
	if data, ok := b.cache.Get(key); ok {
		return data, nil
	}

	start := blk * b.blockSize
	if start >= b.size {
		return nil, nil
	}
	length := b.blockSize
	if start+length > b.size {
		length = b.size - start
	}

	buf := make([]byte, length)
	n, err := b.inner.ReadAt(buf, start)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	buf = buf[:n]
	if n > 0 {
		b.cache.Set(key, buf)
	}
	return buf, nil
}

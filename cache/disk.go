package cache

import (
	"container/list"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// DiskCacheConfig configures a DiskBlockCache.
type DiskCacheConfig struct {
	// RootDir is the directory cache files are stored under.
	RootDir string

	// MaxSizeBytes is the eviction threshold for the cache as a whole.
	MaxSizeBytes int64

	// MaxConcurrentWrites bounds background cache fills. Defaults to 16.
	MaxConcurrentWrites int64
}

// DiskBlockCache is a BlockCache persisted on the local file system. It
// keeps blocks of remote images across process restarts, so a lab machine
// that flashed a release once does not download it again the next day.
//
// Fills happen in the background; a full write queue drops the block
// instead of blocking the read path.
type DiskBlockCache struct {
	root    string
	maxSize int64

	writeSem *semaphore.Weighted
	wg       sync.WaitGroup

	mu        sync.Mutex
	size      int64
	items     map[Key]*list.Element
	evictList *list.List

	hits   atomic.Int64
	misses atomic.Int64
}

type diskEntry struct {
	key  Key
	size int64
	path string
}

// NewDiskBlockCache creates a disk-backed block cache rooted at
// config.RootDir and rebuilds its index from the files already there.
func NewDiskBlockCache(config DiskCacheConfig) (*DiskBlockCache, error) {
	if err := os.MkdirAll(config.RootDir, 0o755); err != nil {
		return nil, err
	}

	maxWrites := config.MaxConcurrentWrites
	if maxWrites <= 0 {
		maxWrites = 16
	}

	c := &DiskBlockCache{
		root:      config.RootDir,
		maxSize:   config.MaxSizeBytes,
		writeSem:  semaphore.NewWeighted(maxWrites),
		items:     make(map[Key]*list.Element),
		evictList: list.New(),
	}
	c.scanExistingFiles()
	return c, nil
}

func (c *DiskBlockCache) scanExistingFiles() {
	_ = filepath.Walk(c.root, func(p string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		key, ok := c.parsePath(p)
		if !ok {
			return nil
		}

		c.mu.Lock()
		if _, exists := c.items[key]; !exists {
			ent := &diskEntry{key: key, size: info.Size(), path: p}
			c.items[key] = c.evictList.PushFront(ent)
			c.size += info.Size()
		}
		c.mu.Unlock()
		return nil
	})
}

// blockPath maps a key to root/<name>/<block>.blk. Blob names are
// slash-separated and already validated by the stores, so they are safe to
// use as directories.
func (c *DiskBlockCache) blockPath(key Key) string {
	return filepath.Join(c.root, filepath.FromSlash(key.Name), strconv.FormatUint(key.Block, 10)+".blk")
}

func (c *DiskBlockCache) parsePath(p string) (Key, bool) {
	rel, err := filepath.Rel(c.root, p)
	if err != nil {
		return Key{}, false
	}

	dir, file := filepath.Split(rel)
	name := filepath.ToSlash(strings.TrimSuffix(dir, string(filepath.Separator)))
	if name == "" || !strings.HasSuffix(file, ".blk") {
		return Key{}, false
	}

	block, err := strconv.ParseUint(strings.TrimSuffix(file, ".blk"), 10, 64)
	if err != nil {
		return Key{}, false
	}
	return Key{Name: name, Block: block}, true
}

// Get returns a cached block.
func (c *DiskBlockCache) Get(key Key) ([]byte, bool) {
	c.mu.Lock()
	elem, ok := c.items[key]
	if ok {
		c.evictList.MoveToFront(elem)
	}
	c.mu.Unlock()

	if !ok {
		c.misses.Add(1)
		return nil, false
	}

	data, err := os.ReadFile(elem.Value.(*diskEntry).path)
	if err != nil {
		// The file went away under us. Drop the index entry.
		c.mu.Lock()
		c.removeElement(elem)
		c.mu.Unlock()
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	return data, true
}

// Set caches a block. Blocks are immutable, so setting an existing key only
// refreshes its recency.
func (c *DiskBlockCache) Set(key Key, b []byte) {
	c.mu.Lock()
	if elem, ok := c.items[key]; ok {
		c.evictList.MoveToFront(elem)
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	if !c.writeSem.TryAcquire(1) {
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.writeSem.Release(1)
		c.write(key, b)
	}()
}

func (c *DiskBlockCache) write(key Key, b []byte) {
	target := c.blockPath(key)
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return
	}
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		_ = os.Remove(tmp.Name())
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[key]; ok {
		// A concurrent fill won the rename race; the bytes are identical.
		return
	}
	ent := &diskEntry{key: key, size: int64(len(b)), path: target}
	c.items[key] = c.evictList.PushFront(ent)
	c.size += ent.size

	for c.size > c.maxSize {
		elem := c.evictList.Back()
		if elem == nil {
			return
		}
		c.removeElement(elem)
	}
}

// Invalidate removes entries matching the predicate, including their files.
func (c *DiskBlockCache) Invalidate(predicate func(key Key) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var stale []*list.Element
	for key, elem := range c.items {
		if predicate(key) {
			stale = append(stale, elem)
		}
	}
	for _, elem := range stale {
		c.removeElement(elem)
	}
}

// Close waits for in-flight background writes.
func (c *DiskBlockCache) Close() error {
	c.wg.Wait()
	return nil
}

// Stats returns hit and miss counts.
func (c *DiskBlockCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Size returns the indexed byte count on disk.
func (c *DiskBlockCache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

func (c *DiskBlockCache) removeElement(elem *list.Element) {
	c.evictList.Remove(elem)
	ent := elem.Value.(*diskEntry)
	delete(c.items, ent.key)
	c.size -= ent.size
	_ = os.Remove(ent.path)
}

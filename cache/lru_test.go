package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLRUBlockCacheEviction(t *testing.T) {
	c := NewLRUBlockCache(50)

	k1 := Key{Name: "a.fzi", Block: 1}
	k2 := Key{Name: "a.fzi", Block: 2}
	k3 := Key{Name: "a.fzi", Block: 3}

	c.Set(k1, make([]byte, 20))
	assert.Equal(t, int64(20), c.Size())

	c.Set(k2, make([]byte, 20))
	assert.Equal(t, int64(40), c.Size())

	// 60 bytes exceed the 50-byte budget; the oldest block goes.
	c.Set(k3, make([]byte, 20))
	assert.Equal(t, int64(40), c.Size())

	_, ok := c.Get(k1)
	assert.False(t, ok, "k1 should be evicted")
	_, ok = c.Get(k2)
	assert.True(t, ok)
	_, ok = c.Get(k3)
	assert.True(t, ok)
}

func TestLRUBlockCacheRecency(t *testing.T) {
	c := NewLRUBlockCache(40)

	k1 := Key{Name: "a.fzi", Block: 1}
	k2 := Key{Name: "a.fzi", Block: 2}
	k3 := Key{Name: "a.fzi", Block: 3}

	c.Set(k1, make([]byte, 20))
	c.Set(k2, make([]byte, 20))

	// Touch k1 so k2 becomes the eviction candidate.
	_, ok := c.Get(k1)
	assert.True(t, ok)

	c.Set(k3, make([]byte, 20))

	_, ok = c.Get(k1)
	assert.True(t, ok, "recently used block should survive")
	_, ok = c.Get(k2)
	assert.False(t, ok)
}

func TestLRUBlockCacheOversizedItem(t *testing.T) {
	c := NewLRUBlockCache(50)
	k := Key{Name: "a.fzi", Block: 1}

	c.Set(k, make([]byte, 60))
	_, ok := c.Get(k)
	assert.False(t, ok, "item larger than the budget should not be cached")
	assert.Zero(t, c.Size())
}

func TestLRUBlockCacheUpdate(t *testing.T) {
	c := NewLRUBlockCache(50)
	k := Key{Name: "a.fzi", Block: 1}

	c.Set(k, make([]byte, 10))
	assert.Equal(t, int64(10), c.Size())

	c.Set(k, make([]byte, 20))
	assert.Equal(t, int64(20), c.Size())

	c.Set(k, make([]byte, 5))
	assert.Equal(t, int64(5), c.Size())

	v, ok := c.Get(k)
	assert.True(t, ok)
	assert.Len(t, v, 5)
}

func TestLRUBlockCacheInvalidate(t *testing.T) {
	c := NewLRUBlockCache(1000)

	c.Set(Key{Name: "a.fzi", Block: 1}, make([]byte, 10))
	c.Set(Key{Name: "a.fzi", Block: 2}, make([]byte, 10))
	c.Set(Key{Name: "b.fzi", Block: 1}, make([]byte, 10))

	c.Invalidate(func(key Key) bool { return key.Name == "a.fzi" })

	_, ok := c.Get(Key{Name: "a.fzi", Block: 1})
	assert.False(t, ok)
	_, ok = c.Get(Key{Name: "a.fzi", Block: 2})
	assert.False(t, ok)
	_, ok = c.Get(Key{Name: "b.fzi", Block: 1})
	assert.True(t, ok)
	assert.Equal(t, int64(10), c.Size())
}

func TestLRUBlockCacheStats(t *testing.T) {
	c := NewLRUBlockCache(100)
	k := Key{Name: "a.fzi", Block: 1}

	_, _ = c.Get(k)
	c.Set(k, make([]byte, 10))
	_, _ = c.Get(k)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

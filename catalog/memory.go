package catalog

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryCatalog is an in-memory Catalog for tests and tooling.
// Thread-safe for concurrent commits and reads.
type MemoryCatalog struct {
	mu     sync.RWMutex
	images map[string][]ImageInfo // name -> versions ascending
}

var _ Catalog = (*MemoryCatalog)(nil)

// NewMemoryCatalog creates an empty in-memory catalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		images: make(map[string][]ImageInfo),
	}
}

// Commit registers info under the next free version and returns it.
func (c *MemoryCatalog) Commit(_ context.Context, info ImageInfo) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	versions := c.images[info.Name]
	info.Version = 1
	if len(versions) > 0 {
		info.Version = versions[len(versions)-1].Version + 1
	}
	if info.CreatedAt.IsZero() {
		info.CreatedAt = time.Now().UTC()
	}

	c.images[info.Name] = append(versions, info)
	return info.Version, nil
}

// Latest returns the highest committed version for name.
func (c *MemoryCatalog) Latest(_ context.Context, name string) (ImageInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	versions := c.images[name]
	if len(versions) == 0 {
		return ImageInfo{}, ErrNotFound
	}
	return versions[len(versions)-1], nil
}

// Get returns a specific version.
func (c *MemoryCatalog) Get(_ context.Context, name string, version uint64) (ImageInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, info := range c.images[name] {
		if info.Version == version {
			return info, nil
		}
	}
	return ImageInfo{}, ErrNotFound
}

// List returns all committed versions, ordered by name then version.
func (c *MemoryCatalog) List(_ context.Context) ([]ImageInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var all []ImageInfo
	for _, versions := range c.images {
		all = append(all, versions...)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].Version < all[j].Version
	})
	return all, nil
}

// Delete removes a version. Deleting a missing version is not an error.
func (c *MemoryCatalog) Delete(_ context.Context, name string, version uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	versions := c.images[name]
	for i, info := range versions {
		if info.Version == version {
			c.images[name] = append(versions[:i], versions[i+1:]...)
			return nil
		}
	}
	return nil
}

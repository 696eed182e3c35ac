package devsim

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// allocator hands out fixed-size medium blocks. Free blocks are tracked in a
// roaring bitmap so fragmentation stays cheap regardless of volume size.
type allocator struct {
	free  *roaring.Bitmap
	total uint32
}

func newAllocator(total uint32) *allocator {
	free := roaring.New()
	free.AddRange(0, uint64(total))
	return &allocator{
		free:  free,
		total: total,
	}
}

// allocate returns up to n free block ids, fewer when the medium is short.
// The returned blocks are marked in use.
func (a *allocator) allocate(n int) []uint32 {
	if n <= 0 {
		return nil
	}

	ids := make([]uint32, 0, n)
	it := a.free.Iterator()
	for it.HasNext() && len(ids) < n {
		ids = append(ids, it.Next())
	}
	for _, id := range ids {
		a.free.Remove(id)
	}
	return ids
}

// release returns blocks to the free set.
func (a *allocator) release(ids []uint32) {
	for _, id := range ids {
		a.free.Add(id)
	}
}

// freeCount returns the number of unallocated blocks.
func (a *allocator) freeCount() uint64 {
	return a.free.GetCardinality()
}

// blocksFor returns the block count needed to hold size bytes.
func blocksFor(size, blockSize int) int {
	if size <= 0 {
		return 0
	}
	return (size + blockSize - 1) / blockSize
}

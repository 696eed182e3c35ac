package devsim

import "sort"

// Stats counts the native calls the device has served. Tests use it to
// assert that a host operation issued exactly the calls it should have.
type Stats struct {
	Allocs int64
	Opens  int64
	Reads  int64
	Writes int64
	Seeks  int64
	Tells  int64
	Sizes  int64
	Syncs  int64
	Closes int64
}

// Stats returns a snapshot of the call counters.
func (d *Device) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// HandleCount returns the number of allocated handles, open or not. A
// nonzero count after all host files are closed means a leak.
func (d *Device) HandleCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.handles)
}

// OpenFileCount returns the number of handles with a successful open.
func (d *Device) OpenFileCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for _, hs := range d.handles {
		if hs.opened {
			n++
		}
	}
	return n
}

// Paths returns the paths of all files on the volume in sorted order.
func (d *Device) Paths() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	paths := make([]string, 0, len(d.files))
	for p := range d.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// FileBytes returns the content of the file at p and whether it exists.
// It reads the volume directly, bypassing handles and the mount state.
func (d *Device) FileBytes(p string) ([]byte, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cp, ok := cleanPath(p)
	if !ok {
		return nil, false
	}
	ino, ok := d.files[cp]
	if !ok {
		return nil, false
	}
	data := make([]byte, len(ino.data))
	copy(data, ino.data)
	return data, true
}

// BlockSize returns the allocation unit in bytes.
func (d *Device) BlockSize() int {
	return d.opts.blockSize
}

// CapacityBytes returns the total size of the medium in bytes.
func (d *Device) CapacityBytes() uint64 {
	return uint64(blocksFor(d.opts.capacity, d.opts.blockSize)) * uint64(d.opts.blockSize)
}

// FreeBytes returns the unallocated size of the medium in bytes.
func (d *Device) FreeBytes() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.alloc.freeCount() * uint64(d.opts.blockSize)
}

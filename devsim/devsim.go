package devsim

import (
	"errors"
	"math"
	"path"
	"strings"
	"sync"

	"github.com/hupe1980/flashgo/fsapi"
)

// invalidChars are rejected in path components, mirroring the character set a
// FAT volume refuses.
const invalidChars = `\:*?"<>|`

var statusText = map[fsapi.Status][]byte{
	fsapi.StatusOK:               []byte("OK"),
	fsapi.StatusNotReady:         []byte("filesystem not ready"),
	fsapi.StatusExists:           []byte("file/dir already exist"),
	fsapi.StatusNotExists:        []byte("file/dir not exist"),
	fsapi.StatusInvalidParameter: []byte("invalid parameter"),
	fsapi.StatusDenied:           []byte("access denied"),
	fsapi.StatusInvalidName:      []byte("invalid name/path"),
	fsapi.StatusInternal:         []byte("internal error"),
	fsapi.StatusNotImplemented:   []byte("function not implemented"),
	fsapi.StatusAlreadyOpen:      []byte("file is already open"),
}

// inode is the backing state of a single simulated file.
type inode struct {
	data   []byte
	blocks []uint32
}

// handleState tracks one allocated handle. A handle exists from FileAlloc
// until FileClose, whether or not an open ever succeeded on it.
type handleState struct {
	path   string
	ino    *inode
	pos    uint32
	access fsapi.AccessMode
	opened bool
	last   fsapi.Status
}

// Device simulates the storage service of an embedded target: a mounted FAT
// volume behind a handle-based call surface. All calls are serialized by an
// internal mutex, matching the record-lock behavior of the real service.
//
// Failure behavior follows the FAT semantics the real medium exhibits: a
// write that outgrows the free block pool is accepted partially and reports
// success, and seeking past the end of a read-only file clamps to the end
// instead of failing.
type Device struct {
	mu         sync.Mutex
	opts       options
	alloc      *allocator
	files      map[string]*inode
	dirs       map[string]struct{}
	handles    map[fsapi.Handle]*handleState
	nextHandle uint32
	mounted    bool
	faults     []Fault
	stats      Stats
}

var _ fsapi.API = (*Device)(nil)

// New creates a mounted Device with an empty volume.
func New(optFns ...Option) *Device {
	opts := applyOptions(optFns...)
	blocks := blocksFor(opts.capacity, opts.blockSize)

	return &Device{
		opts:    opts,
		alloc:   newAllocator(uint32(blocks)),
		files:   make(map[string]*inode),
		dirs:    map[string]struct{}{"/": {}},
		handles: make(map[fsapi.Handle]*handleState),
		mounted: true,
	}
}

// Eject unmounts the simulated medium. Subsequent calls on open handles
// report StatusNotReady until Mount is called. Handles stay allocated.
func (d *Device) Eject() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mounted = false
}

// Mount re-mounts the simulated medium.
func (d *Device) Mount() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mounted = true
}

// MkDir creates a directory. The parent directory must already exist.
func (d *Device) MkDir(p string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.mounted {
		return errors.New("devsim: medium not mounted")
	}

	cp, ok := cleanPath(p)
	if !ok {
		return errors.New("devsim: invalid path")
	}
	if _, exists := d.dirs[cp]; exists {
		return nil
	}
	if _, exists := d.files[cp]; exists {
		return errors.New("devsim: path names a file")
	}
	if _, ok := d.dirs[path.Dir(cp)]; !ok {
		return errors.New("devsim: parent directory does not exist")
	}

	d.dirs[cp] = struct{}{}
	return nil
}

// FileAlloc reserves a handle slot. Allocation never fails; the handle is
// not usable until FileOpen succeeds on it, but it must be released with
// FileClose either way.
func (d *Device) FileAlloc() fsapi.Handle {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stats.Allocs++
	d.nextHandle++
	h := fsapi.Handle(d.nextHandle)
	d.handles[h] = &handleState{last: fsapi.StatusOK}
	return h
}

// FileOpen opens the file at p on a previously allocated handle. It reports
// whether the open succeeded; the cause of a failure is latched on the
// handle and readable through FileGetError.
func (d *Device) FileOpen(h fsapi.Handle, p string, access fsapi.AccessMode, mode fsapi.OpenMode) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stats.Opens++
	hs := d.handles[h]
	if hs == nil {
		return false
	}
	if hs.opened {
		hs.last = fsapi.StatusAlreadyOpen
		return false
	}
	if st, hit := d.nextFault(OpOpen); hit {
		hs.last = st
		return false
	}
	if !d.mounted {
		hs.last = fsapi.StatusNotReady
		return false
	}
	if access == 0 || access&^(fsapi.AccessRead|fsapi.AccessWrite) != 0 {
		hs.last = fsapi.StatusInvalidParameter
		return false
	}
	if !validOpenMode(mode) {
		hs.last = fsapi.StatusInvalidParameter
		return false
	}

	cp, ok := cleanPath(p)
	if !ok {
		hs.last = fsapi.StatusInvalidName
		return false
	}
	if _, isDir := d.dirs[cp]; isDir {
		hs.last = fsapi.StatusNotExists
		return false
	}
	if _, ok := d.dirs[path.Dir(cp)]; !ok {
		hs.last = fsapi.StatusNotExists
		return false
	}
	for _, other := range d.handles {
		if other.opened && other.path == cp {
			hs.last = fsapi.StatusAlreadyOpen
			return false
		}
	}

	ino := d.files[cp]
	switch mode {
	case fsapi.OpenExisting, fsapi.OpenAlways, fsapi.OpenAppend:
		if ino == nil {
			if mode == fsapi.OpenExisting {
				hs.last = fsapi.StatusNotExists
				return false
			}
			ino = &inode{}
			d.files[cp] = ino
		}
	case fsapi.CreateNew:
		if ino != nil {
			hs.last = fsapi.StatusExists
			return false
		}
		ino = &inode{}
		d.files[cp] = ino
	case fsapi.CreateAlways:
		if ino != nil {
			d.alloc.release(ino.blocks)
			ino.blocks = nil
			ino.data = nil
		} else {
			ino = &inode{}
			d.files[cp] = ino
		}
	}

	hs.path = cp
	hs.ino = ino
	hs.access = access
	hs.pos = 0
	if mode == fsapi.OpenAppend {
		hs.pos = uint32(len(ino.data))
	}
	hs.opened = true
	hs.last = fsapi.StatusOK
	return true
}

// FileRead reads up to len(p) bytes at the current position. A zero return
// with an OK latch means end of file.
func (d *Device) FileRead(h fsapi.Handle, p []byte) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stats.Reads++
	hs := d.handles[h]
	if hs == nil || !hs.opened {
		d.latchInternal(hs)
		return 0
	}
	if st, hit := d.nextFault(OpRead); hit {
		hs.last = st
		return 0
	}
	if !d.mounted {
		hs.last = fsapi.StatusNotReady
		return 0
	}
	if hs.access&fsapi.AccessRead == 0 {
		hs.last = fsapi.StatusDenied
		return 0
	}

	n := copy(p, hs.ino.data[hs.pos:])
	hs.pos += uint32(n)
	hs.last = fsapi.StatusOK
	return n
}

// FileWrite writes p at the current position, extending the file as needed.
// When the free block pool runs out mid-write the accepted prefix is kept
// and the call still latches OK, so the count is the only truth.
func (d *Device) FileWrite(h fsapi.Handle, p []byte) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stats.Writes++
	hs := d.handles[h]
	if hs == nil || !hs.opened {
		d.latchInternal(hs)
		return 0
	}
	if st, hit := d.nextFault(OpWrite); hit {
		hs.last = st
		return 0
	}
	if !d.mounted {
		hs.last = fsapi.StatusNotReady
		return 0
	}
	if hs.access&fsapi.AccessWrite == 0 {
		hs.last = fsapi.StatusDenied
		return 0
	}
	if len(p) == 0 {
		hs.last = fsapi.StatusOK
		return 0
	}

	end := uint64(hs.pos) + uint64(len(p))
	if end > math.MaxUint32 {
		end = math.MaxUint32
	}
	end = d.grow(hs.ino, end)

	n := int(end) - int(hs.pos)
	if n > 0 {
		copy(hs.ino.data[hs.pos:], p[:n])
		hs.pos += uint32(n)
	} else {
		n = 0
	}
	hs.last = fsapi.StatusOK
	return n
}

// FileSeek moves the position. With fromStart false the offset is relative
// to the current position. Seeking past the end extends a writable file
// with zeros and clamps a read-only one to the end.
func (d *Device) FileSeek(h fsapi.Handle, offset uint32, fromStart bool) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stats.Seeks++
	hs := d.handles[h]
	if hs == nil || !hs.opened {
		d.latchInternal(hs)
		return false
	}
	if st, hit := d.nextFault(OpSeek); hit {
		hs.last = st
		return false
	}
	if !d.mounted {
		hs.last = fsapi.StatusNotReady
		return false
	}

	target := uint64(offset)
	if !fromStart {
		target += uint64(hs.pos)
	}
	if target > math.MaxUint32 {
		hs.last = fsapi.StatusInvalidParameter
		return false
	}
	if target > uint64(len(hs.ino.data)) {
		if hs.access&fsapi.AccessWrite == 0 {
			target = uint64(len(hs.ino.data))
		} else if d.grow(hs.ino, target) < target {
			hs.last = fsapi.StatusDenied
			return false
		}
	}

	hs.pos = uint32(target)
	hs.last = fsapi.StatusOK
	return true
}

// FileTell returns the current position. It has no effect on the handle's
// latched status.
func (d *Device) FileTell(h fsapi.Handle) uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stats.Tells++
	hs := d.handles[h]
	if hs == nil || !hs.opened {
		return 0
	}
	return hs.pos
}

// FileSize returns the current file size.
func (d *Device) FileSize(h fsapi.Handle) uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stats.Sizes++
	hs := d.handles[h]
	if hs == nil || !hs.opened {
		return 0
	}
	if !d.mounted {
		hs.last = fsapi.StatusNotReady
		return 0
	}
	hs.last = fsapi.StatusOK
	return uint32(len(hs.ino.data))
}

// FileSync flushes the handle. The simulated medium has no write-back
// cache, so this only exercises the fault and mount paths.
func (d *Device) FileSync(h fsapi.Handle) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stats.Syncs++
	hs := d.handles[h]
	if hs == nil || !hs.opened {
		d.latchInternal(hs)
		return false
	}
	if st, hit := d.nextFault(OpSync); hit {
		hs.last = st
		return false
	}
	if !d.mounted {
		hs.last = fsapi.StatusNotReady
		return false
	}
	hs.last = fsapi.StatusOK
	return true
}

// FileClose releases the handle. The slot is freed even when the close
// reports failure and even when the handle was never opened, so a failed
// open can always be cleaned up.
func (d *Device) FileClose(h fsapi.Handle) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stats.Closes++
	hs := d.handles[h]
	if hs == nil {
		return false
	}
	delete(d.handles, h)
	if !hs.opened {
		return true
	}
	if _, hit := d.nextFault(OpClose); hit {
		return false
	}
	return true
}

// FileGetError returns the status latched by the last fallible call on the
// handle.
func (d *Device) FileGetError(h fsapi.Handle) fsapi.Status {
	d.mu.Lock()
	defer d.mu.Unlock()

	hs := d.handles[h]
	if hs == nil {
		return fsapi.StatusInternal
	}
	return hs.last
}

// ErrorDesc returns the device's description of a status code.
func (d *Device) ErrorDesc(st fsapi.Status) []byte {
	if text, ok := statusText[st]; ok {
		return text
	}
	return []byte("unknown error")
}

// grow extends ino so it can hold end bytes, allocating blocks as needed.
// It returns the end that fits, which is smaller than requested when the
// free block pool is exhausted. Newly covered bytes read as zero.
func (d *Device) grow(ino *inode, end uint64) uint64 {
	bs := uint64(d.opts.blockSize)
	want := int((end + bs - 1) / bs)
	if want > len(ino.blocks) {
		got := d.alloc.allocate(want - len(ino.blocks))
		ino.blocks = append(ino.blocks, got...)
	}
	if limit := uint64(len(ino.blocks)) * bs; end > limit {
		end = limit
	}
	if n := int(end) - len(ino.data); n > 0 {
		ino.data = append(ino.data, make([]byte, n)...)
	}
	return end
}

// latchInternal records a host programming error, such as an operation on a
// handle that was never opened.
func (d *Device) latchInternal(hs *handleState) {
	if hs != nil {
		hs.last = fsapi.StatusInternal
	}
}

func validOpenMode(mode fsapi.OpenMode) bool {
	const all = fsapi.OpenExisting | fsapi.OpenAlways | fsapi.OpenAppend | fsapi.CreateNew | fsapi.CreateAlways
	return mode != 0 && mode&(mode-1) == 0 && mode&^all == 0
}

// cleanPath normalizes p and reports whether it is a legal absolute path.
func cleanPath(p string) (string, bool) {
	if p == "" || p[0] != '/' {
		return "", false
	}
	if strings.ContainsAny(p, invalidChars) {
		return "", false
	}
	for i := 0; i < len(p); i++ {
		if p[i] < 0x20 || p[i] == 0x7f {
			return "", false
		}
	}
	return path.Clean(p), true
}

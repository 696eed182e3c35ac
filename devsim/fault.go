package devsim

import (
	"github.com/hupe1980/flashgo/fsapi"
)

// Op names a fallible device call for fault injection.
type Op uint8

const (
	OpOpen Op = iota
	OpRead
	OpWrite
	OpSeek
	OpSync
	OpClose
)

// String implements the fmt.Stringer interface.
func (o Op) String() string {
	switch o {
	case OpOpen:
		return "open"
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	case OpSeek:
		return "seek"
	case OpSync:
		return "sync"
	case OpClose:
		return "close"
	default:
		return "unknown"
	}
}

// Fault defines specific failure behavior for one device operation. The
// matching call fails with Status instead of running.
type Fault struct {
	Op     Op
	Status fsapi.Status
	Skip   int // let this many matching calls through first
	Count  int // fail this many calls, 0 means one
}

// Inject arms a fault. Faults fire in the order they were injected.
func (d *Device) Inject(f Fault) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if f.Count <= 0 {
		f.Count = 1
	}
	d.faults = append(d.faults, f)
}

// ClearFaults drops all armed faults.
func (d *Device) ClearFaults() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.faults = nil
}

// nextFault reports whether op should fail now and with which status.
// The caller must hold d.mu.
func (d *Device) nextFault(op Op) (fsapi.Status, bool) {
	for i := range d.faults {
		f := &d.faults[i]
		if f.Op != op {
			continue
		}
		if f.Skip > 0 {
			f.Skip--
			return 0, false
		}
		st := f.Status
		f.Count--
		if f.Count == 0 {
			d.faults = append(d.faults[:i], d.faults[i+1:]...)
		}
		return st, true
	}
	return 0, false
}

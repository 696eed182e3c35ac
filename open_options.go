package flashgo

import (
	"io/fs"
	"time"

	"github.com/hupe1980/flashgo/fsapi"
)

// OpenOptions accumulates the access-mode and open-mode flags for opening a
// file on the storage service.
//
// The builder is immutable: each setter returns a copy with exactly one flag
// set or cleared, so configurations can be shared and chained safely:
//
//	opts := flashgo.NewOpenOptions().Read(true).Write(true).CreateAlways(true)
//	f, err := opts.Open(st, "/data/state.bin")
//
// No flag combination is validated locally. The storage service is
// authoritative and rejects unusable combinations with ErrInvalidParameter
// through the open call's error channel.
type OpenOptions struct {
	access fsapi.AccessMode
	mode   fsapi.OpenMode
}

// NewOpenOptions returns an empty configuration. The zero value is equivalent.
func NewOpenOptions() OpenOptions {
	return OpenOptions{}
}

// Read sets or clears read access.
func (o OpenOptions) Read(enable bool) OpenOptions {
	return o.setAccess(fsapi.AccessRead, enable)
}

// Write sets or clears write access.
func (o OpenOptions) Write(enable bool) OpenOptions {
	return o.setAccess(fsapi.AccessWrite, enable)
}

// OpenExisting sets or clears the open-only-if-present mode flag.
func (o OpenOptions) OpenExisting(enable bool) OpenOptions {
	return o.setMode(fsapi.OpenExisting, enable)
}

// OpenAlways sets or clears the open-or-create mode flag.
func (o OpenOptions) OpenAlways(enable bool) OpenOptions {
	return o.setMode(fsapi.OpenAlways, enable)
}

// OpenAppend sets or clears the open-or-create-at-end mode flag.
func (o OpenOptions) OpenAppend(enable bool) OpenOptions {
	return o.setMode(fsapi.OpenAppend, enable)
}

// CreateNew sets or clears the create-only-if-absent mode flag.
func (o OpenOptions) CreateNew(enable bool) OpenOptions {
	return o.setMode(fsapi.CreateNew, enable)
}

// CreateAlways sets or clears the create-or-truncate mode flag.
func (o OpenOptions) CreateAlways(enable bool) OpenOptions {
	return o.setMode(fsapi.CreateAlways, enable)
}

func (o OpenOptions) setAccess(bit fsapi.AccessMode, enable bool) OpenOptions {
	if enable {
		o.access |= bit
	} else {
		o.access &^= bit
	}
	return o
}

func (o OpenOptions) setMode(bit fsapi.OpenMode, enable bool) OpenOptions {
	if enable {
		o.mode |= bit
	} else {
		o.mode &^= bit
	}
	return o
}

// AccessMode returns the accumulated access-mode bits.
func (o OpenOptions) AccessMode() fsapi.AccessMode { return o.access }

// OpenMode returns the accumulated open-mode bits.
func (o OpenOptions) OpenMode() fsapi.OpenMode { return o.mode }

// Open is the terminal operation: it allocates a native handle on st and
// attempts to open path with the accumulated flags.
//
// The handle release is armed before the fallible open, so a failed open
// still closes the handle, as the native contract requires. On failure the
// service's latched status is returned inside *io/fs.PathError.
func (o OpenOptions) Open(st *Storage, path string) (*File, error) {
	f := st.allocFile(path)

	start := time.Now()
	ok := st.api.FileOpen(f.h, path, o.access, o.mode)
	if !ok {
		ferr := FromNative(st.api.FileGetError(f.h))
		_ = f.Close()
		err := &fs.PathError{Op: "open", Path: path, Err: ferr}
		st.metrics.RecordOpen(time.Since(start), err)
		st.logger.LogOpen(path, o, err)
		return nil, err
	}

	st.metrics.RecordOpen(time.Since(start), nil)
	st.logger.LogOpen(path, o, nil)
	return f, nil
}

package flashgo

import (
	"fmt"
	"io"
	"io/fs"
	"math"
	"runtime"
	"time"

	"github.com/hupe1980/flashgo/fsapi"
)

// File is an open file on the device storage service. It exclusively owns one
// native handle from allocation until Close.
//
// File implements Reader, Writer, Seeker and Sizer. It is not safe for
// concurrent use; callers drive one File from one goroutine at a time, or
// serialize access themselves. Distinct File instances are independent.
//
// Close must be called exactly once. As a safety net, a File that becomes
// unreachable without being closed has its handle released by a runtime
// cleanup, but relying on that loses the error report and delays the sync
// that close performs. On-failure open paths release the handle internally;
// see OpenOptions.Open.
type File struct {
	st      *Storage
	h       fsapi.Handle
	path    string
	closed  bool
	cleanup runtime.Cleanup
}

func newFile(st *Storage, path string) *File {
	f := &File{
		st:   st,
		h:    st.api.FileAlloc(),
		path: path,
	}

	// The cleanup must not reach f itself, only the captured service and
	// the handle value.
	api := st.api
	f.cleanup = runtime.AddCleanup(f, func(h fsapi.Handle) {
		api.FileClose(h)
	}, f.h)

	return f
}

// Path returns the path the file was opened with.
func (f *File) Path() string { return f.path }

// Read fills p from the current position and returns the byte count. Short
// reads are legal. At end of file Read returns 0, io.EOF.
func (f *File) Read(p []byte) (int, error) {
	if f.closed {
		return 0, f.pathErr("read", ErrFileClosed)
	}
	if len(p) == 0 {
		return 0, nil
	}

	start := time.Now()
	n := f.st.api.FileRead(f.h, p)
	if n == 0 {
		if st := f.st.api.FileGetError(f.h); st != fsapi.StatusOK {
			err := f.pathErr("read", FromNative(st))
			f.st.metrics.RecordRead(0, time.Since(start), err)
			return 0, err
		}
		// End of file is not an error for the collector.
		f.st.metrics.RecordRead(0, time.Since(start), nil)
		return 0, io.EOF
	}

	f.st.metrics.RecordRead(n, time.Since(start), nil)
	return n, nil
}

// Write consumes p from the current position and returns the byte count.
//
// A count short of len(p) with a nil error means the medium accepted only
// part of the data, typically because it is full; the native status stays
// clean in that case. Use WriteAll to either consume everything or fail.
func (f *File) Write(p []byte) (int, error) {
	if f.closed {
		return 0, f.pathErr("write", ErrFileClosed)
	}
	if len(p) == 0 {
		return 0, nil
	}

	start := time.Now()
	n := f.st.api.FileWrite(f.h, p)
	if n < len(p) {
		if st := f.st.api.FileGetError(f.h); st != fsapi.StatusOK {
			err := f.pathErr("write", FromNative(st))
			f.st.metrics.RecordWrite(n, time.Since(start), err)
			return n, err
		}
	}

	f.st.metrics.RecordWrite(n, time.Since(start), nil)
	return n, nil
}

// Flush implements Writer. It is a no-op: the service has no buffering layer
// above the medium, close syncs implicitly and Sync forces a sync on demand.
func (f *File) Flush() error { return nil }

// Seek repositions the file and returns the new absolute position.
//
// SeekStart maps to the service's absolute positioning, forward SeekCurrent
// to its relative positioning. Backward SeekCurrent and SeekEnd targets are
// resolved locally against the current position and file size, because the
// native offset is unsigned and its relative flag counts from the current
// position only. Offsets that do not fit the native width, or resolve before
// the start of the file, fail with ErrInvalidParameter.
//
// Seek(SeekCurrent(0)) is answered from the position query alone and has no
// other effect on the handle.
func (f *File) Seek(pos SeekFrom) (uint64, error) {
	if f.closed {
		return 0, f.pathErr("seek", ErrFileClosed)
	}

	start := time.Now()

	var (
		offset    uint32
		fromStart bool
	)

	switch p := pos.(type) {
	case SeekStart:
		if uint64(p) > math.MaxUint32 {
			return f.seekErr(start, pos)
		}
		offset, fromStart = uint32(p), true

	case SeekCurrent:
		if p == 0 {
			n := uint64(f.st.api.FileTell(f.h))
			f.st.metrics.RecordSeek(time.Since(start), nil)
			return n, nil
		}
		if p > 0 {
			if int64(p) > math.MaxUint32 {
				return f.seekErr(start, pos)
			}
			offset, fromStart = uint32(p), false
			break
		}
		target := int64(f.st.api.FileTell(f.h)) + int64(p)
		if target < 0 {
			return f.seekErr(start, pos)
		}
		offset, fromStart = uint32(target), true

	case SeekEnd:
		target := int64(f.st.api.FileSize(f.h)) + int64(p)
		if target < 0 || target > math.MaxUint32 {
			return f.seekErr(start, pos)
		}
		offset, fromStart = uint32(target), true
	}

	if ok := f.st.api.FileSeek(f.h, offset, fromStart); !ok {
		err := f.pathErr("seek", FromNative(f.st.api.FileGetError(f.h)))
		f.st.metrics.RecordSeek(time.Since(start), err)
		return 0, err
	}

	n := uint64(f.st.api.FileTell(f.h))
	f.st.metrics.RecordSeek(time.Since(start), nil)
	return n, nil
}

// seekErr reports a locally failed range check. The target is recorded in
// the message so the local cause is distinguishable from a native
// invalid-parameter report, while errors.Is(err, ErrInvalidParameter) holds
// for both.
func (f *File) seekErr(start time.Time, pos SeekFrom) (uint64, error) {
	err := &fs.PathError{Op: "seek", Path: f.path, Err: fmt.Errorf("%v: %w", pos, ErrInvalidParameter)}
	f.st.metrics.RecordSeek(time.Since(start), err)
	return 0, err
}

// Size returns the current file size using the service's size query, without
// disturbing the stream position. It is the Sizer fast path used by Length.
func (f *File) Size() (uint64, error) {
	if f.closed {
		return 0, f.pathErr("size", ErrFileClosed)
	}

	n := uint64(f.st.api.FileSize(f.h))
	if st := f.st.api.FileGetError(f.h); st != fsapi.StatusOK {
		return 0, f.pathErr("size", FromNative(st))
	}
	return n, nil
}

// Sync flushes pending writes to the medium.
func (f *File) Sync() error {
	if f.closed {
		return f.pathErr("sync", ErrFileClosed)
	}

	start := time.Now()
	if ok := f.st.api.FileSync(f.h); !ok {
		err := f.pathErr("sync", FromNative(f.st.api.FileGetError(f.h)))
		f.st.metrics.RecordSync(time.Since(start), err)
		f.st.logger.LogSync(f.path, err)
		return err
	}

	f.st.metrics.RecordSync(time.Since(start), nil)
	f.st.logger.LogSync(f.path, nil)
	return nil
}

// Close releases the native handle. The service syncs the file as part of
// closing. Close runs exactly once; further calls return ErrFileClosed.
func (f *File) Close() error {
	if f.closed {
		return f.pathErr("close", ErrFileClosed)
	}
	f.closed = true
	f.cleanup.Stop()

	ok := f.st.api.FileClose(f.h)
	if !ok {
		err := f.pathErr("close", ErrInternal)
		f.st.metrics.RecordClose(err)
		f.st.logger.LogClose(f.path, err)
		return err
	}

	f.st.metrics.RecordClose(nil)
	f.st.logger.LogClose(f.path, nil)
	return nil
}

func (f *File) pathErr(op string, err error) *fs.PathError {
	return &fs.PathError{Op: op, Path: f.path, Err: err}
}

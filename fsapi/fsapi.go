// Package fsapi defines the native call surface of the device storage service.
//
// The storage engine itself lives in device firmware and is reached through a
// fixed set of blocking calls operating on opaque file handles. [API] mirrors
// that surface one to one: handle allocation, open, read, write, seek, tell,
// size, sync, close, and error reporting. Everything above this package
// (streams, builders, lifecycle) is written against [API], never against a
// concrete device.
//
// # Implementations
//
//   - devsim.Device: deterministic in-memory simulator for tests and tooling
//   - hardware transports (serial, RPC) can implement [API] without changes
//     to the stream layer
//
// # Design Notes
//
// Calls intentionally take no context.Context. The firmware interface is
// synchronous and non-interruptible; cancellation has to happen above the call
// boundary or not at all. Errors are not returned per call either: the service
// latches a [Status] on each handle and exposes it through
// [API.FileGetError], matching the firmware contract.
package fsapi

// Handle is an opaque native file handle issued by FileAlloc.
// The zero value is never a valid handle.
type Handle uint32

// Status is a native filesystem status code as reported by the storage
// service. The known code space is exactly the ten values below.
type Status uint32

const (
	// StatusOK means the last operation succeeded.
	StatusOK Status = iota
	// StatusNotReady means the filesystem is not mounted or the medium is gone.
	StatusNotReady
	// StatusExists means a file or directory already exists.
	StatusExists
	// StatusNotExists means a file or directory does not exist.
	StatusNotExists
	// StatusInvalidParameter means a malformed argument or flag combination.
	StatusInvalidParameter
	// StatusDenied means the required access was denied, including the
	// no-free-space case on write extension.
	StatusDenied
	// StatusInvalidName means a malformed path.
	StatusInvalidName
	// StatusInternal means an internal storage engine error.
	StatusInternal
	// StatusNotImplemented means the operation is unsupported on this medium.
	StatusNotImplemented
	// StatusAlreadyOpen means the file is already open.
	StatusAlreadyOpen
)

// String returns the enum-style name of the status code.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusNotReady:
		return "NOT_READY"
	case StatusExists:
		return "EXIST"
	case StatusNotExists:
		return "NOT_EXIST"
	case StatusInvalidParameter:
		return "INVALID_PARAMETER"
	case StatusDenied:
		return "DENIED"
	case StatusInvalidName:
		return "INVALID_NAME"
	case StatusInternal:
		return "INTERNAL"
	case StatusNotImplemented:
		return "NOT_IMPLEMENTED"
	case StatusAlreadyOpen:
		return "ALREADY_OPEN"
	default:
		return "UNKNOWN"
	}
}

// AccessMode describes whether a file is opened for reading, writing, or both.
type AccessMode uint8

const (
	// AccessRead opens the file for reading.
	AccessRead AccessMode = 1 << iota
	// AccessWrite opens the file for writing.
	AccessWrite
)

// OpenMode describes the creation and existence policy of an open call.
// The service accepts exactly one mode bit per open; combinations are
// rejected with StatusInvalidParameter.
type OpenMode uint8

const (
	// OpenExisting opens the file only if it exists.
	OpenExisting OpenMode = 1 << iota
	// OpenAlways opens the file, creating it if it does not exist.
	OpenAlways
	// OpenAppend opens or creates the file and positions at the end.
	OpenAppend
	// CreateNew creates the file, failing with StatusExists if it exists.
	CreateNew
	// CreateAlways creates the file, truncating it if it exists.
	CreateAlways
)

// API is a handle to the device storage service.
//
// All calls block until the firmware responds. Per-handle status is latched:
// every open/read/write/seek/size/sync call updates the status reported by
// FileGetError for that handle. A handle obtained from FileAlloc must be
// released with FileClose exactly once, including when the open call failed.
type API interface {
	// FileAlloc allocates a fresh file handle. Allocation always succeeds.
	FileAlloc() Handle

	// FileOpen attempts to open path on an allocated handle. It reports
	// whether the open succeeded; on failure the handle's latched status
	// carries the reason. The handle must be closed either way.
	FileOpen(h Handle, path string, access AccessMode, mode OpenMode) bool

	// FileRead reads up to len(p) bytes into p and returns the count.
	// A zero count with a clean latched status means end of file.
	FileRead(h Handle, p []byte) int

	// FileWrite writes up to len(p) bytes from p and returns the count.
	// Short counts with a clean latched status are legal (medium full).
	FileWrite(h Handle, p []byte) int

	// FileSeek repositions the handle. fromStart selects absolute
	// positioning; otherwise offset is relative to the current position.
	FileSeek(h Handle, offset uint32, fromStart bool) bool

	// FileTell returns the current absolute position of the handle.
	FileTell(h Handle) uint32

	// FileSize returns the current size of the open file.
	FileSize(h Handle) uint32

	// FileSync flushes pending writes to the medium.
	FileSync(h Handle) bool

	// FileClose syncs, closes and releases the handle.
	FileClose(h Handle) bool

	// FileGetError returns the status latched on the handle by the most
	// recent operation.
	FileGetError(h Handle) Status

	// ErrorDesc returns the service's human-readable description of a
	// status code. The returned bytes are not guaranteed to be clean UTF-8
	// and must be escaped before display.
	ErrorDesc(st Status) []byte
}

package flashgo

import (
	"fmt"
	"os"

	"github.com/hupe1980/flashgo/fsapi"
)

var (
	// ErrFileClosed is returned by operations on a closed File.
	//
	// It satisfies errors.Is(err, os.ErrClosed).
	ErrFileClosed = os.ErrClosed
)

// Error is a firmware filesystem status rendered as a Go error.
//
// The set of values is closed and mirrors the native code space exactly.
// File operations never return Error bare; they wrap it in *io/fs.PathError,
// so match with errors.Is:
//
//	f, err := st.OpenFile("/data/cfg", flashgo.NewOpenOptions().Read(true).CreateNew(true))
//	if errors.Is(err, flashgo.ErrExists) {
//	    // path already present
//	}
type Error uint8

const (
	// ErrOK is the success status. It exists to keep the native mapping
	// total; operations report success as a nil error, never as ErrOK.
	ErrOK Error = iota
	// ErrNotReady indicates the filesystem is not mounted.
	ErrNotReady
	// ErrExists indicates the file or directory already exists.
	ErrExists
	// ErrNotExists indicates the file or directory does not exist.
	ErrNotExists
	// ErrInvalidParameter indicates a malformed argument, flag combination
	// or an offset that does not fit the native integer width.
	ErrInvalidParameter
	// ErrDenied indicates the required access was denied.
	ErrDenied
	// ErrInvalidName indicates a malformed path.
	ErrInvalidName
	// ErrInternal indicates an internal storage engine error.
	ErrInternal
	// ErrNotImplemented indicates the operation is unsupported.
	ErrNotImplemented
	// ErrAlreadyOpen indicates the file is already open.
	ErrAlreadyOpen
)

// Error returns the firmware's description text for the status.
func (e Error) Error() string {
	switch e {
	case ErrOK:
		return "OK"
	case ErrNotReady:
		return "filesystem not ready"
	case ErrExists:
		return "file/dir already exist"
	case ErrNotExists:
		return "file/dir not exist"
	case ErrInvalidParameter:
		return "invalid parameter"
	case ErrDenied:
		return "access denied"
	case ErrInvalidName:
		return "invalid name/path"
	case ErrInternal:
		return "internal error"
	case ErrNotImplemented:
		return "function not implemented"
	case ErrAlreadyOpen:
		return "file is already open"
	default:
		return fmt.Sprintf("unknown error %d", uint8(e))
	}
}

// Native returns the native status code for the error. The mapping is total
// and pure.
func (e Error) Native() fsapi.Status {
	switch e {
	case ErrOK:
		return fsapi.StatusOK
	case ErrNotReady:
		return fsapi.StatusNotReady
	case ErrExists:
		return fsapi.StatusExists
	case ErrNotExists:
		return fsapi.StatusNotExists
	case ErrInvalidParameter:
		return fsapi.StatusInvalidParameter
	case ErrDenied:
		return fsapi.StatusDenied
	case ErrInvalidName:
		return fsapi.StatusInvalidName
	case ErrInternal:
		return fsapi.StatusInternal
	case ErrNotImplemented:
		return fsapi.StatusNotImplemented
	case ErrAlreadyOpen:
		return fsapi.StatusAlreadyOpen
	default:
		panic(fmt.Sprintf("flashgo: no native status for error %d", uint8(e)))
	}
}

// FromNative converts a native status code into an Error.
//
// The conversion is total over the known code space. A code outside it is a
// contract violation by the native layer and panics; it is not representable
// as an Error value.
func FromNative(st fsapi.Status) Error {
	switch st {
	case fsapi.StatusOK:
		return ErrOK
	case fsapi.StatusNotReady:
		return ErrNotReady
	case fsapi.StatusExists:
		return ErrExists
	case fsapi.StatusNotExists:
		return ErrNotExists
	case fsapi.StatusInvalidParameter:
		return ErrInvalidParameter
	case fsapi.StatusDenied:
		return ErrDenied
	case fsapi.StatusInvalidName:
		return ErrInvalidName
	case fsapi.StatusInternal:
		return ErrInternal
	case fsapi.StatusNotImplemented:
		return ErrNotImplemented
	case fsapi.StatusAlreadyOpen:
		return ErrAlreadyOpen
	default:
		panic(fmt.Sprintf("flashgo: unknown native status %d", uint32(st)))
	}
}

// Describe renders the storage service's own description of the error.
//
// The native message buffer is not guaranteed to hold clean UTF-8. Printable
// ASCII passes through, everything else is rendered as \xNN.
func Describe(api fsapi.API, e Error) string {
	return escapeASCII(api.ErrorDesc(e.Native()))
}

func escapeASCII(b []byte) string {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		switch {
		case c == '\\':
			out = append(out, '\\', '\\')
		case c >= 0x20 && c <= 0x7e:
			out = append(out, c)
		default:
			out = append(out, fmt.Sprintf("\\x%02x", c)...)
		}
	}
	return string(out)
}

package flashgo

import (
	"errors"

	"github.com/hupe1980/flashgo/fsapi"
)

// Storage is an acquired handle to a device's storage service.
//
// The record/registry subsystem that hands out service handles lives outside
// this module; whoever owns the acquisition passes the resulting fsapi.API
// here. Storage itself is stateless beyond configuration and may be shared
// freely; per-file state lives in File.
type Storage struct {
	api     fsapi.API
	logger  *Logger
	metrics MetricsCollector
}

// New wraps an acquired storage service handle.
//
//	dev := devsim.New()
//	st, err := flashgo.New(dev, flashgo.WithLogLevel(slog.LevelDebug))
func New(api fsapi.API, optFns ...Option) (*Storage, error) {
	if api == nil {
		return nil, errors.New("flashgo: nil storage service")
	}

	o := applyOptions(optFns)

	return &Storage{
		api:     api,
		logger:  o.logger,
		metrics: o.metricsCollector,
	}, nil
}

// Open opens the file at path for reading. The file must exist.
func (s *Storage) Open(path string) (*File, error) {
	return NewOpenOptions().Read(true).OpenExisting(true).Open(s, path)
}

// Create creates or truncates the file at path and opens it for reading and
// writing.
func (s *Storage) Create(path string) (*File, error) {
	return NewOpenOptions().Read(true).Write(true).CreateAlways(true).Open(s, path)
}

// Append opens or creates the file at path for writing and positions at the
// end.
func (s *Storage) Append(path string) (*File, error) {
	return NewOpenOptions().Write(true).OpenAppend(true).Open(s, path)
}

// OpenFile opens path with an explicit flag configuration.
func (s *Storage) OpenFile(path string, opts OpenOptions) (*File, error) {
	return opts.Open(s, path)
}

// DescribeError renders the storage service's own description of e. See
// Describe.
func (s *Storage) DescribeError(e Error) string {
	return Describe(s.api, e)
}

// allocFile allocates a native handle wrapped in a File guard. The guard owns
// the handle from this point on, whether or not a subsequent open succeeds.
func (s *Storage) allocFile(path string) *File {
	return newFile(s, path)
}

package image

const (
	defaultWorkers     = 4
	defaultCompression = CompressionZSTD
)

type options struct {
	compression CompressionType
	workers     int64
	ioLimit     int64
}

// Option configures Capture and Flash.
type Option func(*options)

// WithCompression sets the payload compression for Capture.
// Flash ignores it; the compression comes from the image header.
func WithCompression(t CompressionType) Option {
	return func(o *options) {
		if t.valid() {
			o.compression = t
		}
	}
}

// WithWorkers sets how many files transfer concurrently.
// Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.workers = int64(n)
		}
	}
}

// WithIOLimit caps aggregate transfer throughput in bytes per second.
// Zero or negative means unlimited.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}

func applyOptions(optFns ...Option) options {
	o := options{
		compression: defaultCompression,
		workers:     defaultWorkers,
	}
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}

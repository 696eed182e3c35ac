package devsim

const (
	defaultBlockSize = 512
	defaultCapacity  = 1 << 20
)

type options struct {
	blockSize int
	capacity  int
}

// Option is a function type that can be used to modify the Device.
type Option func(*options)

// WithBlockSize sets the allocation unit of the simulated medium in bytes.
func WithBlockSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.blockSize = size
		}
	}
}

// WithCapacity sets the total size of the simulated medium in bytes. The
// value is rounded up to a whole number of blocks.
func WithCapacity(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.capacity = size
		}
	}
}

func applyOptions(optFns ...Option) options {
	opts := options{
		blockSize: defaultBlockSize,
		capacity:  defaultCapacity,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return opts
}

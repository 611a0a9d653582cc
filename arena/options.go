package arena

import "github.com/datatrails/go-datatrails-common/logger"

type options struct {
	width RefWidth
	log   logger.Logger
	// initial block size for a Heap
	reserve uint32
}

// Option configures an Arena or a Heap.
type Option func(*options)

// WithRefWidth selects the reference width used for records in the block.
func WithRefWidth(w RefWidth) Option {
	return func(o *options) {
		o.width = w
	}
}

// WithLogger enables a debug trace of every allocation.
func WithLogger(log logger.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithReserve sets the initial block size of a Heap. It is ignored by Arena.
func WithReserve(n uint32) Option {
	return func(o *options) {
		o.reserve = n
	}
}

func newOptions(opts ...Option) options {
	o := options{width: DefaultRefWidth}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

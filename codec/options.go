package codec

const (
	DefaultMaxDepth        = 128
	DefaultMaxKeyBytes     = 4096
	DefaultScratchBytes    = 1024
	DefaultMaxStagedValues = 1024
	DefaultMaxPendingNodes = 1024
)

type options struct {
	maxDepth     int
	maxKeyBytes  int
	scratchBytes int
	maxStaged    int
	maxPending   int
}

type Option func(*options)

// WithMaxDepth bounds the number of simultaneously open objects and arrays.
func WithMaxDepth(n int) Option {
	return func(o *options) { o.maxDepth = n }
}

// WithMaxKeyBytes sizes the buffer Dump rebuilds keys in. Keys of nested
// objects share it with the keys that hold them: an object needs the sum of
// the key lengths on its path plus one byte per level. Parse bounds each key
// on its own through WithScratchBytes, so a document that parses can still
// fail to dump with ErrKeyTooLong when this is too small.
func WithMaxKeyBytes(n int) Option {
	return func(o *options) { o.maxKeyBytes = n }
}

// WithScratchBytes sizes the buffer Parse stages keys and strings in.
func WithScratchBytes(n int) Option {
	return func(o *options) { o.scratchBytes = n }
}

// WithMaxStagedValues bounds the array elements Parse holds before the
// enclosing arrays are closed.
func WithMaxStagedValues(n int) Option {
	return func(o *options) { o.maxStaged = n }
}

// WithMaxPendingNodes bounds the trie nodes Dump holds for later visits.
func WithMaxPendingNodes(n int) Option {
	return func(o *options) { o.maxPending = n }
}

func newOptions(opts ...Option) options {
	o := options{
		maxDepth:     DefaultMaxDepth,
		maxKeyBytes:  DefaultMaxKeyBytes,
		scratchBytes: DefaultScratchBytes,
		maxStaged:    DefaultMaxStagedValues,
		maxPending:   DefaultMaxPendingNodes,
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.maxDepth = max(o.maxDepth, 1)
	o.maxKeyBytes = max(o.maxKeyBytes, 0)
	o.scratchBytes = max(o.scratchBytes, 0)
	o.maxStaged = max(o.maxStaged, 0)
	o.maxPending = max(o.maxPending, 1)
	return o
}

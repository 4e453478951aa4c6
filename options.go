package subvec

type options struct {
	logger       *Logger
	oovCacheSize int
}

// Option configures store construction and load behavior.
type Option func(*options)

// WithLogger configures the logger used for diagnostics. Pass NoopLogger()
// to disable logging entirely.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithOOVCacheSize bounds the cache of synthesized out-of-vocabulary
// vectors. Zero disables the cache.
func WithOOVCacheSize(n int) Option {
	return func(o *options) {
		o.oovCacheSize = n
	}
}

const defaultOOVCacheSize = 1024

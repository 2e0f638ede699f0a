package dedupe

// Option applies a configuration option to the result cache.
type Option func(*inMemoryResults)

// WithMaxSize sets the number of results kept. maxSize <= 0 keeps every
// result.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryResults) {
		d.maxSize = maxSize
	}
}

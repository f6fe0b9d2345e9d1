package dedupe

// Option applies a configuration option to the in-memory deduper.
type Option func(*lruDeduper)

// WithMaxSize sets how many keys are remembered. Zero or negative keeps every
// key.
func WithMaxSize(maxSize int) Option {
	return func(d *lruDeduper) {
		d.maxSize = maxSize
	}
}

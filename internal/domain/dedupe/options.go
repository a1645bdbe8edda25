package dedupe

// Option applies a configuration option to the pending set.
type Option func(*pendingSet)

// WithMaxSize bounds the number of tracked claims. Zero or less is unbounded.
func WithMaxSize(maxSize int) Option {
	return func(p *pendingSet) {
		p.maxSize = maxSize
	}
}

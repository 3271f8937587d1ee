package inflight

// Option applies a configuration option to the Guard.
type Option func(*Guard)

// WithMaxSize caps the number of keys held at once.
// If maxSize <= 0 the guard is unbounded.
func WithMaxSize(maxSize int) Option {
	return func(g *Guard) {
		g.maxSize = maxSize
	}
}

package forkonce

// Option configures a primitive at construction time.
type Option func(*config)

type config struct {
	observer Observer
}

func newConfig(opts []Option) config {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithObserver attaches an Observer that receives wipe, init, and poison
// events for the lifetime of the primitive.
func WithObserver(o Observer) Option {
	return func(c *config) {
		c.observer = o
	}
}

package forkonce

import "fmt"

// lazyState is the single-goroutine once-state: a plain tagged value, no
// locking.
type lazyState int

const (
	lazyUninit lazyState = iota
	lazyInit
	lazyPoisoned
)

// LazyCell is a lazily computed value that wipes itself after a fork. The
// initializer runs on first access in each fork generation; it is retained
// so a forked child can recompute.
//
// LazyCell is not safe for concurrent use; it is confined to the goroutine
// that uses it.
type LazyCell[T any] struct {
	stamp    epochStamp
	state    lazyState
	fn       func() T
	value    T
	observer Observer
}

// NewLazyCell returns a cell that computes its value with fn on first
// access.
func NewLazyCell[T any](fn func() T, opts ...Option) *LazyCell[T] {
	cfg := newConfig(opts)
	return &LazyCell[T]{fn: fn, observer: cfg.observer}
}

// Value returns the lazily computed value, running the initializer if this
// fork generation has not yet. It panics if the cell is poisoned or if the
// initializer reenters the cell.
func (c *LazyCell[T]) Value() T {
	c.wipe()
	switch c.state {
	case lazyInit:
		return c.value
	case lazyPoisoned:
		panic("forkonce: LazyCell instance has previously been poisoned")
	}
	return c.init()
}

func (c *LazyCell[T]) init() T {
	// Poisoned while the initializer runs: reentrant access and access
	// after a panic both fail loudly instead of observing a torn value.
	// The stamp is set before the run so a fork wipes the poison and the
	// child retries with the retained initializer.
	c.state = lazyPoisoned
	c.stamp.mark()
	v := c.fn()
	c.value = v
	c.state = lazyInit
	c.stamp.mark()
	emit(c.observer, EventInit, "LazyCell")
	return v
}

// Get returns the value if it has been computed in this fork generation.
// It never runs the initializer.
func (c *LazyCell[T]) Get() (T, bool) {
	c.wipe()
	if c.state != lazyInit {
		var zero T
		return zero, false
	}
	return c.value, true
}

// IntoInner returns the computed value, or false if the initializer has
// not run in this fork generation. It panics if the cell is poisoned. The
// cell must not be used afterwards.
func (c *LazyCell[T]) IntoInner() (T, bool) {
	c.wipe()
	switch c.state {
	case lazyInit:
		return c.value, true
	case lazyPoisoned:
		panic("forkonce: LazyCell instance has previously been poisoned")
	}
	var zero T
	return zero, false
}

func (c *LazyCell[T]) String() string {
	if v, ok := c.Get(); ok {
		return fmt.Sprintf("LazyCell(%v)", v)
	}
	return "LazyCell(<uninit>)"
}

// wipe resets a cell whose value predates the last fork. The value is
// dropped; the initializer is kept for the re-run.
func (c *LazyCell[T]) wipe() {
	if !c.stamp.stale() {
		return
	}
	c.stamp.clear()
	c.state = lazyUninit
	var zero T
	c.value = zero
	emit(c.observer, EventWipe, "LazyCell")
}

package forkonce

import "fmt"

// LazyLock is a lazily computed value safe for concurrent use. The
// initializer runs on first access in each fork generation; racing callers
// block until the one running initializer publishes the value.
//
// A panicking initializer poisons the lock: the panic propagates to the
// caller that ran it, and every later Value call panics too, rather than
// silently retrying a failed initialization.
type LazyLock[T any] struct {
	once  Once
	fn    func() T
	value T
}

// NewLazyLock returns a lock that computes its value with fn on first
// access.
func NewLazyLock[T any](fn func() T, opts ...Option) *LazyLock[T] {
	cfg := newConfig(opts)
	l := &LazyLock[T]{fn: fn}
	l.once.observer = cfg.observer
	l.once.source = "LazyLock"
	return l
}

// Value returns the lazily computed value, running the initializer if this
// fork generation has not yet.
func (l *LazyLock[T]) Value() T {
	l.once.Do(func() {
		l.value = l.fn()
	})
	return l.value
}

// Get returns the value if it has been computed in this fork generation.
// It never runs the initializer and never blocks on one in flight.
func (l *LazyLock[T]) Get() (T, bool) {
	if l.once.Done() {
		return l.value, true
	}
	var zero T
	return zero, false
}

// IntoInner returns the computed value, or false if the initializer has
// not run in this fork generation. It panics if the lock is poisoned. The
// caller must have exclusive access to l, which must not be used
// afterwards.
func (l *LazyLock[T]) IntoInner() (T, bool) {
	switch l.once.State() {
	case StateComplete:
		return l.value, true
	case StatePoisoned:
		panic("forkonce: LazyLock instance has previously been poisoned")
	}
	var zero T
	return zero, false
}

func (l *LazyLock[T]) String() string {
	if v, ok := l.Get(); ok {
		return fmt.Sprintf("LazyLock(%v)", v)
	}
	return "LazyLock(<uninit>)"
}

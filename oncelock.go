package forkonce

import "fmt"

// OnceLock is a write-once value cell safe for concurrent use. Like
// OnceCell it wipes itself after a fork; unlike OnceCell, concurrent
// callers racing to initialize it serialize on the underlying Once, and
// exactly one initializer runs per fork generation.
//
// An initializer error leaves the lock empty (the Once poisoned), and the
// next GetOrTryInit retries. The zero value is an empty lock. A OnceLock
// must not be copied after first use.
type OnceLock[T any] struct {
	once  Once
	value T
}

// NewOnceLock returns an empty lock configured with the given options.
func NewOnceLock[T any](opts ...Option) *OnceLock[T] {
	cfg := newConfig(opts)
	l := &OnceLock[T]{}
	l.once.observer = cfg.observer
	l.once.source = "OnceLock"
	return l
}

// OnceLockOf returns a lock that already contains value, stamped with the
// current fork generation.
func OnceLockOf[T any](value T) *OnceLock[T] {
	l := &OnceLock[T]{}
	l.once.source = "OnceLock"
	if err := l.Set(value); err != nil {
		panic("forkonce: fresh OnceLock rejected Set")
	}
	return l
}

// Get returns the contained value, if any, without blocking. During an
// in-flight initialization it reports false rather than waiting.
func (l *OnceLock[T]) Get() (T, bool) {
	if l.once.Done() {
		return l.value, true
	}
	var zero T
	return zero, false
}

// Ptr returns a pointer to the contained value, or nil if the lock is
// empty. The caller must have exclusive access to l; the pointer must not
// be retained across a fork.
func (l *OnceLock[T]) Ptr() *T {
	if !l.once.Done() {
		return nil
	}
	return &l.value
}

// Set stores value into the empty lock. It returns ErrInitialized, leaving
// the lock unchanged, if a value is already present. If Set races with
// other setters or initializers, exactly one wins.
func (l *OnceLock[T]) Set(value T) error {
	if _, inserted := l.TryInsert(value); !inserted {
		return ErrInitialized
	}
	return nil
}

// TryInsert stores value if the lock is empty. It returns the lock's
// resulting value and whether value was inserted; when another value is
// already present the incumbent wins and TryInsert returns it with false.
func (l *OnceLock[T]) TryInsert(value T) (T, bool) {
	inserted := false
	v, err := l.GetOrTryInit(func() (T, error) {
		inserted = true
		return value, nil
	})
	if err != nil {
		panic("forkonce: infallible OnceLock initializer reported " + err.Error())
	}
	return v, inserted
}

// GetOrInit returns the contained value, computing it with fn if the lock
// is empty. Among racing callers exactly one runs fn; the others block
// until the value is published.
func (l *OnceLock[T]) GetOrInit(fn func() T) T {
	v, _ := l.GetOrTryInit(func() (T, error) { return fn(), nil })
	return v
}

// GetOrTryInit returns the contained value, computing it with fn if the
// lock is empty. An error from fn is returned to the caller that ran fn
// and leaves the lock empty, so a later call retries. A panicking fn
// poisons the lock for Get and the panic propagates; the next GetOrTryInit
// still retries, entering through the poisoned state on purpose.
func (l *OnceLock[T]) GetOrTryInit(fn func() (T, error)) (T, error) {
	if v, ok := l.Get(); ok {
		return v, nil
	}
	if err := l.initialize(fn); err != nil {
		var zero T
		return zero, err
	}
	// Either this call initialized the lock or it awaited the goroutine
	// that did.
	v, ok := l.Get()
	if !ok {
		panic("forkonce: OnceLock empty after initialization")
	}
	return v, nil
}

func (l *OnceLock[T]) initialize(fn func() (T, error)) error {
	var err error
	l.once.DoForce(func(st *OnceState) {
		v, e := fn()
		if e != nil {
			err = e
			// Failed to produce a value: leave the Once poisoned so the
			// completed state is never observed.
			st.Poison()
			return
		}
		l.value = v
	})
	return err
}

// Take removes and returns the contained value, resetting the lock to its
// uninitialized state. The caller must have exclusive access to l.
func (l *OnceLock[T]) Take() (T, bool) {
	if !l.once.Done() {
		var zero T
		return zero, false
	}
	v := l.value
	var zero T
	l.value = zero
	l.once = Once{observer: l.once.observer, source: l.once.source}
	return v, true
}

func (l *OnceLock[T]) String() string {
	if v, ok := l.Get(); ok {
		return fmt.Sprintf("OnceLock(%v)", v)
	}
	return "OnceLock(<uninit>)"
}

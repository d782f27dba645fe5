package forkonce

import (
	"errors"
	"fmt"
)

// ErrInitialized is reported by Set when the cell already holds a value for
// the current fork generation.
var ErrInitialized = errors.New("forkonce: cell already initialized")

// OnceCell is a write-once value cell that wipes itself after a fork: a
// value stored in the parent is absent in the child, whose first Set or
// GetOrInit starts fresh.
//
// OnceCell is not safe for concurrent use; it is confined to the goroutine
// that uses it. The zero value is an empty cell.
type OnceCell[T any] struct {
	stamp    epochStamp
	has      bool
	value    T
	observer Observer
}

// NewOnceCell returns an empty cell configured with the given options.
func NewOnceCell[T any](opts ...Option) *OnceCell[T] {
	cfg := newConfig(opts)
	return &OnceCell[T]{observer: cfg.observer}
}

// OnceCellOf returns a cell that already contains value, stamped with the
// current fork generation.
func OnceCellOf[T any](value T) *OnceCell[T] {
	c := &OnceCell[T]{has: true, value: value}
	c.stamp.mark()
	return c
}

// Get returns the contained value, if any.
func (c *OnceCell[T]) Get() (T, bool) {
	c.wipe()
	return c.value, c.has
}

// Ptr returns a pointer to the contained value, or nil if the cell is
// empty. The pointer must not be retained across a fork.
func (c *OnceCell[T]) Ptr() *T {
	c.wipe()
	if !c.has {
		return nil
	}
	return &c.value
}

// Set stores value into the empty cell. It returns ErrInitialized, leaving
// the cell unchanged, if a value is already present.
func (c *OnceCell[T]) Set(value T) error {
	if _, inserted := c.TryInsert(value); !inserted {
		return ErrInitialized
	}
	return nil
}

// MustSet is Set, panicking instead of returning ErrInitialized.
func (c *OnceCell[T]) MustSet(value T) {
	if err := c.Set(value); err != nil {
		panic("forkonce: MustSet on an initialized OnceCell")
	}
}

// TryInsert stores value if the cell is empty. It returns the cell's
// resulting value and whether value was inserted; on a full cell the
// incumbent wins and TryInsert returns it with false.
func (c *OnceCell[T]) TryInsert(value T) (T, bool) {
	c.wipe()
	if c.has {
		return c.value, false
	}
	c.value = value
	c.has = true
	c.stamp.mark()
	emit(c.observer, EventInit, "OnceCell")
	return value, true
}

// GetOrInit returns the contained value, computing it with fn if the cell
// is empty. fn runs at most once per fork generation.
func (c *OnceCell[T]) GetOrInit(fn func() T) T {
	v, _ := c.GetOrTryInit(func() (T, error) { return fn(), nil })
	return v
}

// GetOrTryInit returns the contained value, computing it with fn if the
// cell is empty. An error from fn leaves the cell empty, so a later call
// retries. If fn reenters the cell and initializes it, GetOrTryInit
// panics.
func (c *OnceCell[T]) GetOrTryInit(fn func() (T, error)) (T, error) {
	if v, ok := c.Get(); ok {
		return v, nil
	}
	v, err := fn()
	if err != nil {
		var zero T
		return zero, err
	}
	if _, inserted := c.TryInsert(v); !inserted {
		panic("forkonce: reentrant OnceCell initialization")
	}
	return v, nil
}

// Take removes and returns the contained value, leaving the cell empty.
func (c *OnceCell[T]) Take() (T, bool) {
	c.wipe()
	if !c.has {
		var zero T
		return zero, false
	}
	v := c.value
	var zero T
	c.value = zero
	c.has = false
	c.stamp.clear()
	return v, true
}

func (c *OnceCell[T]) String() string {
	if v, ok := c.Get(); ok {
		return fmt.Sprintf("OnceCell(%v)", v)
	}
	return "OnceCell(<uninit>)"
}

func (c *OnceCell[T]) wipe() {
	if !c.stamp.stale() {
		return
	}
	c.stamp.clear()
	c.has = false
	var zero T
	c.value = zero
	emit(c.observer, EventWipe, "OnceCell")
}

// OnceCellsEqual reports whether two cells hold equal values or are both
// empty.
func OnceCellsEqual[T comparable](a, b *OnceCell[T]) bool {
	av, aok := a.Get()
	bv, bok := b.Get()
	if aok != bok {
		return false
	}
	return !aok || av == bv
}

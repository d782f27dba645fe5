package forkonce

import (
	"errors"
	"testing"
)

func TestOnceCellSetGet(t *testing.T) {
	var c OnceCell[int]
	if _, ok := c.Get(); ok {
		t.Fatal("fresh cell reported a value")
	}

	if err := c.Set(92); err != nil {
		t.Fatalf("Set(92) = %v", err)
	}
	if err := c.Set(62); !errors.Is(err, ErrInitialized) {
		t.Fatalf("second Set = %v, want ErrInitialized", err)
	}

	v, ok := c.Get()
	if !ok || v != 92 {
		t.Fatalf("Get() = %d, %v; want 92, true", v, ok)
	}
}

func TestOnceCellTryInsert(t *testing.T) {
	var c OnceCell[int]

	v, inserted := c.TryInsert(92)
	if !inserted || v != 92 {
		t.Fatalf("TryInsert(92) = %d, %v; want 92, true", v, inserted)
	}
	v, inserted = c.TryInsert(62)
	if inserted || v != 92 {
		t.Fatalf("TryInsert(62) = %d, %v; want incumbent 92, false", v, inserted)
	}
}

// The second initializer would fail the test if invoked.
func TestOnceCellGetOrInitIdempotent(t *testing.T) {
	var c OnceCell[int]

	if v := c.GetOrInit(func() int { return 92 }); v != 92 {
		t.Fatalf("GetOrInit = %d, want 92", v)
	}
	v := c.GetOrInit(func() int {
		t.Error("initializer re-invoked")
		return 0
	})
	if v != 92 {
		t.Fatalf("second GetOrInit = %d, want 92", v)
	}
}

func TestOnceCellGetOrTryInit(t *testing.T) {
	var c OnceCell[int]
	errBoom := errors.New("boom")

	_, err := c.GetOrTryInit(func() (int, error) { return 0, errBoom })
	if !errors.Is(err, errBoom) {
		t.Fatalf("err = %v, want %v", err, errBoom)
	}
	if _, ok := c.Get(); ok {
		t.Fatal("failed init left a value behind")
	}

	// Errors are not sticky; the next attempt runs.
	v, err := c.GetOrTryInit(func() (int, error) { return 92, nil })
	if err != nil || v != 92 {
		t.Fatalf("GetOrTryInit = %d, %v; want 92, nil", v, err)
	}
}

func TestOnceCellReentrantInit(t *testing.T) {
	var c OnceCell[int]
	expectPanic(t, "reentrant", func() {
		c.GetOrInit(func() int {
			c.Set(1)
			return 2
		})
	})
}

func TestOnceCellTake(t *testing.T) {
	var c OnceCell[string]
	if _, ok := c.Take(); ok {
		t.Fatal("Take on an empty cell reported a value")
	}

	c.MustSet("hello")
	v, ok := c.Take()
	if !ok || v != "hello" {
		t.Fatalf("Take() = %q, %v; want hello, true", v, ok)
	}
	if _, ok := c.Get(); ok {
		t.Fatal("cell still holds a value after Take")
	}
}

func TestOnceCellMustSet(t *testing.T) {
	var c OnceCell[int]
	c.MustSet(1)
	expectPanic(t, "MustSet", func() { c.MustSet(2) })
}

func TestOnceCellPtr(t *testing.T) {
	var c OnceCell[int]
	if p := c.Ptr(); p != nil {
		t.Fatal("Ptr on an empty cell is non-nil")
	}
	c.MustSet(1)
	p := c.Ptr()
	if p == nil {
		t.Fatal("Ptr on a full cell is nil")
	}
	*p = 5
	if v, _ := c.Get(); v != 5 {
		t.Fatalf("Get after mutation through Ptr = %d, want 5", v)
	}
}

func TestOnceCellOf(t *testing.T) {
	c := OnceCellOf("hello")
	v, ok := c.Get()
	if !ok || v != "hello" {
		t.Fatalf("Get() = %q, %v; want hello, true", v, ok)
	}
}

func TestOnceCellWipeAfterFork(t *testing.T) {
	var c OnceCell[int]
	calls := 0
	c.GetOrInit(func() int { calls++; return 92 })

	simulateFork(t)

	// The parent's value was cached in the inherited image, but the first
	// access in the child re-runs initialization.
	if _, ok := c.Get(); ok {
		t.Fatal("child observed the parent's cached value")
	}
	v := c.GetOrInit(func() int { calls++; return 62 })
	if v != 62 || calls != 2 {
		t.Fatalf("GetOrInit in child = %d (calls %d); want 62 (calls 2)", v, calls)
	}
}

func TestOnceCellSetAgainAfterFork(t *testing.T) {
	var c OnceCell[int]
	c.MustSet(1)

	simulateFork(t)

	if err := c.Set(2); err != nil {
		t.Fatalf("Set in child = %v, want success on the wiped cell", err)
	}
	if v, _ := c.Get(); v != 2 {
		t.Fatalf("Get in child = %d, want 2", v)
	}
}

func TestOnceCellString(t *testing.T) {
	var c OnceCell[int]
	if s := c.String(); s != "OnceCell(<uninit>)" {
		t.Fatalf("String() = %q", s)
	}
	c.MustSet(92)
	if s := c.String(); s != "OnceCell(92)" {
		t.Fatalf("String() = %q", s)
	}
}

func TestOnceCellsEqual(t *testing.T) {
	a, b := NewOnceCell[int](), NewOnceCell[int]()
	if !OnceCellsEqual(a, b) {
		t.Fatal("two empty cells are not equal")
	}
	a.MustSet(1)
	if OnceCellsEqual(a, b) {
		t.Fatal("full and empty cells compare equal")
	}
	b.MustSet(1)
	if !OnceCellsEqual(a, b) {
		t.Fatal("cells holding the same value are not equal")
	}
}

func TestOnceCellObserver(t *testing.T) {
	var rec recorder
	c := NewOnceCell[int](WithObserver(&rec))
	c.GetOrInit(func() int { return 1 })

	simulateFork(t)
	c.Get()

	if n := rec.count(EventInit); n != 1 {
		t.Fatalf("init events = %d, want 1", n)
	}
	if n := rec.count(EventWipe); n != 1 {
		t.Fatalf("wipe events = %d, want 1", n)
	}
}

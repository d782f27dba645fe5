package forkonce

import (
	"fmt"
	"strings"
	"sync"
	"testing"
)

// resetGeneration gives the test a freshly started process image and
// restores a clean counter afterwards.
func resetGeneration(t *testing.T) {
	t.Helper()
	generation = generationCounter{}
	t.Cleanup(func() { generation = generationCounter{} })
}

// fakePID routes the PID probe through *pid so a test can walk a process
// lineage.
func fakePID(t *testing.T, pid *int) {
	t.Helper()
	prev := getpid
	getpid = func() int { return *pid }
	t.Cleanup(func() { getpid = prev })
}

// simulateFork moves this process to the next fork generation, as the
// child of a fork would observe it.
func simulateFork(t *testing.T) {
	t.Helper()
	if !forkAware {
		t.Skip("platform without fork semantics")
	}
	Generation() // the counter must have started before a fork can be observed
	AfterForkInChild()
}

func expectPanic(t *testing.T, substr string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic containing %q, got none", substr)
		}
		if s := fmt.Sprint(r); !strings.Contains(s, substr) {
			t.Fatalf("got panic %v, want it to contain %q", r, substr)
		}
	}()
	fn()
}

// recorder collects observer events for assertions.
type recorder struct {
	mu     sync.Mutex
	events []EventData
}

func (r *recorder) On(e EventData) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) all() []EventData {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]EventData(nil), r.events...)
}

func (r *recorder) count(ev Event) int {
	n := 0
	for _, e := range r.all() {
		if e.Event == ev {
			n++
		}
	}
	return n
}

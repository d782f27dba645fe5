package forkonce

import "sync"

// generationCounter tracks how many forks have occurred in this process
// lineage since the counter was first read. It installs itself lazily: the
// first read records the current PID as the baseline, so processes that
// never use this package pay nothing. The counter advances by exactly one
// per fork, either when the child announces itself via AfterForkInChild or
// when a read notices that the PID no longer matches the baseline.
//
// Only the forking thread survives in a freshly forked child, so the
// child-side increment never races with other mutations; the mutex covers
// ordinary concurrent reads.
type generationCounter struct {
	mu        sync.Mutex
	installed bool
	gen       uint64
	pid       int
	observers []Observer
}

var generation generationCounter

// Generation returns the current fork generation: the number of forks this
// process lineage has observed since the counter was first read. A freshly
// started process is at generation 0. The parent's generation never changes
// when it forks; only the child sees the counter advance.
func Generation() uint64 {
	return generation.current()
}

// AfterForkInChild notifies the counter that this process is the child of a
// fork. Call it in the child immediately after the fork, before any other
// use of this package; hosts forking through cgo or an embedding runtime
// are expected to arrange this from their fork hook. Forks that were never
// announced are still caught on Unix by the PID probe inside Generation.
//
// AfterForkInChild panics if the counter was never read in this process
// image: a fork cannot be observed by a counter that has not started.
func AfterForkInChild() {
	generation.forked()
}

// Subscribe registers a process-wide observer that receives an EventFork
// each time a fork is announced through AfterForkInChild. Forks caught
// only by the PID probe advance the counter silently: the probe can fire
// inside a primitive's locked region, which is no place to run user code.
// Observers are never removed.
func Subscribe(o Observer) {
	generation.mu.Lock()
	generation.observers = append(generation.observers, o)
	generation.mu.Unlock()
}

func (c *generationCounter) current() uint64 {
	if !forkAware {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.installed {
		c.pid = getpid()
		c.installed = true
		return 0
	}
	// The PID probe: a fork nobody announced still advances the counter,
	// by exactly one, on the child's next read.
	if pid := getpid(); pid != c.pid {
		c.pid = pid
		c.gen++
	}
	return c.gen
}

func (c *generationCounter) forked() {
	if !forkAware {
		return
	}
	c.mu.Lock()
	if !c.installed {
		c.mu.Unlock()
		panic("forkonce: fork reported before the generation counter started")
	}
	c.gen++
	c.pid = getpid()
	gen := c.gen
	// Copy: observers run outside the lock and may read Generation.
	obs := append([]Observer(nil), c.observers...)
	c.mu.Unlock()
	for _, o := range obs {
		o.On(EventData{Event: EventFork, Generation: gen})
	}
}

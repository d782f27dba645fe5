package forkonce

import "sync"

// State reports a Once's observable lifecycle phase. The running phase is
// never reported: State requires exclusive access, and running only exists
// while some goroutine holds the transition.
type State int

const (
	StateIncomplete State = iota
	StateComplete
	StatePoisoned
)

func (s State) String() string {
	switch s {
	case StateIncomplete:
		return "incomplete"
	case StateComplete:
		return "complete"
	case StatePoisoned:
		return "poisoned"
	}
	return "unknown"
}

// onceState is the internal four-state machine:
//
//	incomplete -> running -> {complete | poisoned}
//
// poisoned -> running is reachable only through DoForce, and complete is
// terminal except for the fork-wipe reset back to incomplete.
type onceState int

const (
	onceIncomplete onceState = iota
	onceRunning
	onceComplete
	oncePoisoned
)

// Once is a fork-aware variant of sync.Once with poisoning.
//
// Do runs a function exactly once per fork generation: a value-producing
// initialization performed in the parent is re-run on first use in a forked
// child, because the child's copy of the completed state is discarded. If
// the function panics the Once is poisoned and subsequent Do calls panic
// rather than silently skipping a failed initialization; DoForce is the
// explicit escape hatch.
//
// The zero value is ready to use. Use NewOnce to attach an Observer.
// A Once must not be copied after first use.
type Once struct {
	mu    sync.Mutex
	cond  *sync.Cond // created on first contention; signals the final state write
	state onceState
	stamp epochStamp
	owner uint64 // goroutine driving the running transition

	observer Observer
	source   string // overridden by the composing wrapper types
}

// NewOnce returns a Once configured with the given options.
func NewOnce(opts ...Option) *Once {
	cfg := newConfig(opts)
	return &Once{observer: cfg.observer}
}

// Do calls f if and only if no call to Do or DoForce has completed
// successfully in the current fork generation. Concurrent callers block
// until the winning call's f returns; if f panics, the Once is poisoned,
// the panic is propagated to the caller of Do, and every waiting and
// subsequent Do call panics as well.
//
// Calling Do from within f on the same Once is a fatal programming error.
func (o *Once) Do(f func()) {
	if o.Done() {
		return
	}
	o.call(false, func(*OnceState) { f() })
}

// DoForce is Do for callers that want to proceed despite poisoning. Unlike
// Do it runs f even when the Once is poisoned, handing f an OnceState that
// reports the prior poisoning and lets f leave the Once poisoned on
// purpose.
func (o *Once) DoForce(f func(*OnceState)) {
	if o.Done() {
		return
	}
	o.call(true, f)
}

// Done reports whether a call to Do or DoForce has completed successfully
// in the current fork generation.
func (o *Once) Done() bool {
	o.mu.Lock()
	wiped := o.wipeLocked()
	done := o.state == onceComplete
	o.mu.Unlock()
	o.emitWipe(wiped)
	return done
}

// State returns the Once's phase. The caller must have exclusive access to
// o; State does not synchronize with concurrent Do calls.
func (o *Once) State() State {
	o.mu.Lock()
	wiped := o.wipeLocked()
	st := o.state
	o.mu.Unlock()
	o.emitWipe(wiped)
	switch st {
	case onceIncomplete:
		return StateIncomplete
	case onceComplete:
		return StateComplete
	case oncePoisoned:
		return StatePoisoned
	}
	panic("forkonce: invalid Once state")
}

func (o *Once) call(ignorePoison bool, f func(*OnceState)) {
	gid := goroutineID()

	o.mu.Lock()
	wiped := o.wipeLocked()
	for o.state == onceRunning {
		if o.owner == gid {
			o.mu.Unlock()
			panic("forkonce: one-time initialization may not be performed recursively")
		}
		if o.cond == nil {
			o.cond = sync.NewCond(&o.mu)
		}
		// The guard's final state write happens under o.mu before the
		// broadcast, so a waiter never observes complete early.
		o.cond.Wait()
		if o.wipeLocked() {
			wiped = true
		}
	}
	prev := o.state
	if prev == onceComplete {
		o.mu.Unlock()
		o.emitWipe(wiped)
		return
	}
	if prev == oncePoisoned && !ignorePoison {
		o.mu.Unlock()
		o.emitWipe(wiped)
		panic("forkonce: Once instance has previously been poisoned")
	}
	o.state = onceRunning
	o.owner = gid
	o.stamp.clear()
	o.mu.Unlock()
	o.emitWipe(wiped)

	// Completion guard: poisoned is the default outcome, flipped to
	// complete only by f returning normally without calling Poison. The
	// guard stamps the fork generation on every exit so that a fork always
	// wipes the final state, poisoned included.
	st := &OnceState{poisoned: prev == oncePoisoned, target: onceComplete}
	final := oncePoisoned
	defer func() {
		o.mu.Lock()
		o.state = final
		o.owner = 0
		o.stamp.mark()
		if o.cond != nil {
			o.cond.Broadcast()
		}
		o.mu.Unlock()
		if final == onceComplete {
			emit(o.observer, EventInit, o.sourceName())
		} else {
			emit(o.observer, EventPoison, o.sourceName())
		}
	}()
	f(st)
	final = st.target
}

// wipeLocked discards state computed before a fork, resetting the machine
// to incomplete. Idempotent. A running transition is never wiped: its
// stamp is cleared for the duration of the run. Caller holds o.mu.
func (o *Once) wipeLocked() bool {
	if !o.stamp.stale() {
		return false
	}
	o.stamp.clear()
	o.state = onceIncomplete
	return true
}

func (o *Once) emitWipe(wiped bool) {
	if wiped {
		emit(o.observer, EventWipe, o.sourceName())
	}
}

func (o *Once) sourceName() string {
	if o.source == "" {
		return "Once"
	}
	return o.source
}

// OnceState is handed to DoForce callbacks. It reports whether the Once
// was poisoned before this attempt and allows the callback to leave it
// poisoned even when returning normally.
type OnceState struct {
	poisoned bool
	target   onceState
}

// IsPoisoned reports whether the Once was poisoned before the current
// DoForce attempt.
func (s *OnceState) IsPoisoned() bool {
	return s.poisoned
}

// Poison leaves the Once poisoned when the callback returns normally.
func (s *OnceState) Poison() {
	s.target = oncePoisoned
}

package forkonce

// Observer receives primitive lifecycle events. Implementations must be
// safe for concurrent use when attached to a concurrent primitive or to the
// generation counter.
type Observer interface {
	On(eventData EventData)
}

// Event represents a primitive lifecycle event type.
type Event int

const (
	// EventFork is emitted when the generation counter observes a fork.
	EventFork Event = iota
	// EventWipe is emitted when a primitive discards a value computed
	// before a fork.
	EventWipe
	// EventInit is emitted when an initializer completes and its value is
	// published.
	EventInit
	// EventPoison is emitted when an initializer fails and the primitive
	// is left poisoned.
	EventPoison
)

func (e Event) String() string {
	switch e {
	case EventFork:
		return "fork"
	case EventWipe:
		return "wipe"
	case EventInit:
		return "init"
	case EventPoison:
		return "poison"
	}
	return "unknown"
}

// EventData carries the details of a primitive lifecycle event.
type EventData struct {
	Event Event
	// Generation is the fork generation current when the event fired.
	Generation uint64
	// Source names the emitting primitive kind, e.g. "Once" or "LazyLock".
	// Empty for EventFork, which is process-wide.
	Source string
}

func emit(o Observer, event Event, source string) {
	if o == nil {
		return
	}
	o.On(EventData{
		Event:      event,
		Generation: Generation(),
		Source:     source,
	})
}

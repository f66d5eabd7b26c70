package route

import (
	"context"
	"time"
)

// EventKind identifies a phase of a navigation.
type EventKind string

const (
	EventNavigateStart  EventKind = "navigate_start"  // Link selected, nothing torn down yet
	EventUnmount        EventKind = "unmount"         // Outgoing scope finished its cleanups
	EventMount          EventKind = "mount"           // Incoming component body returned
	EventNavigateEnd    EventKind = "navigate_end"    // Navigation complete
	EventNavigateFailed EventKind = "navigate_failed" // Incoming component failed to mount
)

// NavigationEvent is delivered to observers for each phase of a navigation.
// All events of one navigation share Seq.
type NavigationEvent struct {
	Seq      uint64
	Kind     EventKind
	From     string        // outgoing label, "" if nothing was mounted
	To       string        // incoming label
	Cleanups int           // EventUnmount: callbacks run by the outgoing scope
	Elapsed  time.Duration // EventUnmount/EventMount: time spent in the phase
	Result   string        // EventNavigateEnd/EventNavigateFailed: output after the phase
	Err      error         // EventUnmount: recovered cleanup panics; EventNavigateFailed: mount error
	Time     time.Time
}

// Observer receives navigation events synchronously, in order.
type Observer interface {
	OnNavigation(ctx context.Context, ev NavigationEvent)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, ev NavigationEvent)

// OnNavigation implements Observer.
func (f ObserverFunc) OnNavigation(ctx context.Context, ev NavigationEvent) {
	f(ctx, ev)
}

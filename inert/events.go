package inert

import "time"

// EventType names a lifecycle event emitted by the Manager.
type EventType string

const (
	EventRootActivated     EventType = "root_activated"
	EventRootDeactivated   EventType = "root_deactivated"
	EventElementRestrained EventType = "element_restrained"
	EventElementRestored   EventType = "element_restored"
)

// Event is one lifecycle observation. Elements are addressed by path, not by
// reference, so sinks can serialise events without holding the tree alive.
type Event struct {
	Type          EventType
	Path          string
	Tag           string
	SavedTabIndex *string // captured value for element_restrained, when any
	At            time.Time
}

// EventSink receives lifecycle events. Implementations must not block and
// must not call back into the Manager; a failing sink never stops the
// engine.
type EventSink interface {
	Record(ev Event)
}

// EventSinkFunc adapts a function to the EventSink interface.
type EventSinkFunc func(ev Event)

// Record implements EventSink.
func (f EventSinkFunc) Record(ev Event) { f(ev) }

package handle

// Handle is an opaque reference to a host heap entry.
// Handle 0 is reserved and always invalid.
type Handle uint32

// Tag identifies what kind of value an entry holds.
type Tag uint32

// EventType enumerates lifecycle notifications.
type EventType uint8

const (
	EventCreated EventType = iota
	EventRetained
	EventDropped
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventRetained:
		return "retained"
	case EventDropped:
		return "dropped"
	}
	return "unknown"
}

// Event represents a handle lifecycle event.
type Event struct {
	Value  any
	Handle Handle
	Tag    Tag
	Type   EventType
}

// Observer receives handle lifecycle events.
type Observer interface {
	OnHandleEvent(Event)
}

// Dropper is optionally implemented by values that need cleanup when their
// last reference goes away.
type Dropper interface {
	Drop()
}

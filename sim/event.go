package sim

// VTimeInSec is simulated time in seconds.
type VTimeInSec float64

// An Event happens at a point of simulated time and is handled by exactly
// one Handler.
type Event interface {
	Time() VTimeInSec
	Handler() Handler

	// IsSecondary tells if the event waits for all the primary events of
	// the same time.
	IsSecondary() bool
}

// A Handler owns the state its events change. An event may only modify its
// own handler.
type Handler interface {
	Handle(e Event) error
}

// EventBase implements the getters of Event.
type EventBase struct {
	ID        string
	time      VTimeInSec
	handler   Handler
	secondary bool
}

// NewEventBase creates a primary event.
func NewEventBase(t VTimeInSec, handler Handler) *EventBase {
	return &EventBase{
		ID:      GetIDGenerator().Generate(),
		time:    t,
		handler: handler,
	}
}

// Time returns when the event happens.
func (e EventBase) Time() VTimeInSec { return e.time }

// Handler returns the handler of the event.
func (e EventBase) Handler() Handler { return e.handler }

// IsSecondary tells if the event is a secondary event.
func (e EventBase) IsSecondary() bool { return e.secondary }

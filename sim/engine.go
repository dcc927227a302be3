package sim

import (
	"log"
	"reflect"
	"sync"
	"sync/atomic"
)

// TimeTeller reports the current simulated time.
type TimeTeller interface {
	CurrentTime() VTimeInSec
}

// EventScheduler accepts events to be handled later.
type EventScheduler interface {
	Schedule(e Event)
}

// A SimulationEndHandler runs once the simulation is over, for example to
// flush recorded data.
type SimulationEndHandler interface {
	Handle(now VTimeInSec)
}

// Engine hook positions. The hook item is the event.
var (
	HookPosBeforeEvent = &HookPos{Name: "BeforeEvent"}
	HookPosAfterEvent  = &HookPos{Name: "AfterEvent"}
)

// An Engine drives a discrete event simulation.
type Engine interface {
	Hookable
	TimeTeller
	EventScheduler

	// Run handles events until none are left, Stop is called or a handler
	// fails.
	Run() error

	// Stop makes Run return once the current event is handled. Events that
	// are still queued stay queued and a later Run picks them up.
	Stop()

	RegisterSimulationEndHandler(handler SimulationEndHandler)

	// Finished calls the simulation end handlers.
	Finished()
}

// A SerialEngine handles one event at a time. Of two events due at the same
// time, primary ones go first, so secondary events see the state every
// primary event of that time left behind.
type SerialEngine struct {
	HookableBase

	nowLock sync.RWMutex
	now     VTimeInSec

	primary   EventQueue
	secondary EventQueue

	stopped atomic.Bool
	running sync.Mutex

	endHandlers []SimulationEndHandler
}

// NewSerialEngine creates a SerialEngine at time 0.
func NewSerialEngine() *SerialEngine {
	return &SerialEngine{
		primary:   NewEventQueue(),
		secondary: NewEventQueue(),
	}
}

// Schedule queues an event. Scheduling into the past is a programming error.
func (e *SerialEngine) Schedule(evt Event) {
	if now := e.CurrentTime(); evt.Time() < now {
		log.Panicf("cannot schedule %s at %.10f, it is already %.10f",
			reflect.TypeOf(evt), evt.Time(), now)
	}

	if evt.IsSecondary() {
		e.secondary.Push(evt)
	} else {
		e.primary.Push(evt)
	}
}

// CurrentTime returns the time of the event being handled, or of the last
// one handled.
func (e *SerialEngine) CurrentTime() VTimeInSec {
	e.nowLock.RLock()
	defer e.nowLock.RUnlock()

	return e.now
}

func (e *SerialEngine) setTime(t VTimeInSec) {
	e.nowLock.Lock()
	e.now = t
	e.nowLock.Unlock()
}

// Run handles events in time order.
func (e *SerialEngine) Run() error {
	e.running.Lock()
	defer e.running.Unlock()

	e.stopped.Store(false)

	for !e.stopped.Load() {
		q := e.dueQueue()
		if q == nil {
			return nil
		}

		evt := q.Pop()
		e.setTime(evt.Time())

		ctx := HookCtx{Domain: e, Pos: HookPosBeforeEvent, Item: evt}
		e.InvokeHook(ctx)

		if err := evt.Handler().Handle(evt); err != nil {
			return err
		}

		ctx.Pos = HookPosAfterEvent
		e.InvokeHook(ctx)
	}

	return nil
}

// dueQueue returns the queue holding the next event, or nil if both are
// empty.
func (e *SerialEngine) dueQueue() EventQueue {
	switch {
	case e.primary.Len() == 0 && e.secondary.Len() == 0:
		return nil
	case e.secondary.Len() == 0:
		return e.primary
	case e.primary.Len() == 0:
		return e.secondary
	case e.primary.Peek().Time() <= e.secondary.Peek().Time():
		return e.primary
	default:
		return e.secondary
	}
}

// Stop makes Run return after the current event.
func (e *SerialEngine) Stop() {
	e.stopped.Store(true)
}

// RegisterSimulationEndHandler adds a handler to be called by Finished.
func (e *SerialEngine) RegisterSimulationEndHandler(
	handler SimulationEndHandler,
) {
	e.endHandlers = append(e.endHandlers, handler)
}

// Finished calls every simulation end handler with the current time.
func (e *SerialEngine) Finished() {
	now := e.CurrentTime()
	for _, h := range e.endHandlers {
		h.Handle(now)
	}
}

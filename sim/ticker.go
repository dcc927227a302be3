package sim

import (
	"sync"
)

// TickEvent asks its handler to advance by one cycle.
type TickEvent struct {
	EventBase
}

// MakeTickEvent creates a primary TickEvent.
func MakeTickEvent(handler Handler, time VTimeInSec) TickEvent {
	return TickEvent{EventBase: EventBase{
		ID:      GetIDGenerator().Generate(),
		time:    time,
		handler: handler,
	}}
}

// A Ticker updates its state once per cycle. Tick returns false when nothing
// changed, which lets the component sleep until a port wakes it up.
type Ticker interface {
	Tick() bool
}

// TickScheduler schedules at most one tick event per cycle for a handler.
type TickScheduler struct {
	lock      sync.Mutex
	handler   Handler
	engine    Engine
	freq      Freq
	secondary bool

	nextTick VTimeInSec
}

func newTickScheduler(
	handler Handler,
	engine Engine,
	freq Freq,
	secondary bool,
) *TickScheduler {
	return &TickScheduler{
		handler:   handler,
		engine:    engine,
		freq:      freq,
		secondary: secondary,
		nextTick:  -1,
	}
}

// TickNow schedules a tick in the current cycle.
func (t *TickScheduler) TickNow() {
	t.tickAt(t.freq.ThisTick(t.CurrentTime()))
}

// TickLater schedules a tick in the next cycle.
func (t *TickScheduler) TickLater() {
	t.tickAt(t.freq.NextTick(t.CurrentTime()))
}

func (t *TickScheduler) tickAt(time VTimeInSec) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.nextTick >= time {
		return
	}

	t.nextTick = time

	tick := MakeTickEvent(t.handler, time)
	tick.secondary = t.secondary
	t.engine.Schedule(tick)
}

// CurrentTime returns the time of the engine.
func (t *TickScheduler) CurrentTime() VTimeInSec {
	return t.engine.CurrentTime()
}

// CurrentCycle returns the number of cycles since time 0.
func (t *TickScheduler) CurrentCycle() uint64 {
	return t.freq.Cycle(t.CurrentTime())
}

// TickingComponent is a component driven by a Ticker. It keeps ticking while
// the ticker makes progress and wakes up when a port receives a message or
// frees a slot.
type TickingComponent struct {
	*ComponentBase
	*TickScheduler

	ticker Ticker
}

// NewTickingComponent creates a component ticking with primary events.
func NewTickingComponent(
	name string,
	engine Engine,
	freq Freq,
	ticker Ticker,
) *TickingComponent {
	return newTickingComponent(name, engine, freq, ticker, false)
}

// NewSecondaryTickingComponent creates a component whose ticks run after all
// the primary events of the same cycle. Controllers that must see what every
// engine did in a cycle use it.
func NewSecondaryTickingComponent(
	name string,
	engine Engine,
	freq Freq,
	ticker Ticker,
) *TickingComponent {
	return newTickingComponent(name, engine, freq, ticker, true)
}

func newTickingComponent(
	name string,
	engine Engine,
	freq Freq,
	ticker Ticker,
	secondary bool,
) *TickingComponent {
	tc := &TickingComponent{
		ComponentBase: NewComponentBase(name),
		ticker:        ticker,
	}
	tc.TickScheduler = newTickScheduler(tc, engine, freq, secondary)

	return tc
}

// NotifyPortFree wakes the component up.
func (c *TickingComponent) NotifyPortFree(_ Port) {
	c.TickLater()
}

// NotifyRecv wakes the component up.
func (c *TickingComponent) NotifyRecv(_ Port) {
	c.TickLater()
}

// Handle runs one tick.
func (c *TickingComponent) Handle(_ Event) error {
	if c.ticker.Tick() {
		c.TickLater()
	}

	return nil
}

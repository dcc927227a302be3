package orchestrator

import (
	"github.com/sarchlab/membist/bist"
	"github.com/sarchlab/membist/sim"
)

// Builder can build orchestrators.
type Builder struct {
	engine      sim.Engine
	freq        sim.Freq
	gen         bist.Engine
	chk         bist.Engine
	alternating bool
	watchdog    uint64
	initDelay   uint64
	initDone    func() bool
	maxCycles   uint64
}

// MakeBuilder returns a new Builder.
func MakeBuilder() Builder {
	return Builder{
		freq:     1 * sim.GHz,
		watchdog: DefaultWatchdogCycles,
	}
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency. It should match the engines it drives.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithGenerator sets the generator to drive.
func (b Builder) WithGenerator(gen bist.Engine) Builder {
	b.gen = gen
	return b
}

// WithChecker sets the checker to drive.
func (b Builder) WithChecker(chk bist.Engine) Builder {
	b.chk = chk
	return b
}

// WithAlternating makes the generator and the checker take turns word by
// word instead of running one after the other.
func (b Builder) WithAlternating(alternating bool) Builder {
	b.alternating = alternating
	return b
}

// WithWatchdogCycles sets the number of cycles between the report and the
// end of the simulation.
func (b Builder) WithWatchdogCycles(n uint64) Builder {
	b.watchdog = n
	return b
}

// WithInitDelay sets the number of cycles after Start before the memory is
// considered initialized.
func (b Builder) WithInitDelay(n uint64) Builder {
	b.initDelay = n
	return b
}

// WithInitDone sets the signal that tells when the memory is initialized.
// It is polled every cycle once the init delay has passed. Without it, the
// memory counts as initialized as soon as the delay has passed.
func (b Builder) WithInitDone(initDone func() bool) Builder {
	b.initDone = initDone
	return b
}

// WithMaxCycles stops the orchestrator if it has not finished after n
// cycles. Zero means no limit.
func (b Builder) WithMaxCycles(n uint64) Builder {
	b.maxCycles = n
	return b
}

// Build creates an orchestrator.
func (b Builder) Build(name string) *Comp {
	if b.engine == nil {
		panic("engine is not set")
	}

	if b.gen == nil || b.chk == nil {
		panic("generator and checker must be set")
	}

	c := &Comp{
		engine:    b.engine,
		gen:       b.gen,
		chk:       b.chk,
		initDelay: b.initDelay,
		initDone:  b.initDone,
		maxCycles: b.maxCycles,
		snapshot: Snapshot{
			State:       StateWaitInit,
			Alternating: b.alternating,
			Watchdog:    b.watchdog,
		},
	}
	c.TickingComponent = sim.NewSecondaryTickingComponent(
		name, b.engine, b.freq, c)

	return c
}

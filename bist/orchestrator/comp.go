// Package orchestrator sequences a BIST generator and checker through a run
// and reports the result.
package orchestrator

import (
	"log"

	"github.com/sarchlab/membist/bist"
	"github.com/sarchlab/membist/sim"
	"github.com/sarchlab/membist/tracing"
)

// A FinishHandler is called when the watchdog expires after the report,
// right before the orchestrator stops the engine.
type FinishHandler interface {
	HandleFinish(r Result)
}

// FinishHandlerFunc adapts a function to a FinishHandler.
type FinishHandlerFunc func(r Result)

// HandleFinish calls f.
func (f FinishHandlerFunc) HandleFinish(r Result) {
	f(r)
}

// Comp drives the start and run levels of a generator and a checker. It
// ticks after every primary component of a cycle, so it sees the status the
// engines reached in the cycle and its levels take effect in the next one.
type Comp struct {
	*sim.TickingComponent

	engine   sim.Engine
	gen, chk bist.Engine

	snapshot   Snapshot
	initDelay  uint64
	initDone   func() bool
	maxCycles  uint64
	startCycle uint64
	started    bool
	timedOut   bool
	taskID     string

	result         *Result
	finishHandlers []FinishHandler
}

// Start begins the sequence at the next cycle.
func (c *Comp) Start() {
	if c.started {
		return
	}

	c.started = true
	c.startCycle = c.CurrentCycle()
	c.taskID = sim.GetIDGenerator().Generate()
	tracing.StartTask(c.taskID, "", c, tracing.KindBenchmark, "benchmark", nil)
	c.TickLater()
}

// AcceptFinishHandler registers a handler to call when the sequence ends.
func (c *Comp) AcceptFinishHandler(h FinishHandler) {
	c.finishHandlers = append(c.finishHandlers, h)
}

// State returns the current state.
func (c *Comp) State() State {
	return c.snapshot.State
}

// Finished tells if the sequence has ended.
func (c *Comp) Finished() bool {
	return c.snapshot.State == StateFinished
}

// TimedOut tells if the sequence was abandoned after the cycle limit.
func (c *Comp) TimedOut() bool {
	return c.timedOut
}

// Result returns the result once it has been displayed.
func (c *Comp) Result() (Result, bool) {
	if c.result == nil {
		return Result{}, false
	}

	return *c.result, true
}

// Tick runs one cycle of the state machine. Finishing and timing out both
// stop the engine, even if other components still have work scheduled.
func (c *Comp) Tick() bool {
	if c.snapshot.State == StateFinished || c.timedOut {
		return false
	}

	elapsed := c.CurrentCycle() - c.startCycle
	if c.maxCycles > 0 && elapsed >= c.maxCycles {
		log.Printf("%s: gave up in state %s after %d cycles",
			c.Name(), c.snapshot.State, elapsed)
		c.timedOut = true
		tracing.EndTask(c.taskID, c)
		c.engine.Stop()

		return false
	}

	in := Inputs{
		InitDone: c.memoryInitialized(elapsed),
		Gen:      c.gen.Status(),
		Chk:      c.chk.Status(),
	}

	prev := c.snapshot.State

	var out Outputs
	c.snapshot, out = Transition(c.snapshot, in)

	if c.snapshot.State != prev {
		tracing.AddTaskStep(c.taskID, c, c.snapshot.State.String())
	}

	c.drive(out)

	if out.Display {
		c.display(in, elapsed)
	}

	if out.Finish {
		c.finish()
	}

	return true
}

func (c *Comp) memoryInitialized(elapsed uint64) bool {
	if elapsed < c.initDelay {
		return false
	}

	return c.initDone == nil || c.initDone()
}

func (c *Comp) drive(out Outputs) {
	if out.GenStart {
		c.gen.Start()
	}

	if out.ChkStart {
		c.chk.Start()
	}

	c.gen.SetRun(out.GenRun)
	c.chk.SetRun(out.ChkRun)
}

func (c *Comp) display(in Inputs, elapsed uint64) {
	r := newResult(in.Gen, in.Chk, elapsed)
	c.result = &r

	for _, line := range r.Lines() {
		log.Print(line)
	}
}

func (c *Comp) finish() {
	tracing.EndTask(c.taskID, c)

	for _, h := range c.finishHandlers {
		h.HandleFinish(*c.result)
	}

	c.engine.Stop()
}

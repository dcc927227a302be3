// Package generator provides the BIST generator, which writes the words of a
// run into memory.
package generator

import (
	"github.com/sarchlab/membist/bist"
	"github.com/sarchlab/membist/sim"
)

// Comp is a BIST generator.
type Comp struct {
	*sim.TickingComponent
	sim.MiddlewareHolder

	ctrl    *bist.Control
	widths  bist.Widths
	port    sim.Port
	memPort sim.RemotePort
	runID   string
}

// Tick updates the state of the generator.
func (c *Comp) Tick() bool {
	return c.MiddlewareHolder.Tick()
}

// MemPort returns the port that sends write requests.
func (c *Comp) MemPort() sim.Port {
	return c.port
}

// SetMemPort sets the port that write requests are sent to.
func (c *Comp) SetMemPort(remote sim.RemotePort) {
	c.memPort = remote
}

// Widths returns the geometry of the memory port.
func (c *Comp) Widths() bist.Widths {
	return c.widths
}

// Reset returns the generator to Idle.
func (c *Comp) Reset() {
	c.ctrl.Reset()
}

// Configure stages the config of the next run.
func (c *Comp) Configure(cfg bist.Config) error {
	return c.ctrl.Configure(cfg)
}

// Start requests a run.
func (c *Comp) Start() {
	c.ctrl.Start()
}

// SetRun allows or stops issuing writes.
func (c *Comp) SetRun(run bool) {
	c.ctrl.SetRun(run)
}

// Done tells if the last run has completed.
func (c *Comp) Done() bool {
	return c.ctrl.Done()
}

// Ready tells if no write is waiting for its acknowledgement.
func (c *Comp) Ready() bool {
	return c.ctrl.Ready()
}

// Status returns a snapshot of the generator.
func (c *Comp) Status() bist.Status {
	return c.ctrl.Status()
}

// Result returns the run state of a completed run.
func (c *Comp) Result() (bist.RunState, bool) {
	return c.ctrl.Result()
}

// Registers returns the control and status registers.
func (c *Comp) Registers() bist.Registers {
	return c.ctrl.Registers()
}

// Package checker provides the BIST checker, which reads the words of a run
// back from memory and counts the ones that differ from what the generator
// wrote.
package checker

import (
	"github.com/sarchlab/membist/bist"
	"github.com/sarchlab/membist/sim"
)

// A Mismatch is a word that was read back with unexpected content.
type Mismatch struct {
	Index    uint64
	Address  uint64
	Expected uint64
	Actual   uint64
}

// Comp is a BIST checker.
type Comp struct {
	*sim.TickingComponent
	sim.MiddlewareHolder

	ctrl    *bist.Control
	widths  bist.Widths
	port    sim.Port
	memPort sim.RemotePort
	runID   string

	maxMismatches int
	mismatches    []Mismatch
}

// Tick updates the state of the checker.
func (c *Comp) Tick() bool {
	return c.MiddlewareHolder.Tick()
}

// MemPort returns the port that sends read requests.
func (c *Comp) MemPort() sim.Port {
	return c.port
}

// SetMemPort sets the port that read requests are sent to.
func (c *Comp) SetMemPort(remote sim.RemotePort) {
	c.memPort = remote
}

// Widths returns the geometry of the memory port.
func (c *Comp) Widths() bist.Widths {
	return c.widths
}

// Mismatches returns the first mismatches of the current run.
func (c *Comp) Mismatches() []Mismatch {
	return c.mismatches
}

// Reset returns the checker to Idle and clears the error counter.
func (c *Comp) Reset() {
	c.ctrl.Reset()
	c.mismatches = nil
}

// Configure stages the config of the next run.
func (c *Comp) Configure(cfg bist.Config) error {
	return c.ctrl.Configure(cfg)
}

// Start requests a run.
func (c *Comp) Start() {
	c.ctrl.Start()
}

// SetRun allows or stops issuing reads.
func (c *Comp) SetRun(run bool) {
	c.ctrl.SetRun(run)
}

// Done tells if the last run has completed.
func (c *Comp) Done() bool {
	return c.ctrl.Done()
}

// Ready tells if no read is waiting for its response.
func (c *Comp) Ready() bool {
	return c.ctrl.Ready()
}

// Status returns a snapshot of the checker.
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

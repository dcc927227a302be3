package bist

import (
	"log"
)

// Control implements the register surface and the run lifecycle shared by
// the generator and the checker. The owning component drives it from its
// tick function.
type Control struct {
	name      string
	configure func(Config) (Stream, error)
	wake      func()
	cycle     func() uint64

	staged       Config
	stagedStream Stream

	phase     Phase
	startReq  bool
	run       bool
	finishing bool

	stream    Stream
	cmd       Cursor
	exp       Cursor
	state     RunState
	issued    uint64
	completed uint64

	startCycle uint64
	cycles     uint64

	outstanding []string
	stale       map[string]bool
}

// NewControl creates a Control. configure turns a config into the stream of
// the next run, wake makes the owner tick in the next cycle and cycle tells
// the current cycle.
func NewControl(
	name string,
	configure func(Config) (Stream, error),
	wake func(),
	cycle func() uint64,
) *Control {
	return &Control{
		name:      name,
		configure: configure,
		wake:      wake,
		cycle:     cycle,
		stale:     make(map[string]bool),
	}
}

// Reset returns the engine to Idle from any phase. The run state is zeroed
// and responses to requests sent before the reset are dropped when they
// arrive.
func (c *Control) Reset() {
	for _, id := range c.outstanding {
		c.stale[id] = true
	}

	c.outstanding = nil
	c.phase = PhaseIdle
	c.startReq = false
	c.finishing = false
	c.stream = nil
	c.cmd = nil
	c.exp = nil
	c.state = RunState{}
	c.issued = 0
	c.completed = 0
	c.cycles = 0
}

// Configure stages the config of the next run. The run that is going on, if
// any, keeps the config it started with.
func (c *Control) Configure(cfg Config) error {
	stream, err := c.configure(cfg)
	if err != nil {
		return err
	}

	c.staged = cfg
	c.stagedStream = stream

	return nil
}

// SetStream stages a stream directly.
func (c *Control) SetStream(s Stream) {
	c.stagedStream = s
}

// Start requests a run. It only has an effect in Idle.
func (c *Control) Start() {
	if c.phase != PhaseIdle {
		return
	}

	c.startReq = true
	c.wake()
}

// SetRun sets the level that allows the engine to issue requests.
func (c *Control) SetRun(run bool) {
	if run && !c.run {
		c.wake()
	}

	c.run = run
}

// Done tells if the last run has completed.
func (c *Control) Done() bool {
	return c.phase == PhaseDone
}

// Ready tells if no request is waiting for its response.
func (c *Control) Ready() bool {
	return c.issued == c.completed
}

// Phase returns the phase of the engine.
func (c *Control) Phase() Phase {
	return c.phase
}

// Status returns a snapshot of the engine.
func (c *Control) Status() Status {
	s := Status{
		Phase:     c.phase,
		Done:      c.Done(),
		Ready:     c.Ready(),
		Run:       c.run,
		Issued:    c.issued,
		Completed: c.completed,
		Cycles:    c.cycles,
		RunState:  c.runState(),
	}

	if c.stream != nil {
		s.Length = c.stream.Len()
	}

	return s
}

func (c *Control) runState() RunState {
	rs := c.state
	rs.Index = c.issued

	if c.cmd != nil {
		rs.AddrLFSR, rs.DataLFSR = c.cmd.LFSRState()
	}

	return rs
}

// Result returns the run state of a completed run.
func (c *Control) Result() (RunState, bool) {
	if c.phase != PhaseDone {
		return RunState{}, false
	}

	return c.runState(), true
}

// Registers returns the control and status registers.
func (c *Control) Registers() Registers {
	return Registers{
		Base:       c.staged.Base,
		End:        c.staged.End,
		Length:     c.staged.Length,
		RandomAddr: c.staged.RandomAddr,
		RandomData: c.staged.RandomData,
		Start:      c.startReq,
		Run:        c.run,
		Done:       c.Done(),
		Errors:     c.state.Errors,
		Ticks:      c.state.Ticks,
	}
}

// Advance moves the lifecycle forward at the beginning of a tick. A run that
// completed in the previous tick becomes Done, and a requested start begins
// a run.
func (c *Control) Advance() bool {
	if c.finishing {
		c.finishing = false
		c.phase = PhaseDone
		c.cycles = c.cycle() - c.startCycle

		return true
	}

	if c.phase != PhaseIdle || !c.startReq {
		return false
	}

	c.startReq = false

	if c.stagedStream == nil {
		log.Printf("%s: start ignored, not configured", c.name)
		return false
	}

	c.stream = c.stagedStream
	c.cmd = c.stream.NewCursor()
	c.exp = c.stream.NewCursor()
	c.state = RunState{}
	c.issued = 0
	c.completed = 0
	c.phase = PhaseActive
	c.startCycle = c.cycle()
	c.finishing = c.stream.Len() == 0

	return true
}

// CanIssue tells if the engine may issue a request in this tick, not
// counting the port.
func (c *Control) CanIssue() bool {
	return c.phase == PhaseActive && c.run && !c.cmd.Done()
}

// Next returns the transaction to issue.
func (c *Control) Next() Transaction {
	return c.cmd.Peek()
}

// Issued records that the port accepted the request of the current
// transaction.
func (c *Control) Issued(reqID string) {
	c.cmd.Advance()
	c.issued++
	c.outstanding = append(c.outstanding, reqID)
}

// Match checks a response against the oldest outstanding request. It
// returns false for responses to requests sent before a reset. A response
// to anything else breaks the in-order memory contract.
func (c *Control) Match(rspTo string) bool {
	if c.stale[rspTo] {
		delete(c.stale, rspTo)
		return false
	}

	if len(c.outstanding) == 0 || c.outstanding[0] != rspTo {
		log.Panicf("%s: response to %s arrived out of order", c.name, rspTo)
	}

	c.outstanding = c.outstanding[1:]

	return true
}

// Expected returns the transaction the next response belongs to.
func (c *Control) Expected() Transaction {
	return c.exp.Peek()
}

// Completed records that the oldest outstanding request got its response.
func (c *Control) Completed() {
	c.exp.Advance()
	c.completed++

	if c.completed == c.stream.Len() {
		c.finishing = true
	}
}

// CountTick adds one to the tick counter.
func (c *Control) CountTick() {
	c.state.Ticks++
}

// CountError adds one to the error counter.
func (c *Control) CountError() {
	c.state.Errors++
}

package orchestrator

import (
	"github.com/sarchlab/membist/bist"
)

// State is a state of the orchestration state machine.
type State int

// The states of the orchestration state machine.
const (
	StateWaitInit State = iota
	StateGenerator
	StateChecker
	StateCombined
	StateReport
	StateDone
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateWaitInit:
		return "WaitInit"
	case StateGenerator:
		return "GeneratorPhase"
	case StateChecker:
		return "CheckerPhase"
	case StateCombined:
		return "CombinedPhase"
	case StateReport:
		return "Report"
	case StateDone:
		return "Done"
	case StateFinished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// DefaultWatchdogCycles is the number of cycles between the report and the
// end of the simulation.
const DefaultWatchdogCycles = 1 << 16

// A Snapshot is the state the machine carries from one cycle to the next.
type Snapshot struct {
	State       State
	Alternating bool

	// Watchdog is loaded into WatchdogLeft when the machine enters Done.
	Watchdog     uint64
	WatchdogLeft uint64
}

// Inputs are what the machine observes in a cycle.
type Inputs struct {
	InitDone bool
	Gen      bist.Status
	Chk      bist.Status
}

// Outputs are the levels the machine drives for the next cycle.
type Outputs struct {
	GenStart bool
	GenRun   bool
	ChkStart bool
	ChkRun   bool
	Display  bool
	Finish   bool
}

// Transition computes the state and the outputs of one cycle.
func Transition(s Snapshot, in Inputs) (Snapshot, Outputs) {
	var out Outputs

	switch s.State {
	case StateWaitInit:
		if in.InitDone {
			s.State = StateGenerator
			if s.Alternating {
				s.State = StateCombined
			}
		}
	case StateGenerator:
		out.GenStart = true
		out.GenRun = true

		if in.Gen.Done {
			s.State = StateChecker
		}
	case StateChecker:
		out.ChkStart = true
		out.ChkRun = true

		if in.Chk.Done {
			s.State = StateReport
		}
	case StateCombined:
		out.GenStart = true
		out.ChkStart = true
		out.GenRun, out.ChkRun = Alternate(in.Gen, in.Chk)

		if in.Chk.Done {
			s.State = StateReport
		}
	case StateReport:
		out.Display = true
		s.State = StateDone
		s.WatchdogLeft = s.Watchdog
	case StateDone:
		if s.WatchdogLeft > 0 {
			s.WatchdogLeft--
		}

		if s.WatchdogLeft == 0 {
			out.Finish = true
			s.State = StateFinished
		}
	case StateFinished:
	}

	return s, out
}

// Alternate derives the run levels that make the generator and the checker
// take turns: write i is acknowledged before read i is issued, and read i
// is answered before write i+1 is issued.
func Alternate(gen, chk bist.Status) (genRun, chkRun bool) {
	genRun = gen.Issued == chk.Completed && chk.Ready
	chkRun = chk.Issued < gen.Completed

	return genRun, chkRun
}

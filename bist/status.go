package bist

// Phase is the lifecycle phase of an engine.
type Phase int

// The phases of an engine.
const (
	PhaseIdle Phase = iota
	PhaseActive
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseActive:
		return "Active"
	case PhaseDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// RunState is what a run has done so far. Errors and Ticks only grow within
// a run and are zeroed by Reset.
type RunState struct {
	Index    uint64
	AddrLFSR uint64
	DataLFSR uint64
	Errors   uint64
	Ticks    uint64
}

// Status is a snapshot of an engine, as seen by an orchestrator.
type Status struct {
	Phase     Phase
	Done      bool
	Ready     bool
	Run       bool
	Length    uint64
	Issued    uint64
	Completed uint64
	Cycles    uint64
	RunState  RunState
}

// Registers mirrors the control and status registers of an engine.
type Registers struct {
	Base       uint64
	End        uint64
	Length     uint64
	RandomAddr bool
	RandomData bool
	Start      bool
	Run        bool
	Done       bool
	Errors     uint64
	Ticks      uint64
}

// Engine is the control surface of a generator or a checker.
type Engine interface {
	Reset()
	Configure(cfg Config) error
	Start()
	SetRun(run bool)
	Done() bool
	Ready() bool
	Status() Status
}

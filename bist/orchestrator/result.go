package orchestrator

import (
	"fmt"

	"github.com/sarchlab/membist/bist"
)

// Result is what the orchestrator displays once the checker is done.
type Result struct {
	GeneratorTicks  uint64
	CheckerErrors   uint64
	CheckerTicks    uint64
	GeneratorCycles uint64
	CheckerCycles   uint64
	TotalCycles     uint64

	Generator bist.Status
	Checker   bist.Status
}

func newResult(gen, chk bist.Status, totalCycles uint64) Result {
	return Result{
		GeneratorTicks:  gen.RunState.Ticks,
		CheckerErrors:   chk.RunState.Errors,
		CheckerTicks:    chk.RunState.Ticks,
		GeneratorCycles: gen.Cycles,
		CheckerCycles:   chk.Cycles,
		TotalCycles:     totalCycles,
		Generator:       gen,
		Checker:         chk,
	}
}

// Lines returns the result lines in the fixed-width form of the display.
func (r Result) Lines() []string {
	return []string{
		fmt.Sprintf("BIST-GENERATOR ticks:  %08d", r.GeneratorTicks),
		fmt.Sprintf("BIST-CHECKER errors:   %08d", r.CheckerErrors),
		fmt.Sprintf("BIST-CHECKER ticks:    %08d", r.CheckerTicks),
	}
}

// Passed tells if the checker found no errors.
func (r Result) Passed() bool {
	return r.CheckerErrors == 0
}

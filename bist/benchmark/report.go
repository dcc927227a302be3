package benchmark

import (
	"fmt"

	"github.com/sarchlab/membist/bist/checker"
	"github.com/sarchlab/membist/bist/orchestrator"
	"github.com/sarchlab/membist/sim"
)

// Table names of the recorded reports.
const (
	ResultTable   = "bist_result"
	MismatchTable = "bist_mismatch"
)

// Settings is what a benchmark was built with. The window fields are zero
// for pattern runs.
type Settings struct {
	DataWidth      int
	Base           uint64
	End            uint64
	Length         uint64
	RandomAddr     bool
	RandomData     bool
	Alternating    bool
	PatternEntries int
}

// A RunReport is the outcome of a benchmark.
type RunReport struct {
	orchestrator.Result

	Name       string
	Settings   Settings
	Mismatches []checker.Mismatch

	// MismatchedReads is the number of reads with at least one wrong bit.
	MismatchedReads uint64

	// Average time between sending a request and taking its response.
	WriteLatency sim.VTimeInSec
	ReadLatency  sim.VTimeInSec

	// MemoryBusyTime is how long at least one request was outstanding.
	MemoryBusyTime sim.VTimeInSec
}

// Summary returns the result lines followed by the cycle counts and the
// first recorded mismatches.
func (r RunReport) Summary() []string {
	lines := r.Lines()

	lines = append(lines,
		fmt.Sprintf("cycles: generator %d, checker %d, total %d",
			r.GeneratorCycles, r.CheckerCycles, r.TotalCycles),
		fmt.Sprintf("latency: write %.3gs, read %.3gs, memory busy %.3gs",
			float64(r.WriteLatency), float64(r.ReadLatency),
			float64(r.MemoryBusyTime)),
	)

	for _, m := range r.Mismatches {
		lines = append(lines, fmt.Sprintf(
			"mismatch #%d at 0x%08x: expected 0x%x, got 0x%x",
			m.Index, m.Address, m.Expected, m.Actual))
	}

	if n := uint64(len(r.Mismatches)); r.CheckerErrors > n {
		lines = append(lines,
			fmt.Sprintf("%d more mismatches not shown", r.CheckerErrors-n))
	}

	return lines
}

// ResultEntry is a report as stored in the ResultTable.
type ResultEntry struct {
	Benchmark       string `membist_data:"index"`
	DataWidth       int
	Base            uint64
	End             uint64
	Length          uint64
	RandomAddr      bool
	RandomData      bool
	Alternating     bool
	PatternEntries  int
	GeneratorTicks  uint64
	CheckerErrors   uint64
	CheckerTicks    uint64
	MismatchedReads uint64
	GeneratorCycles uint64
	CheckerCycles   uint64
	TotalCycles     uint64
	WriteLatency    float64
	ReadLatency     float64
	MemoryBusyTime  float64
	Passed          bool
}

// MismatchEntry is a mismatch as stored in the MismatchTable.
type MismatchEntry struct {
	Benchmark string `membist_data:"index"`
	Index     uint64
	Address   uint64
	Expected  uint64
	Actual    uint64
}

func (r RunReport) entry() ResultEntry {
	return ResultEntry{
		Benchmark:       r.Name,
		DataWidth:       r.Settings.DataWidth,
		Base:            r.Settings.Base,
		End:             r.Settings.End,
		Length:          r.Settings.Length,
		RandomAddr:      r.Settings.RandomAddr,
		RandomData:      r.Settings.RandomData,
		Alternating:     r.Settings.Alternating,
		PatternEntries:  r.Settings.PatternEntries,
		GeneratorTicks:  r.GeneratorTicks,
		CheckerErrors:   r.CheckerErrors,
		CheckerTicks:    r.CheckerTicks,
		MismatchedReads: r.MismatchedReads,
		GeneratorCycles: r.GeneratorCycles,
		CheckerCycles:   r.CheckerCycles,
		TotalCycles:     r.TotalCycles,
		WriteLatency:    float64(r.WriteLatency),
		ReadLatency:     float64(r.ReadLatency),
		MemoryBusyTime:  float64(r.MemoryBusyTime),
		Passed:          r.Passed(),
	}
}

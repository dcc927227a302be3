package benchmark

import (
	"errors"
	"fmt"

	"github.com/sarchlab/membist/bist/checker"
	"github.com/sarchlab/membist/bist/generator"
	"github.com/sarchlab/membist/bist/orchestrator"
	"github.com/sarchlab/membist/datarecording"
	"github.com/sarchlab/membist/mem/idealmemcontroller"
	"github.com/sarchlab/membist/monitoring"
	"github.com/sarchlab/membist/sim"
	"github.com/sarchlab/membist/tracing"
)

// Errors of a run that did not reach the report.
var (
	ErrAlreadyRun = errors.New("benchmark has already run")
	ErrTimedOut   = errors.New("benchmark exceeded its cycle limit")
	ErrStalled    = errors.New("simulation ended before the benchmark finished")
)

// A Benchmark is a memory tested by a generator and a checker.
type Benchmark struct {
	name     string
	engine   sim.Engine
	settings Settings
	ran      bool

	memory *idealmemcontroller.Comp
	gen    *generator.Comp
	chk    *checker.Comp
	orch   *orchestrator.Comp
	conn   *sim.DirectConnection

	writeLatency *tracing.AverageTimeTracer
	readLatency  *tracing.AverageTimeTracer
	readSteps    *tracing.StepCountTracer
	memBusy      *tracing.BusyTimeTracer
	taskTracer   *tracing.DBTracer

	recorder datarecording.DataRecorder
	monitor  *monitoring.Monitor
}

// Name returns the name of the benchmark.
func (b *Benchmark) Name() string {
	return b.name
}

// Engine returns the engine the benchmark runs on.
func (b *Benchmark) Engine() sim.Engine {
	return b.engine
}

// Generator returns the generator.
func (b *Benchmark) Generator() *generator.Comp {
	return b.gen
}

// Checker returns the checker.
func (b *Benchmark) Checker() *checker.Comp {
	return b.chk
}

// Memory returns the memory under test.
func (b *Benchmark) Memory() *idealmemcontroller.Comp {
	return b.memory
}

// Orchestrator returns the orchestrator.
func (b *Benchmark) Orchestrator() *orchestrator.Comp {
	return b.orch
}

// Run simulates until the orchestrator finishes and returns the report. A
// benchmark runs once.
func (b *Benchmark) Run() (RunReport, error) {
	if b.ran {
		return RunReport{}, ErrAlreadyRun
	}

	b.ran = true

	progress := b.trackProgress()

	b.orch.Start()
	err := b.engine.Run()
	b.engine.Finished()

	progress.complete()

	if b.taskTracer != nil {
		b.taskTracer.Terminate()
	}

	if err != nil {
		return RunReport{}, err
	}

	if b.orch.TimedOut() {
		return RunReport{}, fmt.Errorf("%s: %w in state %s",
			b.name, ErrTimedOut, b.orch.State())
	}

	result, ok := b.orch.Result()
	if !ok || !b.orch.Finished() {
		return RunReport{}, fmt.Errorf("%s: %w in state %s",
			b.name, ErrStalled, b.orch.State())
	}

	report := RunReport{
		Name:            b.name,
		Result:          result,
		Settings:        b.settings,
		Mismatches:      b.chk.Mismatches(),
		MismatchedReads: b.readSteps.TaskCount(tracing.StepMismatch),
		WriteLatency:    b.writeLatency.AverageTime(),
		ReadLatency:     b.readLatency.AverageTime(),
		MemoryBusyTime:  b.memBusy.BusyTime(),
	}

	b.record(report)

	return report, nil
}

func (b *Benchmark) record(r RunReport) {
	if b.recorder == nil {
		return
	}

	b.recorder.InsertData(ResultTable, r.entry())

	for _, m := range r.Mismatches {
		b.recorder.InsertData(MismatchTable, MismatchEntry{
			Benchmark: r.Name,
			Index:     m.Index,
			Address:   m.Address,
			Expected:  m.Expected,
			Actual:    m.Actual,
		})
	}

	b.recorder.Flush()
}

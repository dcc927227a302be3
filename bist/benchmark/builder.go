// Package benchmark puts a memory, a BIST generator, a BIST checker and an
// orchestrator into one simulation and runs them to a report.
package benchmark

import (
	"fmt"
	"log"

	"github.com/sarchlab/membist/bist"
	"github.com/sarchlab/membist/bist/checker"
	"github.com/sarchlab/membist/bist/generator"
	"github.com/sarchlab/membist/bist/orchestrator"
	"github.com/sarchlab/membist/bist/pattern"
	"github.com/sarchlab/membist/bist/prbs"
	"github.com/sarchlab/membist/datarecording"
	"github.com/sarchlab/membist/mem/idealmemcontroller"
	"github.com/sarchlab/membist/monitoring"
	"github.com/sarchlab/membist/sim"
	"github.com/sarchlab/membist/tracing"
)

// Builder can build benchmarks. The defaults test the first MiB of a memory
// with 32-bit words, writing 1 KiB and reading it back.
type Builder struct {
	engine        sim.Engine
	freq          sim.Freq
	widths        bist.Widths
	cfg           bist.Config
	alternating   bool
	pattern       pattern.Pattern
	params        prbs.Params
	memLatency    int
	memCapacity   uint64
	portDepth     int
	watchdog      uint64
	initDelay     uint64
	initDone      func() bool
	maxCycles     uint64
	maxMismatches int
	recorder      datarecording.DataRecorder
	traceTasks    bool
	monitor       *monitoring.Monitor
	eventLog      *log.Logger
	msgLog        *log.Logger
}

// MakeBuilder returns a Builder with the default settings.
func MakeBuilder() Builder {
	return Builder{
		freq:          1 * sim.GHz,
		widths:        bist.Widths{DataWidth: 32, AddressWidth: 32},
		cfg:           bist.Config{Base: 0, End: 0x100000, Length: 1024},
		params:        prbs.PRBS31,
		memLatency:    100,
		memCapacity:   1 << 30,
		portDepth:     4,
		watchdog:      orchestrator.DefaultWatchdogCycles,
		maxMismatches: 16,
	}
}

// WithEngine sets the engine. Without one, the benchmark creates a serial
// engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of every component.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithDataWidth sets the word size in bits.
func (b Builder) WithDataWidth(bits int) Builder {
	b.widths.DataWidth = bits
	return b
}

// WithAddressWidth sets the number of word-address bits of the port.
func (b Builder) WithAddressWidth(bits int) Builder {
	b.widths.AddressWidth = bits
	return b
}

// WithBase sets the byte address the window starts at.
func (b Builder) WithBase(base uint64) Builder {
	b.cfg.Base = base
	return b
}

// WithEnd sets the byte address the window ends before.
func (b Builder) WithEnd(end uint64) Builder {
	b.cfg.End = end
	return b
}

// WithLength sets the number of bytes to test. It is raised to one word if
// shorter.
func (b Builder) WithLength(length uint64) Builder {
	b.cfg.Length = length
	return b
}

// WithRandomAddr makes the engines visit pseudorandom addresses of the
// window. It needs alternating engines.
func (b Builder) WithRandomAddr(random bool) Builder {
	b.cfg.RandomAddr = random
	return b
}

// WithRandomData makes the generator write pseudorandom words.
func (b Builder) WithRandomData(random bool) Builder {
	b.cfg.RandomData = random
	return b
}

// WithAllowNonPowerOfTwo accepts windows whose size is not a power of two.
// Their addresses alias, see bist.Config.
func (b Builder) WithAllowNonPowerOfTwo(allow bool) Builder {
	b.cfg.AllowNonPowerOfTwo = allow
	return b
}

// WithAlternating makes every write followed by the read of the same word.
func (b Builder) WithAlternating(alternating bool) Builder {
	b.alternating = alternating
	return b
}

// WithPattern replays a fixed pattern instead of generating the words. The
// window and the random settings are then ignored.
func (b Builder) WithPattern(p pattern.Pattern) Builder {
	b.pattern = p
	return b
}

// WithPRBS sets the LFSR used for random addresses and data.
func (b Builder) WithPRBS(p prbs.Params) Builder {
	b.params = p
	return b
}

// WithMemLatency sets the memory latency in cycles.
func (b Builder) WithMemLatency(cycles int) Builder {
	b.memLatency = cycles
	return b
}

// WithMemCapacity sets the memory size in bytes.
func (b Builder) WithMemCapacity(bytes uint64) Builder {
	b.memCapacity = bytes
	return b
}

// WithPortDepth sets the buffer depth of the engine ports.
func (b Builder) WithPortDepth(n int) Builder {
	b.portDepth = n
	return b
}

// WithWatchdogCycles sets the cycles between the report and the end.
func (b Builder) WithWatchdogCycles(n uint64) Builder {
	b.watchdog = n
	return b
}

// WithInitDelay sets the cycles to wait for the memory to initialize.
func (b Builder) WithInitDelay(n uint64) Builder {
	b.initDelay = n
	return b
}

// WithInitDone sets the signal that tells when the memory is initialized.
// It is polled once the init delay has passed.
func (b Builder) WithInitDone(initDone func() bool) Builder {
	b.initDone = initDone
	return b
}

// WithMaxCycles bounds the run. Zero means no bound.
func (b Builder) WithMaxCycles(n uint64) Builder {
	b.maxCycles = n
	return b
}

// WithMaxMismatches sets how many mismatches the checker keeps for the
// report. All of them are counted.
func (b Builder) WithMaxMismatches(n int) Builder {
	b.maxMismatches = n
	return b
}

// WithRecorder stores the report, and the tasks when tracing, in the
// recorder.
func (b Builder) WithRecorder(r datarecording.DataRecorder) Builder {
	b.recorder = r
	return b
}

// WithTaskTracing stores every request and run as a task in the recorder.
func (b Builder) WithTaskTracing(trace bool) Builder {
	b.traceTasks = trace
	return b
}

// WithMonitor registers the components with a monitor.
func (b Builder) WithMonitor(m *monitoring.Monitor) Builder {
	b.monitor = m
	return b
}

// WithEventLog writes every handled event into the logger.
func (b Builder) WithEventLog(l *log.Logger) Builder {
	b.eventLog = l
	return b
}

// WithMessageLog writes every message moving through the memory-facing ports
// into the logger.
func (b Builder) WithMessageLog(l *log.Logger) Builder {
	b.msgLog = l
	return b
}

// Build checks the settings and creates the benchmark.
func (b Builder) Build(name string) (*Benchmark, error) {
	cfg := b.runConfig()

	if err := b.check(cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	if b.traceTasks && b.recorder == nil {
		panic("task tracing needs a recorder")
	}

	engine := b.engine
	if engine == nil {
		engine = sim.NewSerialEngine()
	}

	bm := &Benchmark{
		name:     name,
		engine:   engine,
		settings: b.settings(cfg),
		recorder: b.recorder,
		monitor:  b.monitor,
	}

	b.buildComponents(bm, name)

	if b.pattern == nil {
		if err := bm.gen.Configure(cfg); err != nil {
			return nil, err
		}

		if err := bm.chk.Configure(cfg); err != nil {
			return nil, err
		}
	}

	b.attachTracers(bm)
	b.attachLoggers(bm)
	b.createTables()
	b.register(bm)

	return bm, nil
}

// runConfig returns the window config with the length raised to one word.
func (b Builder) runConfig() bist.Config {
	cfg := b.cfg
	if bpw := uint64(b.widths.DataWidth / 8); cfg.Length < bpw {
		cfg.Length = bpw
	}

	return cfg
}

func (b Builder) check(cfg bist.Config) error {
	if err := b.widths.Validate(); err != nil {
		return err
	}

	if b.pattern != nil {
		return b.checkPattern()
	}

	if err := cfg.Validate(b.widths); err != nil {
		return err
	}

	if cfg.RandomAddr && !b.alternating {
		return &bist.ConfigError{
			Field: "RandomAddr",
			Err:   bist.ErrRandomAddrNeedsAlternating,
		}
	}

	if cfg.End > b.memCapacity {
		return &bist.ConfigError{
			Field: "End",
			Detail: fmt.Sprintf("end 0x%x, memory capacity 0x%x",
				cfg.End, b.memCapacity),
			Err: bist.ErrAddressOutOfRange,
		}
	}

	return nil
}

func (b Builder) checkPattern() error {
	if len(b.pattern) == 0 {
		return &bist.ConfigError{Field: "Pattern", Err: bist.ErrEmptyRun}
	}

	if err := b.pattern.Validate(b.widths); err != nil {
		return err
	}

	shift := b.widths.AddressShift()
	for _, e := range b.pattern {
		if (e.Address+1)<<shift > b.memCapacity {
			return &bist.ConfigError{
				Field: "Pattern",
				Detail: fmt.Sprintf("word 0x%x, memory capacity 0x%x",
					e.Address, b.memCapacity),
				Err: bist.ErrAddressOutOfRange,
			}
		}
	}

	if !b.alternating {
		for _, addr := range b.pattern.Duplicates() {
			log.Printf("duplicate address 0x%08x in pattern, "+
				"the later write overwrites the earlier one", addr)
		}
	}

	return nil
}

func (b Builder) settings(cfg bist.Config) Settings {
	s := Settings{
		DataWidth:   b.widths.DataWidth,
		Alternating: b.alternating,
	}

	if b.pattern != nil {
		s.PatternEntries = len(b.pattern)
		return s
	}

	s.Base = cfg.Base
	s.End = cfg.End
	s.Length = cfg.Length
	s.RandomAddr = cfg.RandomAddr
	s.RandomData = cfg.RandomData

	return s
}

func (b Builder) buildComponents(bm *Benchmark, name string) {
	bm.memory = idealmemcontroller.MakeBuilder().
		WithEngine(bm.engine).
		WithFreq(b.freq).
		WithLatency(b.memLatency).
		WithNewStorage(b.memCapacity).
		Build(name + ".Mem")
	memPort := bm.memory.TopPort().AsRemote()

	genBuilder := generator.MakeBuilder()
	chkBuilder := checker.MakeBuilder()

	if b.pattern != nil {
		genBuilder = pattern.MakeGeneratorBuilder(b.pattern)
		chkBuilder = pattern.MakeCheckerBuilder(b.pattern)
	}

	bm.gen = genBuilder.
		WithEngine(bm.engine).
		WithFreq(b.freq).
		WithDataWidth(b.widths.DataWidth).
		WithAddressWidth(b.widths.AddressWidth).
		WithPRBS(b.params).
		WithBufSize(b.portDepth).
		WithMemPort(memPort).
		Build(name + ".Gen")

	bm.chk = chkBuilder.
		WithEngine(bm.engine).
		WithFreq(b.freq).
		WithDataWidth(b.widths.DataWidth).
		WithAddressWidth(b.widths.AddressWidth).
		WithPRBS(b.params).
		WithBufSize(b.portDepth).
		WithMemPort(memPort).
		WithMaxMismatches(b.maxMismatches).
		Build(name + ".Chk")

	bm.conn = sim.NewDirectConnection(name+".Conn", bm.engine, b.freq)
	bm.conn.PlugIn(bm.gen.MemPort())
	bm.conn.PlugIn(bm.chk.MemPort())
	bm.conn.PlugIn(bm.memory.TopPort())

	bm.orch = orchestrator.MakeBuilder().
		WithEngine(bm.engine).
		WithFreq(b.freq).
		WithGenerator(bm.gen).
		WithChecker(bm.chk).
		WithAlternating(b.alternating).
		WithWatchdogCycles(b.watchdog).
		WithInitDelay(b.initDelay).
		WithInitDone(b.initDone).
		WithMaxCycles(b.maxCycles).
		Build(name + ".Orch")
}

func (b Builder) attachTracers(bm *Benchmark) {
	reqOut := tracing.KindFilter(tracing.KindReqOut)

	bm.writeLatency = tracing.NewAverageTimeTracer(bm.engine, reqOut)
	tracing.CollectTrace(bm.gen, bm.writeLatency)

	bm.readLatency = tracing.NewAverageTimeTracer(bm.engine, reqOut)
	tracing.CollectTrace(bm.chk, bm.readLatency)

	bm.readSteps = tracing.NewStepCountTracer(reqOut)
	tracing.CollectTrace(bm.chk, bm.readSteps)

	bm.memBusy = tracing.NewBusyTimeTracer(bm.engine, reqOut)
	tracing.CollectTrace(bm.gen, bm.memBusy)
	tracing.CollectTrace(bm.chk, bm.memBusy)

	if !b.traceTasks {
		return
	}

	bm.taskTracer = tracing.NewDBTracer(bm.engine, b.recorder, nil)
	tracing.CollectTrace(bm.gen, bm.taskTracer)
	tracing.CollectTrace(bm.chk, bm.taskTracer)
	tracing.CollectTrace(bm.orch, bm.taskTracer)
}

func (b Builder) attachLoggers(bm *Benchmark) {
	if b.eventLog != nil {
		bm.engine.AcceptHook(sim.NewEventLogger(b.eventLog))
	}

	if b.msgLog == nil {
		return
	}

	h := sim.NewPortMsgLogger(b.msgLog, bm.engine)
	bm.gen.MemPort().AcceptHook(h)
	bm.chk.MemPort().AcceptHook(h)
	bm.memory.TopPort().AcceptHook(h)
}

func (b Builder) createTables() {
	if b.recorder == nil {
		return
	}

	existing := make(map[string]bool)
	for _, t := range b.recorder.ListTables() {
		existing[t] = true
	}

	if !existing[ResultTable] {
		b.recorder.CreateTable(ResultTable, ResultEntry{})
	}

	if !existing[MismatchTable] {
		b.recorder.CreateTable(MismatchTable, MismatchEntry{})
	}
}

func (b Builder) register(bm *Benchmark) {
	if b.monitor == nil {
		return
	}

	b.monitor.RegisterEngine(bm.engine)
	b.monitor.RegisterComponent(bm.memory)
	b.monitor.RegisterComponent(bm.gen)
	b.monitor.RegisterComponent(bm.chk)
	b.monitor.RegisterComponent(bm.orch)
	b.monitor.RegisterBISTEngine(bm.gen)
	b.monitor.RegisterBISTEngine(bm.chk)
}

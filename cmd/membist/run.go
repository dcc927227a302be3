package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sarchlab/membist/bist/benchmark"
	"github.com/sarchlab/membist/bist/orchestrator"
	"github.com/sarchlab/membist/bist/pattern"
	"github.com/sarchlab/membist/datarecording"
	"github.com/sarchlab/membist/monitoring"
	"github.com/sarchlab/membist/sim"
)

// errTestFailed is returned when the checker found errors.
var errTestFailed = errors.New("memory test failed")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one benchmark and print its result.",
	Long: `run builds a memory, a BIST generator and a BIST checker, writes ` +
		`the words, reads them back and prints the tick and error counts. ` +
		`It exits with status 1 if any word was read back wrong.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if unique, _ := cmd.Flags().GetBool("unique-ids"); unique {
			sim.UseParallelIDGenerator()
		}

		builder, err := builderFromFlags(cmd.Flags())
		if err != nil {
			return err
		}

		recorder, err := recorderFromFlags(cmd.Flags())
		if err != nil {
			return err
		}

		if recorder != nil {
			defer recorder.Close()

			tasks, _ := cmd.Flags().GetBool("record-tasks")
			builder = builder.WithRecorder(recorder).WithTaskTracing(tasks)
		}

		builder, closeLogs, err := logsFromFlags(cmd.Flags(), builder)
		if err != nil {
			return err
		}
		defer closeLogs()

		var monitor *monitoring.Monitor
		if on, _ := cmd.Flags().GetBool("monitor"); on {
			port, _ := cmd.Flags().GetInt("monitor-port")
			monitor = monitoring.NewMonitor().WithPortNumber(port)
			builder = builder.WithMonitor(monitor)
		}

		name, _ := cmd.Flags().GetString("name")

		bm, err := builder.Build(name)
		if err != nil {
			return err
		}

		if monitor != nil {
			startMonitor(cmd.Flags(), monitor)
		}

		report, err := bm.Run()
		if err != nil {
			return err
		}

		for _, line := range report.Summary() {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}

		if !report.Passed() {
			return fmt.Errorf("%w: %d errors", errTestFailed,
				report.CheckerErrors)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.String("name", envString("name", "BIST"), "Name of the benchmark")
	f.Int("data-width", envInt("data-width", 32),
		"Word size in bits (8, 16, 32 or 64)")
	f.Int("address-width", envInt("address-width", 32),
		"Number of word-address bits of the memory port")
	f.String("base", envString("base", "0x0"),
		"Byte address the tested window starts at")
	f.String("end", envString("end", "0x100000"),
		"Byte address the tested window ends before")
	f.String("length", envString("length", "1024"),
		"Number of bytes to write and read back")
	f.Bool("random-addr", envBool("random-addr", false),
		"Visit pseudorandom addresses of the window (needs --alternating)")
	f.Bool("random-data", envBool("random-data", false),
		"Write pseudorandom words")
	f.Bool("allow-non-power-of-two", envBool("allow-non-power-of-two", false),
		"Accept windows whose size is not a power of two")
	f.Bool("alternating", envBool("alternating", false),
		"Read every word right after writing it (WRWR instead of WW..RR)")
	f.String("access-pattern", envString("access-pattern", ""),
		"Replay address,data[,mask] lines from a CSV file "+
			"(ignores the window flags)")
	f.Int("mem-latency", envInt("mem-latency", 100),
		"Memory latency in cycles")
	f.String("mem-capacity", envString("mem-capacity", "0x40000000"),
		"Memory size in bytes")
	f.Int("port-depth", envInt("port-depth", 4),
		"Buffer depth of the engine ports")
	f.String("watchdog", envString("watchdog",
		fmt.Sprint(orchestrator.DefaultWatchdogCycles)),
		"Cycles between the report and the end of the simulation")
	f.String("init-delay", envString("init-delay", "0"),
		"Cycles to wait for the memory to initialize")
	f.String("max-cycles", envString("max-cycles", "0"),
		"Give up after this many cycles, 0 for no limit")
	f.Int("max-mismatches", envInt("max-mismatches", 16),
		"Number of mismatches to print")
	f.String("record", envString("record", ""),
		"Record the report into this SQLite file (without .sqlite3)")
	f.String("clickhouse", envString("clickhouse", ""),
		"Record the report into the ClickHouse database at this DSN")
	f.Bool("record-tasks", envBool("record-tasks", false),
		"Also record every request as a task")
	f.Bool("monitor", envBool("monitor", false),
		"Serve the progress of the run over HTTP")
	f.Int("monitor-port", envInt("monitor-port", 0),
		"Port of the monitoring server, 0 for a random one")
	f.Bool("open-browser", envBool("open-browser", false),
		"Open the monitoring page in a browser")
	f.Bool("unique-ids", envBool("unique-ids", false),
		"Use globally unique IDs so several runs can share one database")
	f.String("log-events", envString("log-events", ""),
		"Write every handled event into this file")
	f.String("log-messages", envString("log-messages", ""),
		"Write every message crossing a memory port into this file")
}

func builderFromFlags(f *pflag.FlagSet) (benchmark.Builder, error) {
	b := benchmark.MakeBuilder()

	dataWidth, _ := f.GetInt("data-width")
	addressWidth, _ := f.GetInt("address-width")
	memLatency, _ := f.GetInt("mem-latency")
	portDepth, _ := f.GetInt("port-depth")
	maxMismatches, _ := f.GetInt("max-mismatches")
	randomAddr, _ := f.GetBool("random-addr")
	randomData, _ := f.GetBool("random-data")
	nonPow2, _ := f.GetBool("allow-non-power-of-two")
	alternating, _ := f.GetBool("alternating")

	b = b.WithDataWidth(dataWidth).
		WithAddressWidth(addressWidth).
		WithMemLatency(memLatency).
		WithPortDepth(portDepth).
		WithMaxMismatches(maxMismatches).
		WithRandomAddr(randomAddr).
		WithRandomData(randomData).
		WithAllowNonPowerOfTwo(nonPow2).
		WithAlternating(alternating)

	numbers := []struct {
		flag string
		set  func(benchmark.Builder, uint64) benchmark.Builder
	}{
		{"base", benchmark.Builder.WithBase},
		{"end", benchmark.Builder.WithEnd},
		{"length", benchmark.Builder.WithLength},
		{"mem-capacity", benchmark.Builder.WithMemCapacity},
		{"watchdog", benchmark.Builder.WithWatchdogCycles},
		{"init-delay", benchmark.Builder.WithInitDelay},
		{"max-cycles", benchmark.Builder.WithMaxCycles},
	}

	for _, n := range numbers {
		s, _ := f.GetString(n.flag)

		v, err := parseUint(n.flag, s)
		if err != nil {
			return b, err
		}

		b = n.set(b, v)
	}

	if path, _ := f.GetString("access-pattern"); path != "" {
		p, err := pattern.Load(path)
		if err != nil {
			return b, err
		}

		b = b.WithPattern(p)
	}

	return b, nil
}

func recorderFromFlags(f *pflag.FlagSet) (datarecording.DataRecorder, error) {
	dsn, _ := f.GetString("clickhouse")
	path, _ := f.GetString("record")

	switch {
	case dsn != "" && path != "":
		return nil, errors.New("--record and --clickhouse are exclusive")
	case dsn != "":
		return datarecording.NewClickHouse(dsn)
	case path != "":
		return datarecording.New(path), nil
	}

	if tasks, _ := f.GetBool("record-tasks"); tasks {
		return nil, errors.New("--record-tasks needs --record or --clickhouse")
	}

	return nil, nil
}

// logsFromFlags opens the event and message log files. The returned func
// closes them.
func logsFromFlags(
	f *pflag.FlagSet,
	b benchmark.Builder,
) (benchmark.Builder, func(), error) {
	var files []*os.File

	closeAll := func() {
		for _, file := range files {
			file.Close()
		}
	}

	logs := []struct {
		flag string
		set  func(benchmark.Builder, *log.Logger) benchmark.Builder
	}{
		{"log-events", benchmark.Builder.WithEventLog},
		{"log-messages", benchmark.Builder.WithMessageLog},
	}

	for _, l := range logs {
		path, _ := f.GetString(l.flag)
		if path == "" {
			continue
		}

		file, err := os.Create(path)
		if err != nil {
			closeAll()
			return b, nil, fmt.Errorf("--%s: %w", l.flag, err)
		}

		files = append(files, file)
		b = l.set(b, log.New(file, "", 0))
	}

	return b, closeAll, nil
}

func startMonitor(f *pflag.FlagSet, m *monitoring.Monitor) {
	m.StartServer()

	if open, _ := f.GetBool("open-browser"); open {
		if err := browser.OpenURL(m.URL()); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open a browser: %v\n", err)
		}
	}
}

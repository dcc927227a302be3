package benchmark

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/membist/bist"
	"github.com/sarchlab/membist/bist/pattern"
	"github.com/sarchlab/membist/datarecording"
	"github.com/sarchlab/membist/monitoring"
	"github.com/sarchlab/membist/sim"
	"github.com/sarchlab/membist/tracing"
)

type tickForever struct{}

func (tickForever) Tick() bool { return true }

var _ = Describe("Benchmark", func() {
	var builder Builder

	BeforeEach(func() {
		builder = MakeBuilder().
			WithMemLatency(10).
			WithWatchdogCycles(16)
	})

	run := func(b Builder) RunReport {
		bm, err := b.Build("Bench")
		Expect(err).NotTo(HaveOccurred())

		r, err := bm.Run()
		Expect(err).NotTo(HaveOccurred())

		return r
	}

	It("should pass on a healthy memory with the defaults", func() {
		r := run(builder)

		Expect(r.GeneratorTicks).To(Equal(uint64(256)))
		Expect(r.CheckerTicks).To(Equal(uint64(256)))
		Expect(r.CheckerErrors).To(Equal(uint64(0)))
		Expect(r.MismatchedReads).To(Equal(uint64(0)))
		Expect(r.Passed()).To(BeTrue())
		Expect(r.WriteLatency).To(BeNumerically(">", 0))
		Expect(r.ReadLatency).To(BeNumerically(">", 0))
		Expect(r.MemoryBusyTime).To(BeNumerically(">=", r.WriteLatency))
		Expect(r.Settings).To(Equal(Settings{
			DataWidth: 32, End: 0x100000, Length: 1024,
		}))
	})

	It("should run at least one word", func() {
		r := run(builder.WithDataWidth(64).WithLength(1))

		Expect(r.GeneratorTicks).To(Equal(uint64(1)))
		Expect(r.CheckerTicks).To(Equal(uint64(1)))
		Expect(r.Settings.Length).To(Equal(uint64(8)))
	})

	It("should pass with random addresses when alternating", func() {
		r := run(builder.
			WithEnd(256).
			WithLength(512).
			WithRandomAddr(true).
			WithRandomData(true).
			WithAlternating(true))

		Expect(r.CheckerTicks).To(Equal(uint64(128)))
		Expect(r.CheckerErrors).To(Equal(uint64(0)))
	})

	DescribeTable("should reject hazardous settings",
		func(b func(Builder) Builder, want error) {
			_, err := b(builder).Build("Bench")

			Expect(errors.Is(err, want)).To(BeTrue(), "got %v", err)
		},
		Entry("empty window",
			func(b Builder) Builder { return b.WithBase(0x100).WithEnd(0x100) },
			bist.ErrEmptyWindow),
		Entry("window not a power of two",
			func(b Builder) Builder { return b.WithEnd(0x3000) },
			bist.ErrWindowNotPowerOfTwo),
		Entry("end beyond the address width",
			func(b Builder) Builder { return b.WithAddressWidth(8).WithEnd(0x1000) },
			bist.ErrAddressOutOfRange),
		Entry("end beyond the memory",
			func(b Builder) Builder { return b.WithMemCapacity(0x1000).WithEnd(0x2000) },
			bist.ErrAddressOutOfRange),
		Entry("random addresses one phase after the other",
			func(b Builder) Builder { return b.WithRandomAddr(true) },
			bist.ErrRandomAddrNeedsAlternating),
		Entry("unsupported word size",
			func(b Builder) Builder { return b.WithDataWidth(12) },
			bist.ErrInvalidWidths),
		Entry("empty pattern",
			func(b Builder) Builder { return b.WithPattern(pattern.Pattern{}) },
			bist.ErrEmptyRun),
		Entry("pattern data wider than a word",
			func(b Builder) Builder {
				return b.WithDataWidth(8).
					WithPattern(pattern.Pattern{{Address: 0, Data: 0x100}})
			},
			pattern.ErrOutOfRange),
		Entry("pattern beyond the memory",
			func(b Builder) Builder {
				return b.WithMemCapacity(0x100).
					WithPattern(pattern.Pattern{{Address: 0x40, Data: 1}})
			},
			bist.ErrAddressOutOfRange),
	)

	It("should accept a window that is not a power of two when asked", func() {
		r := run(builder.WithEnd(0x3000).WithAllowNonPowerOfTwo(true))

		Expect(r.CheckerTicks).To(Equal(uint64(256)))
	})

	Context("with a pattern that writes an address twice", func() {
		var p pattern.Pattern

		BeforeEach(func() {
			p = pattern.Pattern{
				{Address: 0, Data: 1},
				{Address: 0, Data: 2},
				{Address: 1, Data: 3},
			}
		})

		It("should see the overwrite when writing first", func() {
			r := run(builder.WithPattern(p))

			Expect(r.CheckerErrors).To(Equal(uint64(1)))
			Expect(r.MismatchedReads).To(Equal(uint64(1)))
			Expect(r.Settings.PatternEntries).To(Equal(3))
			Expect(r.Mismatches).To(HaveLen(1))
			Expect(r.Mismatches[0].Expected).To(Equal(uint64(1)))
			Expect(r.Mismatches[0].Actual).To(Equal(uint64(2)))
		})

		It("should not when alternating", func() {
			r := run(builder.WithPattern(p).WithAlternating(true))

			Expect(r.CheckerErrors).To(Equal(uint64(0)))
			Expect(r.CheckerTicks).To(Equal(uint64(3)))
		})
	})

	It("should summarize the mismatches it did not keep", func() {
		p := pattern.Pattern{
			{Address: 0, Data: 1},
			{Address: 1, Data: 1},
			{Address: 0, Data: 2},
			{Address: 1, Data: 2},
		}

		r := run(builder.WithPattern(p).WithMaxMismatches(1))
		lines := r.Summary()

		Expect(lines[:3]).To(Equal(r.Lines()))
		Expect(lines).To(ContainElement(
			"mismatch #0 at 0x00000000: expected 0x1, got 0x2"))
		Expect(lines[len(lines)-1]).To(Equal("1 more mismatches not shown"))
	})

	It("should run once", func() {
		bm, err := builder.WithLength(4).Build("Bench")
		Expect(err).NotTo(HaveOccurred())

		_, err = bm.Run()
		Expect(err).NotTo(HaveOccurred())

		_, err = bm.Run()
		Expect(err).To(MatchError(ErrAlreadyRun))
	})

	It("should give up after the cycle limit", func() {
		bm, err := builder.WithMemLatency(100).WithMaxCycles(20).Build("Bench")
		Expect(err).NotTo(HaveOccurred())

		_, err = bm.Run()

		Expect(errors.Is(err, ErrTimedOut)).To(BeTrue())
	})

	It("should end the run while another component keeps ticking", func() {
		engine := sim.NewSerialEngine()
		busy := sim.NewTickingComponent("Busy", engine, 1*sim.GHz,
			tickForever{})
		busy.TickLater()

		bm, err := builder.WithEngine(engine).WithWatchdogCycles(100).
			Build("Bench")
		Expect(err).NotTo(HaveOccurred())

		done := make(chan error, 1)
		go func() {
			_, err := bm.Run()
			done <- err
		}()

		Eventually(done, "10s").Should(Receive(BeNil()))
		Expect(bm.Orchestrator().Finished()).To(BeTrue())
	})

	It("should give up while another component keeps ticking", func() {
		engine := sim.NewSerialEngine()
		busy := sim.NewTickingComponent("Busy", engine, 1*sim.GHz,
			tickForever{})
		busy.TickLater()

		bm, err := builder.WithEngine(engine).WithMaxCycles(20).Build("Bench")
		Expect(err).NotTo(HaveOccurred())

		done := make(chan error, 1)
		go func() {
			_, err := bm.Run()
			done <- err
		}()

		Eventually(done, "10s").Should(Receive(MatchError(ErrTimedOut)))
	})

	It("should wait for the memory to report it is initialized", func() {
		polls := 0
		r := run(builder.WithInitDone(func() bool {
			polls++
			return polls > 50
		}))

		Expect(polls).To(BeNumerically(">", 50))
		Expect(r.CheckerErrors).To(Equal(uint64(0)))
		Expect(r.TotalCycles).To(BeNumerically(">", 50))
	})

	It("should record the report, the mismatches and the tasks", func() {
		path := filepath.Join(GinkgoT().TempDir(), "bench")
		recorder := datarecording.New(path)

		p := pattern.Pattern{
			{Address: 0, Data: 1},
			{Address: 0, Data: 2},
			{Address: 1, Data: 3},
			{Address: 2, Data: 4},
		}
		run(builder.
			WithPattern(p).
			WithRecorder(recorder).
			WithTaskTracing(true))
		Expect(recorder.Close()).To(Succeed())

		reader, err := datarecording.NewReader(path + ".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		defer reader.Close()

		reader.MapTable(ResultTable, ResultEntry{})
		reader.MapTable(MismatchTable, MismatchEntry{})
		reader.MapTable(tracing.TaskTable, tracing.TaskEntry{})

		ctx := context.Background()

		results, _, err := reader.Query(ctx, ResultTable,
			datarecording.QueryParams{})
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(1))

		result := results[0].(*ResultEntry)
		Expect(result.Benchmark).To(Equal("Bench"))
		Expect(result.CheckerErrors).To(Equal(uint64(1)))
		Expect(result.CheckerTicks).To(Equal(uint64(4)))
		Expect(result.PatternEntries).To(Equal(4))
		Expect(result.Passed).To(BeFalse())

		mismatches, _, err := reader.Query(ctx, MismatchTable,
			datarecording.QueryParams{})
		Expect(err).NotTo(HaveOccurred())
		Expect(mismatches).To(Equal([]any{&MismatchEntry{
			Benchmark: "Bench", Index: 0, Address: 0, Expected: 1, Actual: 2,
		}}))

		_, requests, err := reader.Query(ctx, tracing.TaskTable,
			datarecording.QueryParams{
				Where: "Kind = ?",
				Args:  []any{"req_out"},
				Limit: 1,
			})
		Expect(err).NotTo(HaveOccurred())
		Expect(requests).To(Equal(8))
	})

	It("should show its engines to a monitor", func() {
		m := monitoring.NewMonitor()

		bm, err := builder.WithLength(16).WithMonitor(m).Build("Bench")
		Expect(err).NotTo(HaveOccurred())

		_, err = bm.Run()
		Expect(err).NotTo(HaveOccurred())

		get := func(url string) []byte {
			rec := httptest.NewRecorder()
			m.Router().ServeHTTP(rec,
				httptest.NewRequest(http.MethodGet, url, nil))

			return rec.Body.Bytes()
		}

		var engines []struct {
			Name      string `json:"name"`
			Completed uint64 `json:"completed"`
			Done      bool   `json:"done"`
		}
		Expect(json.Unmarshal(get("/api/bist/status"), &engines)).To(Succeed())
		Expect(engines).To(HaveLen(2))
		Expect(engines[0].Name).To(Equal("Bench.Gen"))
		Expect(engines[0].Completed).To(Equal(uint64(4)))
		Expect(engines[1].Name).To(Equal("Bench.Chk"))
		Expect(engines[1].Done).To(BeTrue())

		Expect(string(get("/api/progress"))).To(Equal("[]"))
	})

	It("should log events and port messages", func() {
		events := new(bytes.Buffer)
		msgs := new(bytes.Buffer)

		run(builder.
			WithLength(16).
			WithEventLog(log.New(events, "", 0)).
			WithMessageLog(log.New(msgs, "", 0)))

		Expect(events.String()).To(ContainSubstring("Bench.Orch"))
		Expect(msgs.String()).To(ContainSubstring(
			"Bench.Gen.MemPort,Port Msg Send"))
		Expect(msgs.String()).To(ContainSubstring(
			"Bench.Chk.MemPort,Port Msg Recv"))
		Expect(msgs.String()).To(ContainSubstring("Bench.Mem.TopPort"))
	})
})

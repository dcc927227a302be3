package generator

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/membist/bist"
	"github.com/sarchlab/membist/mem"
	"github.com/sarchlab/membist/mem/idealmemcontroller"
	"github.com/sarchlab/membist/sim"
)

var _ = Describe("Generator with a mocked port", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *sim.SerialEngine
		gen      *Comp
		port     *MockPort
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = sim.NewSerialEngine()
		gen = MakeBuilder().
			WithEngine(engine).
			WithMemPort("Mem.TopPort").
			Build("Gen")

		port = NewMockPort(mockCtrl)
		port.EXPECT().AsRemote().Return(sim.RemotePort("Gen.MemPort")).AnyTimes()
		gen.port = port

		Expect(gen.Configure(bist.Config{Base: 16, End: 16 + 1024, Length: 8})).
			To(Succeed())
		gen.Start()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should not issue before run is set", func() {
		port.EXPECT().RetrieveIncoming().Return(nil).AnyTimes()

		Expect(gen.Tick()).To(BeTrue())
		Expect(gen.Tick()).To(BeFalse())

		Expect(gen.Status().Phase).To(Equal(bist.PhaseActive))
		Expect(gen.Status().Issued).To(Equal(uint64(0)))
	})

	It("should stall without advancing while the port is busy", func() {
		var sent []*mem.WriteReq

		port.EXPECT().RetrieveIncoming().Return(nil).AnyTimes()
		gomock.InOrder(
			port.EXPECT().CanSend().Return(false),
			port.EXPECT().CanSend().Return(true),
		)
		port.EXPECT().Send(gomock.Any()).DoAndReturn(
			func(msg sim.Msg) *sim.SendError {
				sent = append(sent, msg.(*mem.WriteReq))
				return nil
			})

		gen.SetRun(true)
		gen.Tick()

		Expect(sent).To(BeEmpty())
		Expect(gen.Status().RunState.Ticks).To(Equal(uint64(0)))
		Expect(gen.Status().RunState.Index).To(Equal(uint64(0)))

		gen.Tick()

		Expect(sent).To(HaveLen(1))
		Expect(sent[0].Address).To(Equal(uint64(16)))
		Expect(sent[0].Data).To(Equal([]byte{0, 0, 0, 0}))
		Expect(sent[0].Meta().Dst).To(Equal(sim.RemotePort("Mem.TopPort")))
		Expect(gen.Status().RunState.Ticks).To(Equal(uint64(1)))
		Expect(gen.Ready()).To(BeFalse())
	})

	It("should become done one tick after the last acknowledgement", func() {
		var sent []*mem.WriteReq

		port.EXPECT().CanSend().Return(true).AnyTimes()
		port.EXPECT().Send(gomock.Any()).DoAndReturn(
			func(msg sim.Msg) *sim.SendError {
				sent = append(sent, msg.(*mem.WriteReq))
				return nil
			}).Times(2)

		gen.SetRun(true)

		port.EXPECT().RetrieveIncoming().Return(nil).Times(2)
		gen.Tick()
		gen.Tick()
		Expect(sent).To(HaveLen(2))

		gomock.InOrder(
			port.EXPECT().RetrieveIncoming().Return(writeDone(sent[0])),
			port.EXPECT().RetrieveIncoming().Return(writeDone(sent[1])),
			port.EXPECT().RetrieveIncoming().Return(nil),
		)
		gen.Tick()

		Expect(gen.Ready()).To(BeTrue())
		Expect(gen.Done()).To(BeFalse())

		port.EXPECT().RetrieveIncoming().Return(nil)
		gen.Tick()

		Expect(gen.Done()).To(BeTrue())
	})

	It("should panic on an unexpected message", func() {
		port.EXPECT().RetrieveIncoming().Return(
			mem.ReqBuilder{}.WithSrc("X").WithDst("Gen.MemPort").Read(4))

		Expect(func() { gen.Tick() }).To(Panic())
	})
})

func writeDone(req *mem.WriteReq) *mem.WriteDoneRsp {
	return mem.ReplyWriteDone(req)
}

var _ = Describe("Generator with an ideal memory", func() {
	var (
		engine *sim.SerialEngine
		memory *idealmemcontroller.Comp
	)

	build := func(dataWidth int) *Comp {
		engine = sim.NewSerialEngine()
		memory = idealmemcontroller.MakeBuilder().
			WithEngine(engine).
			WithLatency(4).
			WithNewStorage(1 << 20).
			Build("Mem")

		gen := MakeBuilder().
			WithEngine(engine).
			WithDataWidth(dataWidth).
			WithMemPort(memory.TopPort().AsRemote()).
			Build("Gen")

		conn := sim.NewDirectConnection("Conn", engine, 1*sim.GHz)
		conn.PlugIn(gen.MemPort())
		conn.PlugIn(memory.TopPort())

		return gen
	}

	run := func(gen *Comp, cfg bist.Config) {
		Expect(gen.Configure(cfg)).To(Succeed())
		gen.Start()
		gen.SetRun(true)
		Expect(engine.Run()).To(Succeed())
		Expect(gen.Done()).To(BeTrue())
	}

	word := func(gen *Comp, addr uint64) uint64 {
		w := gen.Widths()
		data, err := memory.Storage.Read(addr<<w.AddressShift(), w.BytesPerWord())
		Expect(err).NotTo(HaveOccurred())

		return bist.DecodeWord(data)
	}

	DescribeTable("should write the index of each word",
		func(dataWidth int) {
			gen := build(dataWidth)
			cfg := bist.Config{Base: 16, End: 16 + 0x100000, Length: 64}
			run(gen, cfg)

			w := gen.Widths()
			first := cfg.Base >> w.AddressShift()
			n := cfg.NumWords(w)

			rs, ok := gen.Result()
			Expect(ok).To(BeTrue())
			Expect(rs.Ticks).To(Equal(n))

			for i := uint64(0); i < n; i++ {
				Expect(word(gen, first+i)).To(Equal(i))
			}

			Expect(word(gen, first+n)).To(Equal(uint64(0)))
		},
		Entry("8-bit words", 8),
		Entry("32-bit words", 32),
		Entry("64-bit words", 64),
	)

	It("should write random data without duplicates", func() {
		gen := build(32)
		cfg := bist.Config{Base: 0, End: 1 << 16, Length: 1024, RandomData: true}
		run(gen, cfg)

		seen := make(map[uint64]bool)
		sequence := true

		for i := uint64(1); i < 256; i++ {
			d := word(gen, i)
			Expect(seen).NotTo(HaveKey(d))
			seen[d] = true
			sequence = sequence && d == i
		}

		Expect(sequence).To(BeFalse())
	})

	It("should keep random addresses inside the window", func() {
		gen := build(32)
		cfg := bist.Config{Base: 0x1000, End: 0x1000 + 256, Length: 256,
			RandomAddr: true}
		run(gen, cfg)

		w := gen.Widths()
		n := cfg.NumWords(w)
		first := cfg.Base >> w.AddressShift()
		last := first + cfg.WindowMask()

		for _, base := range memory.Storage.Units() {
			Expect(base).To(BeNumerically("<=", last<<w.AddressShift()))
		}

		for a := first; a <= last; a++ {
			Expect(word(gen, a)).To(BeNumerically("<", n))
		}
	})

	It("should drop acknowledgements of writes sent before a reset", func() {
		gen := build(32)
		cfg := bist.Config{Base: 0, End: 1 << 16, Length: 64}

		Expect(gen.Configure(cfg)).To(Succeed())
		gen.Start()
		gen.SetRun(true)

		restarted := false
		engine.Schedule(sim.NewEventBase(3e-9, eventFunc(func() {
			Expect(gen.Status().Issued).To(BeNumerically(">", 0))
			Expect(gen.Ready()).To(BeFalse())

			gen.Reset()
			Expect(gen.Status().Phase).To(Equal(bist.PhaseIdle))

			gen.Start()
			restarted = true
		})))

		Expect(engine.Run()).To(Succeed())

		Expect(restarted).To(BeTrue())
		Expect(gen.Done()).To(BeTrue())
		Expect(gen.Status().Completed).To(Equal(uint64(16)))
		Expect(gen.Status().RunState.Ticks).To(Equal(uint64(16)))
	})
})

type eventFunc func()

func (f eventFunc) Handle(sim.Event) error {
	f()
	return nil
}

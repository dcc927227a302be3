package mem

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/membist/sim"
)

var _ = Describe("Protocol", func() {
	toMem := ReqBuilder{}.WithSrc("Gen.MemPort").WithDst("Mem.TopPort").
		WithAddress(0x40)

	It("should account the payload in the traffic", func() {
		read := toMem.Read(8)
		write := toMem.Write([]byte{1, 2, 3, 4}, nil)

		Expect(read.GetAddress()).To(Equal(uint64(0x40)))
		Expect(read.GetByteSize()).To(Equal(uint64(8)))
		Expect(read.TrafficBytes).To(Equal(12))
		Expect(write.GetByteSize()).To(Equal(uint64(4)))
		Expect(write.TrafficBytes).To(Equal(16))
		Expect(write.ID).NotTo(Equal(read.ID))
	})

	It("should send replies back the way the request came", func() {
		read := toMem.Read(4)
		write := toMem.Write([]byte{9}, []bool{true})

		data := ReplyData(read, []byte{5, 6, 7, 8})
		done := ReplyWriteDone(write)

		Expect(data.Src).To(Equal(sim.RemotePort("Mem.TopPort")))
		Expect(data.Dst).To(Equal(sim.RemotePort("Gen.MemPort")))
		Expect(data.GetRspTo()).To(Equal(read.ID))
		Expect(data.TrafficBytes).To(Equal(8))
		Expect(done.Dst).To(Equal(sim.RemotePort("Gen.MemPort")))
		Expect(done.GetRspTo()).To(Equal(write.ID))
	})
})

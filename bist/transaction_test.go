package bist

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Word codec", func() {
	It("should lay out words little-endian", func() {
		w := Widths{DataWidth: 32, AddressWidth: 32}

		Expect(EncodeWord(0x11223344, w)).To(Equal([]byte{0x44, 0x33, 0x22, 0x11}))
		Expect(DecodeWord([]byte{0x44, 0x33, 0x22, 0x11})).
			To(Equal(uint64(0x11223344)))
	})

	It("should drop bits above the word", func() {
		w := Widths{DataWidth: 8, AddressWidth: 32}

		Expect(EncodeWord(0x1234, w)).To(Equal([]byte{0x34}))
	})

	It("should expand byte masks", func() {
		w := Widths{DataWidth: 32, AddressWidth: 32}

		Expect(ByteEnables(0, w)).To(BeNil())
		Expect(ByteEnables(0b0101, w)).To(Equal([]bool{true, false, true, false}))
		Expect(MaskBits(0, w)).To(Equal(uint64(0xffffffff)))
		Expect(MaskBits(0b0110, w)).To(Equal(uint64(0x00ffff00)))
	})
})

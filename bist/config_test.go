package bist

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Widths", func() {
	It("should derive the word geometry", func() {
		w := Widths{DataWidth: 32, AddressWidth: 32}

		Expect(w.Validate()).To(Succeed())
		Expect(w.BytesPerWord()).To(Equal(uint64(4)))
		Expect(w.AddressShift()).To(Equal(uint(2)))
		Expect(w.DataMask()).To(Equal(uint64(0xffffffff)))
		Expect(w.ByteAddressLimit()).To(Equal(uint64(1)<<34 - 1))
	})

	It("should handle 64-bit words", func() {
		w := Widths{DataWidth: 64, AddressWidth: 61}

		Expect(w.Validate()).To(Succeed())
		Expect(w.DataMask()).To(Equal(^uint64(0)))
		Expect(w.ByteAddressLimit()).To(Equal(^uint64(0)))
	})

	DescribeTable("should reject unsupported widths",
		func(w Widths) {
			Expect(w.Validate()).To(MatchError(ErrInvalidWidths))
		},
		Entry("odd data width", Widths{DataWidth: 12, AddressWidth: 16}),
		Entry("no address bits", Widths{DataWidth: 8, AddressWidth: 0}),
		Entry("address too wide", Widths{DataWidth: 64, AddressWidth: 62}),
	)
})

var _ = Describe("Config", func() {
	var w Widths

	BeforeEach(func() {
		w = Widths{DataWidth: 32, AddressWidth: 32}
	})

	It("should accept a power-of-two window", func() {
		cfg := Config{Base: 16, End: 16 + 0x100000, Length: 64}

		Expect(cfg.Validate(w)).To(Succeed())
		Expect(cfg.NumWords(w)).To(Equal(uint64(16)))
		Expect(cfg.WindowMask()).To(Equal(uint64(0xfffff)))
	})

	It("should reject an empty window", func() {
		cfg := Config{Base: 64, End: 64, Length: 64}

		err := cfg.Validate(w)

		Expect(err).To(MatchError(ErrEmptyWindow))

		var cfgErr *ConfigError
		Expect(errors.As(err, &cfgErr)).To(BeTrue())
		Expect(cfgErr.Field).To(Equal("End"))
	})

	It("should reject an end beyond the address width", func() {
		w.AddressWidth = 8
		cfg := Config{Base: 0, End: 1 << 11, Length: 4}

		Expect(cfg.Validate(w)).To(MatchError(ErrAddressOutOfRange))
	})

	It("should reject a non-power-of-two window", func() {
		cfg := Config{Base: 0, End: 12, Length: 4}

		Expect(cfg.Validate(w)).To(MatchError(ErrWindowNotPowerOfTwo))
	})

	It("should accept a non-power-of-two window when asked to", func() {
		cfg := Config{Base: 0, End: 12, Length: 4, AllowNonPowerOfTwo: true}

		Expect(cfg.Validate(w)).To(Succeed())
	})

	It("should reject a run shorter than a word", func() {
		cfg := Config{Base: 0, End: 1024, Length: 3}

		Expect(cfg.Validate(w)).To(MatchError(ErrEmptyRun))
	})
})

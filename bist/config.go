package bist

import (
	"log"
	"math/bits"
)

// Widths describes the memory port an engine drives. DataWidth is the word
// size in bits and AddressWidth the number of word-address bits.
type Widths struct {
	DataWidth    int
	AddressWidth int
}

// Validate accepts 8, 16, 32 and 64-bit words and address widths that leave
// room for the byte offset.
func (w Widths) Validate() error {
	switch w.DataWidth {
	case 8, 16, 32, 64:
	default:
		return configErr("DataWidth", ErrInvalidWidths,
			"%d bits, want 8, 16, 32 or 64", w.DataWidth)
	}

	if w.AddressWidth < 1 || w.AddressWidth+int(w.AddressShift()) > 64 {
		return configErr("AddressWidth", ErrInvalidWidths,
			"%d bits", w.AddressWidth)
	}

	return nil
}

// BytesPerWord returns the number of bytes in a word.
func (w Widths) BytesPerWord() uint64 {
	return uint64(w.DataWidth / 8)
}

// AddressShift is log2 of BytesPerWord. A byte address shifted right by it is
// a word address.
func (w Widths) AddressShift() uint {
	return uint(bits.TrailingZeros64(w.BytesPerWord()))
}

// WordAddressMask keeps the bits a word address can hold.
func (w Widths) WordAddressMask() uint64 {
	return lowBits(w.AddressWidth)
}

// ByteAddressLimit is the largest byte address the port can reach.
func (w Widths) ByteAddressLimit() uint64 {
	return lowBits(w.AddressWidth + int(w.AddressShift()))
}

// DataMask keeps the bits a word can hold.
func (w Widths) DataMask() uint64 {
	return lowBits(w.DataWidth)
}

func lowBits(n int) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}

	return (uint64(1) << n) - 1
}

// Config is the setting of one generated run. Base, End and Length are byte
// quantities; a run covers Length >> AddressShift words.
type Config struct {
	Base       uint64
	End        uint64
	Length     uint64
	RandomAddr bool
	RandomData bool

	// AllowNonPowerOfTwo accepts windows whose size is not a power of two.
	// Offsets are then masked with End-Base-1, which is not a contiguous
	// low-bit mask, so addresses alias inside and outside the window.
	AllowNonPowerOfTwo bool
}

// WindowSize returns End - Base.
func (c Config) WindowSize() uint64 {
	return c.End - c.Base
}

// WindowMask returns the mask applied to address offsets.
func (c Config) WindowMask() uint64 {
	return c.End - c.Base - 1
}

// NumWords returns the number of transactions of the run.
func (c Config) NumWords(w Widths) uint64 {
	return c.Length >> w.AddressShift()
}

// Validate checks the config against the port widths.
func (c Config) Validate(w Widths) error {
	if err := w.Validate(); err != nil {
		return err
	}

	if c.End <= c.Base {
		return configErr("End", ErrEmptyWindow,
			"base 0x%x, end 0x%x", c.Base, c.End)
	}

	if c.End > w.ByteAddressLimit() {
		return configErr("End", ErrAddressOutOfRange,
			"end 0x%x, limit 0x%x", c.End, w.ByteAddressLimit())
	}

	if size := c.WindowSize(); size&(size-1) != 0 {
		if !c.AllowNonPowerOfTwo {
			return configErr("End", ErrWindowNotPowerOfTwo,
				"window size 0x%x", size)
		}

		log.Printf("window size 0x%x is not a power of two, "+
			"addresses alias with mask 0x%x", size, c.WindowMask())
	}

	if c.NumWords(w) == 0 {
		return configErr("Length", ErrEmptyRun,
			"%d bytes, word is %d bytes", c.Length, w.BytesPerWord())
	}

	return nil
}

// Package prbs provides the linear-feedback shift registers that generate the
// pseudorandom bit sequences used by the memory self-test engines.
//
// All functions are pure. Two parties that agree on Params and a seed derive
// the same sequence without exchanging any state.
package prbs

import (
	"errors"
	"fmt"
	"math/bits"
)

// ErrInvalidParams is returned when the widths or taps of an LFSR do not fit
// in its register.
var ErrInvalidParams = errors.New("invalid LFSR parameters")

// Params defines an LFSR. Each Step shifts OutWidth new bits into a register
// of max(OutWidth, StateWidth) bits. Every new bit is the XNOR of the register
// bits selected by Taps, so the all-zero register is a valid seed and the
// all-ones register is the lock-up state.
type Params struct {
	OutWidth   int
	StateWidth int
	Taps       uint64
}

// PRBS31 is the x^31 + x^28 + 1 sequence used for addresses and data.
var PRBS31 = Params{OutWidth: 31, StateWidth: 31, Taps: TapMask(27, 30)}

// PRBS23 is the x^23 + x^18 + 1 sequence.
var PRBS23 = Params{OutWidth: 23, StateWidth: 23, Taps: TapMask(17, 22)}

// TapMask builds a tap mask from bit positions.
func TapMask(positions ...int) uint64 {
	var mask uint64

	for _, p := range positions {
		if p < 0 || p >= 64 {
			panic(fmt.Sprintf("tap %d out of range", p))
		}

		mask |= 1 << p
	}

	return mask
}

// Validate checks that the widths are within 1..64 and that every tap is
// inside the register.
func (p Params) Validate() error {
	if p.OutWidth < 1 || p.OutWidth > 64 ||
		p.StateWidth < 1 || p.StateWidth > 64 {
		return fmt.Errorf("%w: widths %d/%d must be within 1..64",
			ErrInvalidParams, p.OutWidth, p.StateWidth)
	}

	if p.Taps == 0 {
		return fmt.Errorf("%w: no taps", ErrInvalidParams)
	}

	if p.Taps&^Mask(p.RegisterWidth()) != 0 {
		return fmt.Errorf("%w: taps 0x%x outside a %d-bit register",
			ErrInvalidParams, p.Taps, p.RegisterWidth())
	}

	return nil
}

// RegisterWidth returns the number of bits the shift register holds while
// stepping.
func (p Params) RegisterWidth() int {
	return max(p.OutWidth, p.StateWidth)
}

// Period returns 2^StateWidth - 1, which is the sequence length when the taps
// form a primitive polynomial.
func (p Params) Period() uint64 {
	return Mask(p.StateWidth)
}

// Mask returns a value with the low n bits set.
func Mask(n int) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}

	return (uint64(1) << n) - 1
}

// Step advances the register once. It returns the next state, which keeps
// the low StateWidth bits, and the output, which keeps the low OutWidth bits.
func Step(state uint64, p Params) (next, out uint64) {
	regMask := Mask(p.RegisterWidth())
	reg := state & Mask(p.StateWidth)

	for i := 0; i < p.OutWidth; i++ {
		newBit := uint64(1 ^ (bits.OnesCount64(reg&p.Taps) & 1))
		reg = ((reg << 1) | newBit) & regMask
	}

	return reg & Mask(p.StateWidth), reg & Mask(p.OutWidth)
}

// Advance applies Step n times from seed. The output after zero steps is 0.
func Advance(seed uint64, p Params, n uint64) (state, out uint64) {
	state = seed & Mask(p.StateWidth)

	for i := uint64(0); i < n; i++ {
		state, out = Step(state, p)
	}

	return state, out
}

// Package pattern replays a fixed list of address and data pairs through the
// BIST generator and checker.
package pattern

import (
	"errors"
	"fmt"

	"github.com/sarchlab/membist/bist"
)

// ErrOutOfRange is returned when an entry does not fit the memory port.
var ErrOutOfRange = errors.New("pattern entry does not fit the port")

// An Access is one word of a pattern. Address is a word address. Mask enables
// the bytes to write, bit i for byte i; zero writes the whole word.
type Access struct {
	Address uint64
	Data    uint64
	Mask    uint64
}

// A Pattern is an ordered list of entries.
type Pattern []Access

// Duplicates returns the addresses that appear more than once, in the order
// of their first appearance.
func (p Pattern) Duplicates() []uint64 {
	count := make(map[uint64]int)
	var order []uint64

	for _, e := range p {
		if count[e.Address] == 0 {
			order = append(order, e.Address)
		}
		count[e.Address]++
	}

	var dups []uint64
	for _, addr := range order {
		if count[addr] > 1 {
			dups = append(dups, addr)
		}
	}

	return dups
}

// Validate checks that every entry fits the port.
func (p Pattern) Validate(w bist.Widths) error {
	if err := w.Validate(); err != nil {
		return err
	}

	byteMask := uint64(1)<<w.BytesPerWord() - 1

	for i, e := range p {
		switch {
		case e.Address > w.WordAddressMask():
			return fmt.Errorf("entry %d: address 0x%x: %w", i, e.Address, ErrOutOfRange)
		case e.Data > w.DataMask():
			return fmt.Errorf("entry %d: data 0x%x: %w", i, e.Data, ErrOutOfRange)
		case e.Mask > byteMask:
			return fmt.Errorf("entry %d: mask 0x%x: %w", i, e.Mask, ErrOutOfRange)
		}
	}

	return nil
}

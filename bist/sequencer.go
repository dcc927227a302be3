package bist

import (
	"github.com/sarchlab/membist/bist/prbs"
)

// Seed is the LFSR seed both roles start from.
const Seed = 0

// AddressAt returns the word address of transaction i.
func AddressAt(cfg Config, w Widths, p prbs.Params, i uint64) uint64 {
	return addressOf(cfg, w, sourceAt(p, i, cfg.RandomAddr))
}

// DataAt returns the data word of transaction i.
func DataAt(cfg Config, w Widths, p prbs.Params, i uint64) uint64 {
	return sourceAt(p, i, cfg.RandomData) & w.DataMask()
}

// TransactionAt returns transaction i of a generated run.
func TransactionAt(cfg Config, w Widths, p prbs.Params, i uint64) Transaction {
	return Transaction{
		Index:   i,
		Address: AddressAt(cfg, w, p, i),
		Data:    DataAt(cfg, w, p, i),
	}
}

func sourceAt(p prbs.Params, i uint64, random bool) uint64 {
	if !random {
		return i & prbs.Mask(p.OutWidth)
	}

	_, out := prbs.Advance(Seed, p, i)

	return out
}

func addressOf(cfg Config, w Widths, v uint64) uint64 {
	base := cfg.Base >> w.AddressShift()
	return (base + (v & cfg.WindowMask())) & w.WordAddressMask()
}

package prbs

// A Source yields one value per transaction index. It runs a counter and an
// LFSR side by side; both advance together and only on Advance, so a stalled
// engine keeps its source where it is.
type Source struct {
	params Params
	seed   uint64

	count uint64
	state uint64
	out   uint64
}

// NewSource creates a source that starts from the given LFSR seed.
func NewSource(p Params, seed uint64) *Source {
	if err := p.Validate(); err != nil {
		panic(err)
	}

	s := &Source{params: p, seed: seed}
	s.Reset()

	return s
}

// Params returns the LFSR parameters of the source.
func (s *Source) Params() Params {
	return s.params
}

// Reset returns the source to index 0.
func (s *Source) Reset() {
	s.count = 0
	s.state = s.seed & Mask(s.params.StateWidth)
	s.out = 0
}

// Advance moves the source to the next index.
func (s *Source) Advance() {
	s.count++
	s.state, s.out = Step(s.state, s.params)
}

// Count returns the number of times the source has advanced since the last
// reset.
func (s *Source) Count() uint64 {
	return s.count
}

// State returns the LFSR register of the current index.
func (s *Source) State() uint64 {
	return s.state
}

// Value returns the value of the current index. The counter wraps at
// 2^OutWidth.
func (s *Source) Value(random bool) uint64 {
	if random {
		return s.out
	}

	return s.count & Mask(s.params.OutWidth)
}

// At returns the value the source has at index k without touching the
// source.
func (s *Source) At(k uint64, random bool) uint64 {
	if !random {
		return k & Mask(s.params.OutWidth)
	}

	_, out := Advance(s.seed, s.params, k)

	return out
}

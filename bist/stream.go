package bist

import (
	"github.com/sarchlab/membist/bist/prbs"
)

// A Stream is the ordered list of transactions of one run.
type Stream interface {
	Len() uint64
	NewCursor() Cursor
}

// A Cursor walks a Stream once. Peek must not be called when Done.
type Cursor interface {
	Index() uint64
	Done() bool
	Peek() Transaction
	Advance()

	// LFSRState returns the states of the address and data registers, or
	// zeros if the stream is not generated.
	LFSRState() (addr, data uint64)
}

// GeneratedStream derives transactions from counters and LFSRs.
type GeneratedStream struct {
	cfg    Config
	widths Widths
	params prbs.Params
}

// NewGeneratedStream creates a stream for a validated config.
func NewGeneratedStream(cfg Config, w Widths, p prbs.Params) *GeneratedStream {
	return &GeneratedStream{cfg: cfg, widths: w, params: p}
}

// Len returns the number of words of the run.
func (s *GeneratedStream) Len() uint64 {
	return s.cfg.NumWords(s.widths)
}

// Config returns the config the stream was created with.
func (s *GeneratedStream) Config() Config {
	return s.cfg
}

// NewCursor returns a cursor at transaction 0.
func (s *GeneratedStream) NewCursor() Cursor {
	return &generatedCursor{
		stream: s,
		addr:   prbs.NewSource(s.params, Seed),
		data:   prbs.NewSource(s.params, Seed),
	}
}

type generatedCursor struct {
	stream *GeneratedStream
	addr   *prbs.Source
	data   *prbs.Source
	index  uint64
}

func (c *generatedCursor) Index() uint64 {
	return c.index
}

func (c *generatedCursor) Done() bool {
	return c.index >= c.stream.Len()
}

func (c *generatedCursor) Peek() Transaction {
	cfg, w := c.stream.cfg, c.stream.widths

	return Transaction{
		Index:   c.index,
		Address: addressOf(cfg, w, c.addr.Value(cfg.RandomAddr)),
		Data:    c.data.Value(cfg.RandomData) & w.DataMask(),
	}
}

func (c *generatedCursor) Advance() {
	c.addr.Advance()
	c.data.Advance()
	c.index++
}

func (c *generatedCursor) LFSRState() (addr, data uint64) {
	return c.addr.State(), c.data.State()
}

package pattern

import (
	"github.com/sarchlab/membist/bist"
)

// Stream replays a pattern.
type Stream struct {
	pattern Pattern
}

// NewStream creates a stream over a copy of the pattern.
func NewStream(p Pattern) *Stream {
	return &Stream{pattern: append(Pattern(nil), p...)}
}

// Len returns the number of entries.
func (s *Stream) Len() uint64 {
	return uint64(len(s.pattern))
}

// NewCursor returns a cursor at the first entry.
func (s *Stream) NewCursor() bist.Cursor {
	return &cursor{pattern: s.pattern}
}

type cursor struct {
	pattern Pattern
	index   uint64
}

func (c *cursor) Index() uint64 {
	return c.index
}

func (c *cursor) Done() bool {
	return c.index >= uint64(len(c.pattern))
}

func (c *cursor) Peek() bist.Transaction {
	e := c.pattern[c.index]

	return bist.Transaction{
		Index:   c.index,
		Address: e.Address,
		Data:    e.Data,
		Mask:    e.Mask,
	}
}

func (c *cursor) Advance() {
	c.index++
}

func (c *cursor) LFSRState() (addr, data uint64) {
	return 0, 0
}

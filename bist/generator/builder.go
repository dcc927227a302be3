package generator

import (
	"github.com/sarchlab/membist/bist"
	"github.com/sarchlab/membist/bist/prbs"
	"github.com/sarchlab/membist/sim"
)

// Builder can build generators.
type Builder struct {
	engine  sim.Engine
	freq    sim.Freq
	widths  bist.Widths
	params  prbs.Params
	bufSize int
	memPort sim.RemotePort
	stream  bist.Stream
}

// MakeBuilder returns a builder with a 32-bit data port, a 32-bit word
// address and the PRBS31 sequence.
func MakeBuilder() Builder {
	return Builder{
		freq:    1 * sim.GHz,
		widths:  bist.Widths{DataWidth: 32, AddressWidth: 32},
		params:  prbs.PRBS31,
		bufSize: 4,
	}
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithDataWidth sets the number of bits of a word.
func (b Builder) WithDataWidth(bits int) Builder {
	b.widths.DataWidth = bits
	return b
}

// WithAddressWidth sets the number of bits of a word address.
func (b Builder) WithAddressWidth(bits int) Builder {
	b.widths.AddressWidth = bits
	return b
}

// WithPRBS sets the LFSR parameters of the address and data sources.
func (b Builder) WithPRBS(p prbs.Params) Builder {
	b.params = p
	return b
}

// WithBufSize sets the buffer size of the memory port.
func (b Builder) WithBufSize(n int) Builder {
	b.bufSize = n
	return b
}

// WithMemPort sets the port that write requests are sent to.
func (b Builder) WithMemPort(remote sim.RemotePort) Builder {
	b.memPort = remote
	return b
}

// WithStream makes the generator replay a fixed stream. Configure is then
// ignored and every run starts from the first transaction of the stream.
func (b Builder) WithStream(s bist.Stream) Builder {
	b.stream = s
	return b
}

// Build creates a generator with the given name.
func (b Builder) Build(name string) *Comp {
	if b.engine == nil {
		panic("engine is not set")
	}

	if err := b.widths.Validate(); err != nil {
		panic(err)
	}

	if err := b.params.Validate(); err != nil {
		panic(err)
	}

	c := &Comp{
		widths:  b.widths,
		memPort: b.memPort,
	}
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)
	c.ctrl = bist.NewControl(name, b.configureFunc(), c.TickLater,
		c.CurrentCycle)

	if b.stream != nil {
		c.ctrl.SetStream(b.stream)
	}

	c.port = sim.NewPort(c, b.bufSize, b.bufSize, name+".MemPort")
	c.AddPort("Mem", c.port)

	c.AddMiddleware(&writeMiddleware{Comp: c})

	return c
}

func (b Builder) configureFunc() func(bist.Config) (bist.Stream, error) {
	if b.stream != nil {
		fixed := b.stream

		return func(bist.Config) (bist.Stream, error) {
			return fixed, nil
		}
	}

	w, p := b.widths, b.params

	return func(cfg bist.Config) (bist.Stream, error) {
		if err := cfg.Validate(w); err != nil {
			return nil, err
		}

		return bist.NewGeneratedStream(cfg, w, p), nil
	}
}

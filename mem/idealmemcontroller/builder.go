package idealmemcontroller

import (
	"github.com/sarchlab/membist/mem"
	"github.com/sarchlab/membist/sim"
)

// Builder can build ideal memory controllers.
type Builder struct {
	engine      sim.Engine
	freq        sim.Freq
	latency     int
	width       int
	capacity    uint64
	topBufSize  int
	maxInflight int
	storage     *mem.Storage
}

// MakeBuilder returns a new Builder
func MakeBuilder() Builder {
	return Builder{
		freq:        1 * sim.GHz,
		latency:     100,
		width:       1,
		capacity:    1 << 30,
		topBufSize:  16,
		maxInflight: 64,
	}
}

// WithEngine sets the engine of the memory controller
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the memory controller
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithLatency sets the number of cycles between taking a request and
// responding to it.
func (b Builder) WithLatency(latency int) Builder {
	b.latency = latency
	return b
}

// WithWidth sets the number of requests that can be taken and the number of
// responses that can be sent in a cycle.
func (b Builder) WithWidth(width int) Builder {
	b.width = width
	return b
}

// WithNewStorage sets the capacity of the storage to create.
func (b Builder) WithNewStorage(capacity uint64) Builder {
	b.capacity = capacity
	return b
}

// WithStorage sets an existing storage, which wins over WithNewStorage.
func (b Builder) WithStorage(storage *mem.Storage) Builder {
	b.storage = storage
	return b
}

// WithTopBufSize sets the size of the incoming and outgoing buffers of the
// top port.
func (b Builder) WithTopBufSize(size int) Builder {
	b.topBufSize = size
	return b
}

// WithMaxInflight sets the number of requests that can be in the pipeline.
func (b Builder) WithMaxInflight(n int) Builder {
	b.maxInflight = n
	return b
}

// Build builds a new Comp
func (b Builder) Build(name string) *Comp {
	if b.engine == nil {
		panic("engine is not set")
	}

	if b.width <= 0 || b.maxInflight <= 0 || b.latency < 0 {
		panic("width and max inflight must be positive, latency non-negative")
	}

	c := &Comp{
		Latency:     b.latency,
		width:       b.width,
		maxInflight: b.maxInflight,
	}
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	c.Storage = b.storage
	if c.Storage == nil {
		c.Storage = mem.NewStorage(b.capacity)
	}

	c.topPort = sim.NewPort(c, b.topBufSize, b.topBufSize, name+".TopPort")
	c.AddPort("Top", c.topPort)

	c.AddMiddleware(&memMiddleware{Comp: c})

	return c
}

// Package idealmemcontroller provides a memory controller that serves
// requests strictly in arrival order after a fixed latency.
package idealmemcontroller

import (
	"github.com/sarchlab/membist/mem"
	"github.com/sarchlab/membist/sim"
)

type transaction struct {
	req        mem.AccessReq
	readyCycle uint64
}

// Comp is an ideal memory controller. Every request spends Latency cycles in
// a pipeline and responses leave in the order the requests arrived, which
// makes a read observe every write that arrived before it.
type Comp struct {
	*sim.TickingComponent
	sim.MiddlewareHolder

	topPort     sim.Port
	Storage     *mem.Storage
	Latency     int
	width       int
	maxInflight int

	inflight []*transaction
}

// Tick updates the state of the memory controller.
func (c *Comp) Tick() bool {
	return c.MiddlewareHolder.Tick()
}

// TopPort returns the port that takes memory requests.
func (c *Comp) TopPort() sim.Port {
	return c.topPort
}

// NumInflight returns the number of requests that are not responded yet.
func (c *Comp) NumInflight() int {
	return len(c.inflight)
}

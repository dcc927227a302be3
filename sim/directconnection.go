package sim

import "log"

// DirectConnection forwards messages between the ports plugged into it. A
// message sent in a cycle reaches the destination buffer at the end of the
// same cycle, so the receiver observes it in the next cycle.
type DirectConnection struct {
	*TickingComponent

	ports      []Port
	byName     map[RemotePort]Port
	nextPortID int
}

// NewDirectConnection creates a new DirectConnection object
func NewDirectConnection(
	name string,
	engine Engine,
	freq Freq,
) *DirectConnection {
	c := new(DirectConnection)
	c.TickingComponent = NewSecondaryTickingComponent(name, engine, freq, c)
	c.byName = make(map[RemotePort]Port)

	return c
}

// PlugIn marks the port connects to this DirectConnection.
func (c *DirectConnection) PlugIn(port Port) {
	c.Lock()
	defer c.Unlock()

	if _, found := c.byName[port.AsRemote()]; found {
		log.Panicf("port %s is already plugged into %s",
			port.Name(), c.Name())
	}

	c.ports = append(c.ports, port)
	c.byName[port.AsRemote()] = port

	port.SetConnection(c)
}

// NotifyAvailable wakes the connection up, since the port that just freed an
// incoming slot may be the blocking destination.
func (c *DirectConnection) NotifyAvailable(_ Port) {
	c.TickNow()
}

// NotifySend wakes the connection up to forward the new message.
func (c *DirectConnection) NotifySend() {
	c.TickNow()
}

// Tick moves messages from outgoing buffers into the destinations' incoming
// buffers, starting from a different port every cycle.
func (c *DirectConnection) Tick() bool {
	if len(c.ports) == 0 {
		return false
	}

	madeProgress := false
	for i := 0; i < len(c.ports); i++ {
		port := c.ports[(i+c.nextPortID)%len(c.ports)]
		madeProgress = c.forwardMany(port) || madeProgress
	}

	c.nextPortID = (c.nextPortID + 1) % len(c.ports)

	return madeProgress
}

func (c *DirectConnection) forwardMany(src Port) bool {
	madeProgress := false

	for {
		msg := src.PeekOutgoing()
		if msg == nil {
			return madeProgress
		}

		dst, found := c.byName[msg.Meta().Dst]
		if !found {
			log.Panicf("connection %s has no port %s",
				c.Name(), msg.Meta().Dst)
		}

		if err := dst.Deliver(msg); err != nil {
			return madeProgress
		}

		src.RetrieveOutgoing()
		c.InvokeHook(HookCtx{Domain: c, Pos: HookPosConnDeliver, Item: msg})

		madeProgress = true
	}
}

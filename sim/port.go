package sim

import (
	"log"
	"sync"
)

// HookPosPortMsgSend marks when a message is accepted by the outgoing buffer
// of a port.
var HookPosPortMsgSend = &HookPos{Name: "Port Msg Send"}

// HookPosPortMsgRecvd marks when a message lands in the incoming buffer of a
// port.
var HookPosPortMsgRecvd = &HookPos{Name: "Port Msg Recv"}

// HookPosPortMsgRetrieve marks when the owner takes a message out of the
// incoming buffer.
var HookPosPortMsgRetrieve = &HookPos{Name: "Port Msg Retrieve"}

// A Port is owned by a component and is used to plugin connections
type Port interface {
	Named
	Hookable

	AsRemote() RemotePort

	SetConnection(conn Connection)
	Component() Component

	// For connection
	Deliver(msg Msg) *SendError
	NotifyAvailable()
	RetrieveOutgoing() Msg
	PeekOutgoing() Msg

	// For component
	CanSend() bool
	Send(msg Msg) *SendError
	RetrieveIncoming() Msg
	PeekIncoming() Msg
	NumIncoming() int
}

type defaultPort struct {
	HookableBase

	lock sync.Mutex
	name string
	comp Component
	conn Connection

	incoming Buffer
	outgoing Buffer
}

// NewPort creates a port with bounded incoming and outgoing buffers.
func NewPort(
	comp Component,
	incomingCap, outgoingCap int,
	name string,
) Port {
	p := new(defaultPort)
	p.comp = comp
	p.name = name
	p.incoming = NewBuffer(name+".Incoming", incomingCap)
	p.outgoing = NewBuffer(name+".Outgoing", outgoingCap)

	return p
}

func (p *defaultPort) Name() string {
	return p.name
}

func (p *defaultPort) AsRemote() RemotePort {
	return RemotePort(p.name)
}

func (p *defaultPort) Component() Component {
	return p.comp
}

func (p *defaultPort) SetConnection(conn Connection) {
	if p.conn != nil {
		log.Panicf("port %s is already connected to %s, cannot connect to %s",
			p.name, p.conn.Name(), conn.Name())
	}

	p.conn = conn
}

func (p *defaultPort) CanSend() bool {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.outgoing.CanPush()
}

// Send places the message in the outgoing buffer. It returns a SendError
// without side effects if the buffer is full.
func (p *defaultPort) Send(msg Msg) *SendError {
	p.mustBeValid(msg)

	p.lock.Lock()
	if !p.outgoing.CanPush() {
		p.lock.Unlock()
		return NewSendError()
	}

	wasEmpty := p.outgoing.Size() == 0
	p.outgoing.Push(msg)
	p.lock.Unlock()

	p.InvokeHook(HookCtx{Domain: p, Pos: HookPosPortMsgSend, Item: msg})

	if wasEmpty && p.conn != nil {
		p.conn.NotifySend()
	}

	return nil
}

func (p *defaultPort) Deliver(msg Msg) *SendError {
	p.lock.Lock()
	if !p.incoming.CanPush() {
		p.lock.Unlock()
		return NewSendError()
	}

	wasEmpty := p.incoming.Size() == 0
	p.incoming.Push(msg)
	p.lock.Unlock()

	p.InvokeHook(HookCtx{Domain: p, Pos: HookPosPortMsgRecvd, Item: msg})

	if wasEmpty && p.comp != nil {
		p.comp.NotifyRecv(p)
	}

	return nil
}

func (p *defaultPort) RetrieveIncoming() Msg {
	msg, wasFull := p.pop(p.incoming)
	if msg == nil {
		return nil
	}

	p.InvokeHook(HookCtx{Domain: p, Pos: HookPosPortMsgRetrieve, Item: msg})

	if wasFull && p.conn != nil {
		p.conn.NotifyAvailable(p)
	}

	return msg
}

func (p *defaultPort) RetrieveOutgoing() Msg {
	msg, wasFull := p.pop(p.outgoing)

	if wasFull && p.comp != nil {
		p.comp.NotifyPortFree(p)
	}

	return msg
}

// pop takes the oldest message of buf and tells whether buf was full before.
func (p *defaultPort) pop(buf Buffer) (msg Msg, wasFull bool) {
	p.lock.Lock()
	defer p.lock.Unlock()

	wasFull = !buf.CanPush()

	item := buf.Pop()
	if item == nil {
		return nil, false
	}

	return item.(Msg), wasFull
}

func (p *defaultPort) PeekIncoming() Msg { return p.peek(p.incoming) }
func (p *defaultPort) PeekOutgoing() Msg { return p.peek(p.outgoing) }

func (p *defaultPort) peek(buf Buffer) Msg {
	p.lock.Lock()
	defer p.lock.Unlock()

	msg, _ := buf.Peek().(Msg)

	return msg
}

func (p *defaultPort) NumIncoming() int {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.incoming.Size()
}

// NotifyAvailable is called by the connection when the peer can take
// messages again.
func (p *defaultPort) NotifyAvailable() {
	if p.comp != nil {
		p.comp.NotifyPortFree(p)
	}
}

func (p *defaultPort) mustBeValid(msg Msg) {
	meta := msg.Meta()

	switch {
	case meta.Src != p.AsRemote():
		log.Panicf("port %s is not the src of msg %s", p.name, meta.ID)
	case meta.Dst == "":
		log.Panicf("msg %s has no dst", meta.ID)
	case meta.Src == meta.Dst:
		log.Panicf("msg %s is sent back to its src", meta.ID)
	}
}

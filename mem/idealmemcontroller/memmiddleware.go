package idealmemcontroller

import (
	"log"
	"reflect"

	"github.com/sarchlab/membist/mem"
	"github.com/sarchlab/membist/tracing"
)

type memMiddleware struct {
	*Comp
}

func (m *memMiddleware) Tick() bool {
	madeProgress := false

	madeProgress = m.respond() || madeProgress
	madeProgress = m.takeNewReqs() || madeProgress

	// Requests waiting out their latency need the clock to keep running.
	return madeProgress || len(m.inflight) > 0
}

func (m *memMiddleware) takeNewReqs() bool {
	madeProgress := false

	for i := 0; i < m.width; i++ {
		if len(m.inflight) >= m.maxInflight {
			break
		}

		msg := m.topPort.RetrieveIncoming()
		if msg == nil {
			break
		}

		req, ok := msg.(mem.AccessReq)
		if !ok {
			log.Panicf("cannot handle request of type %s", reflect.TypeOf(msg))
		}

		tracing.TraceReqReceive(req, m.Comp)

		m.inflight = append(m.inflight, &transaction{
			req:        req,
			readyCycle: m.CurrentCycle() + uint64(m.Latency),
		})
		madeProgress = true
	}

	return madeProgress
}

func (m *memMiddleware) respond() bool {
	madeProgress := false

	for i := 0; i < m.width; i++ {
		if len(m.inflight) == 0 {
			break
		}

		head := m.inflight[0]
		if head.readyCycle > m.CurrentCycle() || !m.topPort.CanSend() {
			break
		}

		switch req := head.req.(type) {
		case *mem.ReadReq:
			m.finishRead(req)
		case *mem.WriteReq:
			m.finishWrite(req)
		default:
			log.Panicf("cannot handle request of type %s", reflect.TypeOf(req))
		}

		tracing.TraceReqComplete(head.req, m.Comp)
		m.inflight = m.inflight[1:]
		madeProgress = true
	}

	return madeProgress
}

func (m *memMiddleware) finishRead(req *mem.ReadReq) {
	data, err := m.Storage.Read(req.Address, req.AccessByteSize)
	if err != nil {
		log.Panic(err)
	}

	rsp := mem.ReplyData(req, data)

	if err := m.topPort.Send(rsp); err != nil {
		log.Panic("top port refused a response after CanSend")
	}
}

func (m *memMiddleware) finishWrite(req *mem.WriteReq) {
	err := m.Storage.WriteMasked(req.Address, req.Data, req.DirtyMask)
	if err != nil {
		log.Panic(err)
	}

	rsp := mem.ReplyWriteDone(req)

	if err := m.topPort.Send(rsp); err != nil {
		log.Panic("top port refused a response after CanSend")
	}
}

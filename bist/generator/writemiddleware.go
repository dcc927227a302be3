package generator

import (
	"log"
	"reflect"

	"github.com/sarchlab/membist/bist"
	"github.com/sarchlab/membist/mem"
	"github.com/sarchlab/membist/sim"
	"github.com/sarchlab/membist/tracing"
)

type writeMiddleware struct {
	*Comp
}

func (m *writeMiddleware) Tick() bool {
	madeProgress := false

	madeProgress = m.advance() || madeProgress
	madeProgress = m.collect() || madeProgress
	madeProgress = m.issue() || madeProgress

	return madeProgress
}

func (m *writeMiddleware) advance() bool {
	before := m.ctrl.Phase()

	if !m.ctrl.Advance() {
		return false
	}

	switch after := m.ctrl.Phase(); {
	case before == bist.PhaseIdle && after == bist.PhaseActive:
		m.runID = sim.GetIDGenerator().Generate()
		tracing.StartTask(m.runID, "", m.Comp, tracing.KindRun, "write", nil)
	case after == bist.PhaseDone:
		tracing.EndTask(m.runID, m.Comp)
	}

	return true
}

func (m *writeMiddleware) collect() bool {
	madeProgress := false

	for {
		msg := m.port.RetrieveIncoming()
		if msg == nil {
			return madeProgress
		}

		madeProgress = true

		rsp, ok := msg.(*mem.WriteDoneRsp)
		if !ok {
			log.Panicf("cannot handle message of type %s", reflect.TypeOf(msg))
		}

		if !m.ctrl.Match(rsp.RespondTo) {
			continue
		}

		tracing.TraceRspTaken(rsp, m.Comp)
		m.ctrl.Completed()
	}
}

func (m *writeMiddleware) issue() bool {
	if !m.ctrl.CanIssue() || !m.port.CanSend() {
		return false
	}

	t := m.ctrl.Next()

	req := mem.ReqBuilder{}.
		WithSrc(m.port.AsRemote()).
		WithDst(m.memPort).
		WithAddress(t.Address << m.widths.AddressShift()).
		Write(bist.EncodeWord(t.Data, m.widths),
			bist.ByteEnables(t.Mask, m.widths))

	if err := m.port.Send(req); err != nil {
		return false
	}

	tracing.TraceReqInitiate(req, m.Comp, m.runID)
	m.ctrl.Issued(req.ID)
	m.ctrl.CountTick()

	return true
}

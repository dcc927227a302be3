package checker

import (
	"log"
	"reflect"

	"github.com/sarchlab/membist/bist"
	"github.com/sarchlab/membist/mem"
	"github.com/sarchlab/membist/sim"
	"github.com/sarchlab/membist/tracing"
)

type readMiddleware struct {
	*Comp
}

func (m *readMiddleware) Tick() bool {
	madeProgress := false

	madeProgress = m.advance() || madeProgress
	madeProgress = m.compare() || madeProgress
	madeProgress = m.issue() || madeProgress

	return madeProgress
}

func (m *readMiddleware) advance() bool {
	before := m.ctrl.Phase()

	if !m.ctrl.Advance() {
		return false
	}

	switch after := m.ctrl.Phase(); {
	case before == bist.PhaseIdle && after == bist.PhaseActive:
		m.runID = sim.GetIDGenerator().Generate()
		m.mismatches = nil
		tracing.StartTask(m.runID, "", m.Comp, tracing.KindRun, "read", nil)
	case after == bist.PhaseDone:
		tracing.EndTask(m.runID, m.Comp)
	}

	return true
}

// compare takes every response that arrived. Responses are always accepted
// and must come in the order of the reads.
func (m *readMiddleware) compare() bool {
	madeProgress := false

	for {
		msg := m.port.RetrieveIncoming()
		if msg == nil {
			return madeProgress
		}

		madeProgress = true

		rsp, ok := msg.(*mem.DataReadyRsp)
		if !ok {
			log.Panicf("cannot handle message of type %s", reflect.TypeOf(msg))
		}

		if !m.ctrl.Match(rsp.RespondTo) {
			continue
		}

		m.check(rsp)
		tracing.TraceRspTaken(rsp, m.Comp)
		m.ctrl.CountTick()
		m.ctrl.Completed()
	}
}

func (m *readMiddleware) check(rsp *mem.DataReadyRsp) {
	t := m.ctrl.Expected()
	mask := bist.MaskBits(t.Mask, m.widths)
	actual := bist.DecodeWord(rsp.Data) & m.widths.DataMask()

	if actual&mask == t.Data&mask {
		return
	}

	m.ctrl.CountError()
	tracing.TraceRspStep(rsp, m.Comp, tracing.StepMismatch)

	if len(m.mismatches) < m.maxMismatches {
		m.mismatches = append(m.mismatches, Mismatch{
			Index:    t.Index,
			Address:  t.Address,
			Expected: t.Data,
			Actual:   actual,
		})
	}
}

func (m *readMiddleware) issue() bool {
	if !m.ctrl.CanIssue() || !m.port.CanSend() {
		return false
	}

	t := m.ctrl.Next()

	req := mem.ReqBuilder{}.
		WithSrc(m.port.AsRemote()).
		WithDst(m.memPort).
		WithAddress(t.Address << m.widths.AddressShift()).
		Read(m.widths.BytesPerWord())

	if err := m.port.Send(req); err != nil {
		return false
	}

	tracing.TraceReqInitiate(req, m.Comp, m.runID)
	m.ctrl.Issued(req.ID)

	return true
}

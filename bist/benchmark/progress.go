package benchmark

import (
	"github.com/sarchlab/membist/monitoring"
	"github.com/sarchlab/membist/sim"
)

// progressHook copies the counts of the engines into progress bars after
// every event.
type progressHook struct {
	monitor *monitoring.Monitor
	bars    []*monitoring.ProgressBar
	engines []monitoring.BISTEngine
}

func (b *Benchmark) trackProgress() *progressHook {
	h := &progressHook{monitor: b.monitor}
	if b.monitor == nil {
		return h
	}

	for _, e := range []monitoring.BISTEngine{b.gen, b.chk} {
		h.engines = append(h.engines, e)
		h.bars = append(h.bars,
			b.monitor.CreateProgressBar(e.Name(), e.Status().Length))
	}

	b.engine.AcceptHook(h)

	return h
}

func (h *progressHook) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosAfterEvent {
		return
	}

	for i, e := range h.engines {
		s := e.Status()
		h.bars[i].Set(s.Issued-s.Completed, s.Completed)
	}
}

func (h *progressHook) complete() {
	for _, bar := range h.bars {
		h.monitor.CompleteProgressBar(bar)
	}

	h.bars = nil
	h.engines = nil
}

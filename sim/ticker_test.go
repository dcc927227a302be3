package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type countdownTicker struct {
	left  int
	ticks int
}

func (t *countdownTicker) Tick() bool {
	t.ticks++
	if t.left == 0 {
		return false
	}

	t.left--

	return true
}

var _ = Describe("TickingComponent", func() {
	var (
		engine *SerialEngine
		ticker *countdownTicker
		comp   *TickingComponent
	)

	BeforeEach(func() {
		engine = NewSerialEngine()
		ticker = &countdownTicker{left: 3}
		comp = NewTickingComponent("Comp", engine, 1*GHz, ticker)
	})

	It("should keep ticking while making progress", func() {
		comp.TickLater()

		Expect(engine.Run()).To(Succeed())
		Expect(ticker.ticks).To(Equal(4))
		Expect(comp.CurrentCycle()).To(Equal(uint64(4)))
	})

	It("should not double schedule the same cycle", func() {
		ticker.left = 0
		comp.TickNow()
		comp.TickNow()
		comp.NotifyRecv(nil)
		comp.NotifyPortFree(nil)

		Expect(engine.Run()).To(Succeed())
		Expect(ticker.ticks).To(Equal(2))
	})

	It("should tick secondary components after primary ones", func() {
		var order []string
		primary := NewTickingComponent("P", engine, 1*GHz,
			tickFunc(func() bool { order = append(order, "P"); return false }))
		secondary := NewSecondaryTickingComponent("S", engine, 1*GHz,
			tickFunc(func() bool { order = append(order, "S"); return false }))

		secondary.TickLater()
		primary.TickLater()

		Expect(engine.Run()).To(Succeed())
		Expect(order).To(Equal([]string{"P", "S"}))
	})
})

type tickFunc func() bool

func (f tickFunc) Tick() bool {
	return f()
}

var _ = Describe("MiddlewareHolder", func() {
	It("should report progress if any middleware progressed", func() {
		holder := MiddlewareHolder{}
		holder.AddMiddleware(tickFunc(func() bool { return false }))
		holder.AddMiddleware(tickFunc(func() bool { return true }))

		Expect(holder.Middlewares()).To(HaveLen(2))
		Expect(holder.Tick()).To(BeTrue())
	})
})

package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type countingHook struct {
	pushes, pops int
}

func (h *countingHook) Func(ctx HookCtx) {
	switch ctx.Pos {
	case HookPosBufPush:
		h.pushes++
	case HookPosBufPop:
		h.pops++
	}
}

var _ = Describe("Buffer", func() {
	var buf Buffer

	BeforeEach(func() {
		buf = NewBuffer("Buf", 2)
	})

	It("should panic on non-positive capacity", func() {
		Expect(func() { NewBuffer("Bad", 0) }).To(Panic())
	})

	It("should keep fifo order", func() {
		buf.Push(1)
		buf.Push(2)

		Expect(buf.CanPush()).To(BeFalse())
		Expect(buf.Size()).To(Equal(2))
		Expect(buf.Peek()).To(Equal(1))
		Expect(buf.Pop()).To(Equal(1))
		Expect(buf.Pop()).To(Equal(2))
		Expect(buf.Pop()).To(BeNil())
	})

	It("should panic on overflow", func() {
		buf.Push(1)
		buf.Push(2)

		Expect(func() { buf.Push(3) }).To(Panic())
	})

	It("should clear", func() {
		buf.Push(1)
		buf.Clear()

		Expect(buf.Size()).To(Equal(0))
		Expect(buf.Peek()).To(BeNil())
	})

	It("should invoke hooks", func() {
		hook := &countingHook{}
		buf.AcceptHook(hook)

		buf.Push(1)
		buf.Pop()
		buf.Pop()

		Expect(hook.pushes).To(Equal(1))
		Expect(hook.pops).To(Equal(1))
	})
})

var _ = Describe("Buffer wrapping around", func() {
	It("should keep fifo order across the end of the ring", func() {
		buf := NewBuffer("Ring", 3)

		for i := 0; i < 10; i++ {
			buf.Push(i)
			buf.Push(i + 100)
			Expect(buf.Pop()).To(Equal(i))
			Expect(buf.Pop()).To(Equal(i + 100))
		}

		Expect(buf.Size()).To(BeZero())
	})
})

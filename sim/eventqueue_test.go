package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("TimeOrderedQueue", func() {
	var queue *TimeOrderedQueue

	BeforeEach(func() {
		queue = NewEventQueue()
	})

	It("should pop events in time order", func() {
		times := []VTimeInSec{3, 1, 2, 5, 4}
		for _, t := range times {
			queue.Push(NewEventBase(t, nil))
		}

		Expect(queue.Len()).To(Equal(5))

		for i := 1; i <= 5; i++ {
			Expect(queue.Pop().Time()).To(Equal(VTimeInSec(i)))
		}
	})

	It("should keep push order for same-time events", func() {
		evts := []*EventBase{
			NewEventBase(1, nil),
			NewEventBase(1, nil),
			NewEventBase(1, nil),
		}
		for _, e := range evts {
			queue.Push(e)
		}

		Expect(queue.Peek()).To(BeIdenticalTo(evts[0]))
		for _, e := range evts {
			Expect(queue.Pop()).To(BeIdenticalTo(e))
		}
	})
})

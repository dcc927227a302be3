package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("ComponentBase", func() {
	var (
		mockCtrl  *gomock.Controller
		component *ComponentBase
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		component = NewComponentBase("test_comp")
	})

	It("should set and get name", func() {
		Expect(component.Name()).To(Equal("test_comp"))
	})

	It("should keep ports in insertion order", func() {
		top := NewMockPort(mockCtrl)
		bottom := NewMockPort(mockCtrl)

		component.AddPort("Top", top)
		component.AddPort("Bottom", bottom)

		Expect(component.GetPortByName("Bottom")).To(BeIdenticalTo(bottom))
		Expect(component.Ports()).To(HaveExactElements(top, bottom))
	})

	It("should panic on a duplicate port name", func() {
		component.AddPort("Top", NewMockPort(mockCtrl))

		Expect(func() {
			component.AddPort("Top", NewMockPort(mockCtrl))
		}).To(Panic())
	})

	It("should panic on an unknown port name", func() {
		Expect(func() { component.GetPortByName("Nope") }).To(Panic())
	})
})

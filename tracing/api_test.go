package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/membist/sim"
)

var _ = Describe("API", func() {
	var (
		mockCtrl *gomock.Controller
		domain   *MockNamedHookable
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		domain = NewMockNamedHookable(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	Context("with hooks", func() {
		BeforeEach(func() {
			domain.EXPECT().NumHooks().Return(1).AnyTimes()
		})

		It("should panic if ID is not given", func() {
			domain.EXPECT().Name().Return("domain").AnyTimes()

			Expect(func() {
				StartTask("", "123", domain, "kind", "what", nil)
			}).To(Panic())
		})

		It("should panic if kind is empty", func() {
			domain.EXPECT().Name().Return("domain").AnyTimes()

			Expect(func() {
				StartTask("id", "123", domain, "", "what", nil)
			}).To(Panic())
		})

		It("should panic if what is empty", func() {
			domain.EXPECT().Name().Return("domain").AnyTimes()

			Expect(func() {
				StartTask("id", "123", domain, "kind", "", nil)
			}).To(Panic())
		})

		It("should panic if the domain has no name", func() {
			domain.EXPECT().Name().Return("").AnyTimes()

			Expect(func() {
				StartTask("id", "123", domain, "kind", "what", nil)
			}).To(Panic())
		})

		It("should name request tasks after the message", func() {
			msg := &testMsg{sim.MsgMeta{ID: "m1"}}
			domain.EXPECT().Name().Return("Gen").AnyTimes()

			var tasks []Task
			domain.EXPECT().InvokeHook(gomock.Any()).
				Do(func(ctx sim.HookCtx) {
					tasks = append(tasks, ctx.Item.(Task))
				}).Times(2)

			TraceReqInitiate(msg, domain, "run")
			TraceReqReceive(msg, domain)

			Expect(tasks[0].ID).To(Equal("m1_req_out"))
			Expect(tasks[0].ParentID).To(Equal("run"))
			Expect(tasks[0].Kind).To(Equal("req_out"))
			Expect(tasks[0].What).To(Equal("*tracing.testMsg"))
			Expect(tasks[1].ID).To(Equal("m1@Gen"))
			Expect(tasks[1].ParentID).To(Equal("m1_req_out"))
			Expect(tasks[1].Kind).To(Equal("req_in"))
		})

		It("should find the request task from its response", func() {
			rsp := &testRsp{testMsg: testMsg{sim.MsgMeta{ID: "r1"}}, rspTo: "m1"}

			var ctxs []sim.HookCtx
			domain.EXPECT().InvokeHook(gomock.Any()).
				Do(func(ctx sim.HookCtx) { ctxs = append(ctxs, ctx) }).
				Times(2)

			TraceRspStep(rsp, domain, StepMismatch)
			TraceRspTaken(rsp, domain)

			Expect(ctxs[0].Pos).To(Equal(HookPosTaskStep))
			Expect(ctxs[0].Item.(Task).ID).To(Equal("m1_req_out"))
			Expect(ctxs[0].Item.(Task).Steps[0].What).To(Equal("mismatch"))
			Expect(ctxs[1].Pos).To(Equal(HookPosTaskEnd))
			Expect(ctxs[1].Item.(Task).ID).To(Equal("m1_req_out"))
		})
	})

	It("should not invoke hooks when there are none", func() {
		domain.EXPECT().NumHooks().Return(0).AnyTimes()

		StartTask("", "", domain, "", "", nil)
		AddTaskStep("id", domain, "step")
		EndTask("id", domain)
	})
})

package tracing

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/membist/datarecording"
)

var _ = Describe("DBTracer", func() {
	It("should store ended tasks and their steps", func() {
		path := filepath.Join(GinkgoT().TempDir(), "trace")
		recorder := datarecording.New(path)
		clock := &manualClock{}
		domain := &testDomain{name: "Chk"}

		tracer := NewDBTracer(clock, recorder, KindFilter("req_out"))
		CollectTrace(domain, tracer)

		clock.now = 1
		StartTask("r1", "run", domain, "req_out", "read", nil)
		StartTask("run", "", domain, "bist_run", "read", nil)
		StartTask("r2", "run", domain, "req_out", "read", nil)
		clock.now = 2
		AddTaskStep("r1", domain, "mismatch")
		clock.now = 3
		EndTask("r1", domain)

		Expect(tracer.NumInflight()).To(Equal(1))
		tracer.Terminate()
		Expect(tracer.NumInflight()).To(Equal(0))
		Expect(recorder.Close()).To(Succeed())

		reader, err := datarecording.NewReader(path + ".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		defer reader.Close()

		reader.MapTable(TaskTable, TaskEntry{})
		reader.MapTable(StepTable, StepEntry{})

		tasks, _, err := reader.Query(context.Background(), TaskTable,
			datarecording.QueryParams{})
		Expect(err).NotTo(HaveOccurred())
		Expect(tasks).To(Equal([]any{&TaskEntry{
			ID: "r1", ParentID: "run", Kind: "req_out", What: "read",
			Location: "Chk", StartTime: 1, EndTime: 3,
		}}))

		steps, _, err := reader.Query(context.Background(), StepTable,
			datarecording.QueryParams{})
		Expect(err).NotTo(HaveOccurred())
		Expect(steps).To(Equal([]any{&StepEntry{
			TaskID: "r1", Time: 2, What: "mismatch",
		}}))
	})
})

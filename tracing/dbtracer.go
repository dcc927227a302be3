package tracing

import (
	"slices"
	"sync"

	"github.com/sarchlab/membist/datarecording"
	"github.com/sarchlab/membist/sim"
)

// Table names used by the DBTracer.
const (
	TaskTable = "trace"
	StepTable = "trace_step"
)

// TaskEntry is a completed task as stored in the database.
type TaskEntry struct {
	ID        string `membist_data:"index"`
	ParentID  string `membist_data:"index"`
	Kind      string `membist_data:"index"`
	What      string
	Location  string `membist_data:"index"`
	StartTime float64
	EndTime   float64
}

// StepEntry is a step of a task as stored in the database.
type StepEntry struct {
	TaskID string `membist_data:"index"`
	Time   float64
	What   string
}

// DBTracer stores completed tasks and their steps through a DataRecorder.
// Tasks that have not ended when the tracer is terminated are dropped.
type DBTracer struct {
	lock       sync.Mutex
	timeTeller sim.TimeTeller
	backend    datarecording.DataRecorder
	filter     TaskFilter

	inflight map[string]Task
}

// NewDBTracer creates the trace tables in the recorder unless another tracer
// already did. A nil filter keeps every task.
func NewDBTracer(
	timeTeller sim.TimeTeller,
	backend datarecording.DataRecorder,
	filter TaskFilter,
) *DBTracer {
	if !slices.Contains(backend.ListTables(), TaskTable) {
		backend.CreateTable(TaskTable, TaskEntry{})
		backend.CreateTable(StepTable, StepEntry{})
	}

	if filter == nil {
		filter = func(Task) bool { return true }
	}

	return &DBTracer{
		timeTeller: timeTeller,
		backend:    backend,
		filter:     filter,
		inflight:   make(map[string]Task),
	}
}

// StartTask remembers the task and its start time.
func (t *DBTracer) StartTask(task Task) {
	if !t.filter(task) {
		return
	}

	task.StartTime = t.timeTeller.CurrentTime()

	t.lock.Lock()
	t.inflight[task.ID] = task
	t.lock.Unlock()
}

// StepTask stores a step of a traced task.
func (t *DBTracer) StepTask(task Task) {
	t.lock.Lock()
	_, ok := t.inflight[task.ID]
	t.lock.Unlock()

	if !ok {
		return
	}

	now := float64(t.timeTeller.CurrentTime())
	for _, step := range task.Steps {
		t.backend.InsertData(StepTable, StepEntry{
			TaskID: task.ID,
			Time:   now,
			What:   step.What,
		})
	}
}

// EndTask stores the task.
func (t *DBTracer) EndTask(task Task) {
	t.lock.Lock()
	original, ok := t.inflight[task.ID]
	delete(t.inflight, task.ID)
	t.lock.Unlock()

	if !ok {
		return
	}

	t.backend.InsertData(TaskTable, TaskEntry{
		ID:        original.ID,
		ParentID:  original.ParentID,
		Kind:      original.Kind,
		What:      original.What,
		Location:  original.Where,
		StartTime: float64(original.StartTime),
		EndTime:   float64(t.timeTeller.CurrentTime()),
	})
}

// NumInflight returns the number of tasks that have started but not ended.
func (t *DBTracer) NumInflight() int {
	t.lock.Lock()
	defer t.lock.Unlock()

	return len(t.inflight)
}

// Terminate drops the unfinished tasks and flushes the recorder.
func (t *DBTracer) Terminate() {
	t.lock.Lock()
	t.inflight = make(map[string]Task)
	t.lock.Unlock()

	t.backend.Flush()
}

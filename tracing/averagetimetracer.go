package tracing

import (
	"sync"

	"github.com/sarchlab/membist/sim"
)

// AverageTimeTracer measures the mean duration of the filtered tasks, such as
// the round trip of a memory request.
type AverageTimeTracer struct {
	timeTeller sim.TimeTeller
	filter     TaskFilter

	lock     sync.Mutex
	started  map[string]sim.VTimeInSec
	total    sim.VTimeInSec
	finished uint64
}

// NewAverageTimeTracer creates an AverageTimeTracer.
func NewAverageTimeTracer(
	timeTeller sim.TimeTeller,
	filter TaskFilter,
) *AverageTimeTracer {
	return &AverageTimeTracer{
		timeTeller: timeTeller,
		filter:     filter,
		started:    make(map[string]sim.VTimeInSec),
	}
}

// AverageTime returns the mean duration of the finished tasks, or 0 if none
// finished.
func (t *AverageTimeTracer) AverageTime() sim.VTimeInSec {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.finished == 0 {
		return 0
	}

	return t.total / sim.VTimeInSec(t.finished)
}

// TotalCount returns the number of finished tasks.
func (t *AverageTimeTracer) TotalCount() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.finished
}

// StartTask remembers when a filtered task started.
func (t *AverageTimeTracer) StartTask(task Task) {
	if !t.filter(task) {
		return
	}

	t.lock.Lock()
	t.started[task.ID] = t.timeTeller.CurrentTime()
	t.lock.Unlock()
}

// StepTask does nothing.
func (t *AverageTimeTracer) StepTask(_ Task) {}

// EndTask adds the duration of a followed task.
func (t *AverageTimeTracer) EndTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	start, ok := t.started[task.ID]
	if !ok {
		return
	}

	delete(t.started, task.ID)
	t.total += t.timeTeller.CurrentTime() - start
	t.finished++
}

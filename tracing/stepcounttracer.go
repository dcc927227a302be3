package tracing

import (
	"sync"
)

// StepCountTracer counts how many times each step is reached, and how many
// tasks reached it at least once.
type StepCountTracer struct {
	filter TaskFilter

	lock      sync.Mutex
	seen      map[string]map[string]bool // task ID -> steps reached
	stepNames []string
	steps     map[string]uint64
	tasks     map[string]uint64
}

// NewStepCountTracer creates a StepCountTracer for the filtered tasks.
func NewStepCountTracer(filter TaskFilter) *StepCountTracer {
	return &StepCountTracer{
		filter: filter,
		seen:   make(map[string]map[string]bool),
		steps:  make(map[string]uint64),
		tasks:  make(map[string]uint64),
	}
}

// StepNames returns the step names in first-seen order.
func (t *StepCountTracer) StepNames() []string {
	t.lock.Lock()
	defer t.lock.Unlock()

	return append([]string(nil), t.stepNames...)
}

// StepCount returns how many times the step was reached.
func (t *StepCountTracer) StepCount(step string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.steps[step]
}

// TaskCount returns how many tasks reached the step.
func (t *StepCountTracer) TaskCount(step string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.tasks[step]
}

// StartTask starts following the task if it passes the filter.
func (t *StepCountTracer) StartTask(task Task) {
	if !t.filter(task) {
		return
	}

	t.lock.Lock()
	t.seen[task.ID] = make(map[string]bool)
	t.lock.Unlock()
}

// StepTask counts the step of a followed task.
func (t *StepCountTracer) StepTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	reached, ok := t.seen[task.ID]
	if !ok {
		return
	}

	for _, s := range task.Steps {
		if _, known := t.steps[s.What]; !known {
			t.stepNames = append(t.stepNames, s.What)
		}

		t.steps[s.What]++

		if !reached[s.What] {
			reached[s.What] = true
			t.tasks[s.What]++
		}
	}
}

// EndTask stops following the task.
func (t *StepCountTracer) EndTask(task Task) {
	t.lock.Lock()
	delete(t.seen, task.ID)
	t.lock.Unlock()
}

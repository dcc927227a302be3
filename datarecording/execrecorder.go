package datarecording

import (
	"os"
	"strings"
	"time"
)

// ExecInfoTable is the table that holds the facts about a program run.
const ExecInfoTable = "exec_info"

const timeLayout = "2006-01-02 15:04:05.000000000"

// ExecInfo is one fact about a program run.
type ExecInfo struct {
	Property string
	Value    string
}

// ExecRecorder records when and how the program was started and when it
// ended.
type ExecRecorder struct {
	recorder DataRecorder
	entries  []ExecInfo
}

// NewExecRecorder creates the exec_info table in the recorder.
func NewExecRecorder(r DataRecorder) *ExecRecorder {
	r.CreateTable(ExecInfoTable, ExecInfo{})

	return &ExecRecorder{recorder: r}
}

// Start notes the start time, the command line and the working directory.
func (e *ExecRecorder) Start() {
	e.entries = append(e.entries,
		ExecInfo{"Start Time", time.Now().Format(timeLayout)},
		ExecInfo{"Command", strings.Join(os.Args, " ")},
	)

	if wd, err := os.Getwd(); err == nil {
		e.entries = append(e.entries, ExecInfo{"Working Directory", wd})
	}
}

// Note adds a fact to the record.
func (e *ExecRecorder) Note(property, value string) {
	e.entries = append(e.entries, ExecInfo{property, value})
}

// End writes the facts with the end time.
func (e *ExecRecorder) End() {
	e.entries = append(e.entries,
		ExecInfo{"End Time", time.Now().Format(timeLayout)})

	for _, entry := range e.entries {
		e.recorder.InsertData(ExecInfoTable, entry)
	}

	e.entries = nil
	e.recorder.Flush()
}

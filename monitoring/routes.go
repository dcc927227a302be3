package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/membist/sim"
)

// profileWindow is how long /api/profile samples the CPU.
const profileWindow = time.Second

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"now":%.10f}`, m.engine.CurrentTime())
}

func (m *Monitor) listComponents(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(m.components))
	for _, c := range m.components {
		names = append(names, c.Name())
	}

	writeJSON(w, names)
}

func (m *Monitor) listComponentDetails(w http.ResponseWriter, r *http.Request) {
	comp := m.findComponentOr404(w, mux.Vars(r)["name"])
	if comp == nil {
		return
	}

	dieOnErr(serializeComponent(w, comp, nil))
}

type fieldReq struct {
	CompName  string `json:"comp_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	var req fieldReq
	if err := json.Unmarshal([]byte(mux.Vars(r)["json"]), &req); err != nil {
		badRequest(w, err)
		return
	}

	comp := m.findComponentOr404(w, req.CompName)
	if comp == nil {
		return
	}

	err := serializeComponent(w, comp, strings.Split(req.FieldName, "."))
	if errors.Is(err, errNoSuchField) {
		badRequest(w, err)
		return
	}

	dieOnErr(err)
}

var errNoSuchField = errors.New("no such field")

// serializeComponent writes one level of the component, starting from the
// field path when it is given.
func serializeComponent(w io.Writer, comp any, fieldPath []string) error {
	s := goseth.NewSerializer()
	s.SetRoot(comp)
	s.SetMaxDepth(1)

	if fieldPath != nil {
		if err := s.SetEntryPoint(fieldPath); err != nil {
			return fmt.Errorf("%w: %w", errNoSuchField, err)
		}
	}

	return s.Serialize(w)
}

type bistStatusRsp struct {
	Name      string `json:"name"`
	Phase     string `json:"phase"`
	Run       bool   `json:"run"`
	Done      bool   `json:"done"`
	Ready     bool   `json:"ready"`
	Length    uint64 `json:"length"`
	Issued    uint64 `json:"issued"`
	Completed uint64 `json:"completed"`
	Errors    uint64 `json:"errors"`
	Ticks     uint64 `json:"ticks"`
	Cycles    uint64 `json:"cycles"`
}

func (m *Monitor) listBISTStatus(w http.ResponseWriter, _ *http.Request) {
	rsp := make([]bistStatusRsp, 0, len(m.bistEngines))

	for _, e := range m.bistEngines {
		s := e.Status()
		rsp = append(rsp, bistStatusRsp{
			Name:      e.Name(),
			Phase:     s.Phase.String(),
			Run:       s.Run,
			Done:      s.Done,
			Ready:     s.Ready,
			Length:    s.Length,
			Issued:    s.Issued,
			Completed: s.Completed,
			Errors:    s.RunState.Errors,
			Ticks:     s.RunState.Ticks,
			Cycles:    s.Cycles,
		})
	}

	writeJSON(w, rsp)
}

func (m *Monitor) findComponentOr404(
	w http.ResponseWriter,
	name string,
) sim.Component {
	for _, c := range m.components {
		if c.Name() == name {
			return c
		}
	}

	http.Error(w, "Component not found", http.StatusNotFound)

	return nil
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.barsLock.Lock()
	rsp := make([]progressRsp, 0, len(m.bars))
	for _, b := range m.bars {
		rsp = append(rsp, b.snapshot())
	}
	m.barsLock.Unlock()

	writeJSON(w, rsp)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	dieOnErr(err)

	cpu, err := proc.CPUPercent()
	dieOnErr(err)

	mem, err := proc.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{CPUPercent: cpu, MemorySize: mem.RSS})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer

	if err := pprof.StartCPUProfile(&buf); err != nil {
		http.Error(w, "Error: "+err.Error(), http.StatusConflict)
		return
	}

	time.Sleep(profileWindow)
	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func badRequest(w http.ResponseWriter, err error) {
	http.Error(w, "Error: "+err.Error(), http.StatusBadRequest)
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(data)
	dieOnErr(err)
}

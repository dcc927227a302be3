// Package monitoring serves the state of a running benchmark over HTTP.
package monitoring

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/sarchlab/membist/bist"
	"github.com/sarchlab/membist/monitoring/web"
	"github.com/sarchlab/membist/sim"
)

// lowestPort is the first port number the server may be pinned to.
const lowestPort = 1000

// A BISTEngine is a generator or a checker whose status can be listed.
type BISTEngine interface {
	sim.Named
	Status() bist.Status
}

// Monitor turns a simulation into a server that reports the components, the
// BIST engines and the progress of the run.
type Monitor struct {
	engine      sim.Engine
	components  []sim.Component
	buffers     []sim.Buffer
	bistEngines []BISTEngine
	portNumber  int
	url         string

	barsLock sync.Mutex
	bars     []*ProgressBar
}

// NewMonitor creates a Monitor that listens on a random port.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber pins the server to a port. Ports below 1000 are refused and
// fall back to a random port.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < lowestPort {
		fmt.Fprintf(os.Stderr,
			"monitor: port %d is reserved, using a random port\n", portNumber)

		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterEngine sets the engine whose time is reported.
func (m *Monitor) RegisterEngine(e sim.Engine) {
	m.engine = e
}

// RegisterComponent adds a component and every buffer it or its ports own.
func (m *Monitor) RegisterComponent(c sim.Component) {
	m.components = append(m.components, c)
	m.buffers = append(m.buffers, buffersOf(c)...)

	for _, p := range c.Ports() {
		m.buffers = append(m.buffers, buffersOf(p)...)
	}
}

// RegisterBISTEngine adds an engine to the BIST status list.
func (m *Monitor) RegisterBISTEngine(e BISTEngine) {
	m.bistEngines = append(m.bistEngines, e)
}

// CreateProgressBar creates a bar that is listed until it is completed.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        sim.GetIDGenerator().Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.barsLock.Lock()
	m.bars = append(m.bars, bar)
	m.barsLock.Unlock()

	return bar
}

// CompleteProgressBar stops listing a bar.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.barsLock.Lock()
	defer m.barsLock.Unlock()

	for i, b := range m.bars {
		if b == pb {
			m.bars = append(m.bars[:i], m.bars[i+1:]...)
			return
		}
	}
}

// Router returns the routes the server answers.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/now", m.now)
	api.HandleFunc("/list_components", m.listComponents)
	api.HandleFunc("/component/{name}", m.listComponentDetails)
	api.HandleFunc("/field/{json}", m.listFieldValue)
	api.HandleFunc("/hangdetector/buffers", m.hangDetectorBuffers)
	api.HandleFunc("/bist/status", m.listBISTStatus)
	api.HandleFunc("/progress", m.listProgressBars)
	api.HandleFunc("/resource", m.listResources)
	api.HandleFunc("/profile", m.collectProfile)

	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer listens and serves in the background.
func (m *Monitor) StartServer() {
	addr := ":0"
	if m.portNumber >= lowestPort {
		addr = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", addr)
	dieOnErr(err)

	m.url = fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", m.url)

	router := m.Router()

	go func() {
		dieOnErr(http.Serve(listener, router))
	}()
}

// URL returns the address of the server once it has started.
func (m *Monitor) URL() string {
	return m.url
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}

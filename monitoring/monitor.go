// Package monitoring serves the state of translators over HTTP so that a
// display layer can drive them.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/vmsim/vm"
)

// Monitor turns a set of translators into a server that external display
// layers can query and drive.
type Monitor struct {
	portNumber  int
	openBrowser bool

	translatorsLock sync.RWMutex
	translators     []*vm.Translator

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar

	server *http.Server
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes StartServer open the monitor in the default browser.
func (m *Monitor) WithBrowser(open bool) *Monitor {
	m.openBrowser = open
	return m
}

// RegisterTranslator registers a translator to be served. Names must be
// unique.
func (m *Monitor) RegisterTranslator(t *vm.Translator) {
	m.translatorsLock.Lock()
	defer m.translatorsLock.Unlock()

	for _, existing := range m.translators {
		if existing.Name() == t.Name() {
			panic("translator " + t.Name() + " already registered")
		}
	}

	m.translators = append(m.translators, t)
}

// Router returns the HTTP routes of the monitor.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/list_translators", m.listTranslators)
	r.HandleFunc("/api/translate/{name}/{addr}", m.translate).
		Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/api/reset/{name}", m.reset).
		Methods(http.MethodPost)
	r.HandleFunc("/api/snapshot/{name}", m.snapshot)
	r.HandleFunc("/api/stats/{name}", m.stats)
	r.HandleFunc("/api/component/{name}", m.listComponentDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)

	return r
}

// StartServer starts the monitor as a web server and returns the address it
// listens on.
func (m *Monitor) StartServer() (string, error) {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring translators with %s\n", url)

	m.server = &http.Server{
		Handler:           m.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		err := m.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Panic(err)
		}
	}()

	if m.openBrowser {
		err = browser.OpenURL(url + "/api/list_translators")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open browser: %v\n", err)
		}
	}

	return url, nil
}

// StopServer shuts the server down gracefully.
func (m *Monitor) StopServer(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

func (m *Monitor) listTranslators(w http.ResponseWriter, _ *http.Request) {
	m.translatorsLock.RLock()
	names := make([]string, 0, len(m.translators))
	for _, t := range m.translators {
		names = append(names, t.Name())
	}
	m.translatorsLock.RUnlock()

	writeJSON(w, http.StatusOK, names)
}

type errorRsp struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (m *Monitor) translate(w http.ResponseWriter, r *http.Request) {
	t := m.findTranslatorOr404(w, mux.Vars(r)["name"])
	if t == nil {
		return
	}

	record, err := t.TranslateInput(mux.Vars(r)["addr"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorRsp{
			Error: err.Error(),
			Kind:  errorKind(err),
		})

		return
	}

	writeJSON(w, http.StatusOK, record)
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, vm.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, vm.ErrAddressOutOfRange):
		return "address_out_of_range"
	default:
		return "unknown"
	}
}

func (m *Monitor) reset(w http.ResponseWriter, r *http.Request) {
	t := m.findTranslatorOr404(w, mux.Vars(r)["name"])
	if t == nil {
		return
	}

	t.Reset()

	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) snapshot(w http.ResponseWriter, r *http.Request) {
	t := m.findTranslatorOr404(w, mux.Vars(r)["name"])
	if t == nil {
		return
	}

	writeJSON(w, http.StatusOK, t.Snapshot())
}

type statsRsp struct {
	vm.Stats
	HitRatio float64 `json:"hit_ratio"`
}

func (m *Monitor) stats(w http.ResponseWriter, r *http.Request) {
	t := m.findTranslatorOr404(w, mux.Vars(r)["name"])
	if t == nil {
		return
	}

	s := t.Stats()
	writeJSON(w, http.StatusOK, statsRsp{Stats: s, HitRatio: s.HitRatio()})
}

func (m *Monitor) listComponentDetails(w http.ResponseWriter, r *http.Request) {
	t := m.findTranslatorOr404(w, mux.Vars(r)["name"])
	if t == nil {
		return
	}

	snapshot := t.Snapshot()

	serializer := goseth.NewSerializer()
	serializer.SetRoot(&snapshot)
	serializer.SetMaxDepth(1)

	m.serialize(w, serializer)
}

type fieldReq struct {
	CompName  string `json:"comp_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	jsonString := mux.Vars(r)["json"]
	req := fieldReq{}

	err := json.Unmarshal([]byte(jsonString), &req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorRsp{
			Error: err.Error(),
			Kind:  "invalid_request",
		})

		return
	}

	t := m.findTranslatorOr404(w, req.CompName)
	if t == nil {
		return
	}

	snapshot := t.Snapshot()

	serializer := goseth.NewSerializer()
	serializer.SetRoot(&snapshot)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorRsp{
			Error: err.Error(),
			Kind:  "invalid_field",
		})

		return
	}

	m.serialize(w, serializer)
}

type serializer interface {
	Serialize(w io.Writer) error
}

// serialize buffers the output so that a failure can still be reported
// with a proper status code.
func (m *Monitor) serialize(w http.ResponseWriter, s serializer) {
	buf := bytes.NewBuffer(nil)

	err := s.Serialize(buf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(buf.Bytes())
	logOnErr(err)
}

func (m *Monitor) findTranslatorOr404(
	w http.ResponseWriter,
	name string,
) *vm.Translator {
	m.translatorsLock.RLock()
	defer m.translatorsLock.RUnlock()

	for _, t := range m.translators {
		if t.Name() == name {
			return t
		}
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("Translator not found"))
	logOnErr(err)

	return nil
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	views := make([]progressBarView, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		views = append(views, b.view())
	}
	m.progressBarsLock.Unlock()

	writeJSON(w, http.StatusOK, views)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	rsp, err := currentResources()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, rsp)
}

func currentResources() (resourceRsp, error) {
	pid := os.Getpid()

	process, err := process.NewProcess(int32(pid))
	if err != nil {
		return resourceRsp{}, err
	}

	cpuPercent, err := process.CPUPercent()
	if err != nil {
		return resourceRsp{}, err
	}

	memorySize, err := process.MemoryInfo()
	if err != nil {
		return resourceRsp{}, err
	}

	return resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}, nil
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, prof)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	bytes, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_, err = w.Write(bytes)
	logOnErr(err)
}

func logOnErr(err error) {
	if err != nil {
		log.Print(err)
	}
}

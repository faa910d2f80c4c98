// Package monitoring turns a running set of devices into a small web server
// that reports device state, transfer progress and process resources.
package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/pioxfer/device"
	"github.com/sarchlab/pioxfer/idgen"
	"github.com/sarchlab/pioxfer/instrumentation/hooking"
	"github.com/sarchlab/pioxfer/instrumentation/tracing"
	"github.com/sarchlab/pioxfer/logging"
	"github.com/sarchlab/pioxfer/monitoring/web"
)

// Monitor serves the state of registered devices over HTTP. It registers
// itself as a hook on every device so that it can keep one progress bar per
// active transfer.
type Monitor struct {
	portNumber  int
	openBrowser bool
	logger      *slog.Logger

	lock         sync.Mutex
	devices      []*device.Device
	stepCounters []*tracing.StepCountTracer

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
	barsByTask       map[string]*ProgressBar

	server *http.Server
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		logger:     logging.For(logging.ComponentMonitor),
		barsByTask: make(map[string]*ProgressBar),
	}
}

// WithPortNumber sets the port number of the monitor. Zero picks a random
// port.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		m.logger.Warn("port number not allowed, using a random port instead",
			"port", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithOpenBrowser makes StartServer open the dashboard in a browser.
func (m *Monitor) WithOpenBrowser(open bool) *Monitor {
	m.openBrowser = open
	return m
}

// WithLogger sets the logger of the monitor.
func (m *Monitor) WithLogger(logger *slog.Logger) *Monitor {
	m.logger = logger
	return m
}

// RegisterDevice registers a device to be monitored.
func (m *Monitor) RegisterDevice(d *device.Device) {
	m.lock.Lock()
	m.devices = append(m.devices, d)
	m.lock.Unlock()

	d.AcceptHook(m)
}

// RegisterStepCounter registers a step counter whose counts are listed by
// the monitor.
func (m *Monitor) RegisterStepCounter(t *tracing.StepCountTracer) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.stepCounters = append(m.stepCounters, t)
}

// Func updates the progress bars from the transfer events of a device.
func (m *Monitor) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case tracing.HookPosTaskStart:
		task := ctx.Item.(tracing.Task)
		total, _ := task.Detail.(uint64)
		m.startTaskBar(task, total)
	case tracing.HookPosTaskStep:
		task := ctx.Item.(tracing.Task)
		if bar := m.barOf(task.ID); bar != nil && task.Steps[0].What == "stall" {
			bar.IncrementStalls()
		}
	case tracing.HookPosTaskProgress:
		evt := ctx.Item.(tracing.ProgressEvent)
		if bar := m.barOf(evt.TaskID); bar != nil {
			bar.SetFinished(evt.Done, evt.Total)
		}
	case tracing.HookPosTaskEnd:
		task := ctx.Item.(tracing.Task)
		m.endTaskBar(task.ID)
	}
}

func (m *Monitor) startTaskBar(task tracing.Task, total uint64) {
	bar := m.CreateProgressBar(
		fmt.Sprintf("%s %s %s", task.Where, task.What, task.ID), total)

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.barsByTask[task.ID] = bar
}

func (m *Monitor) barOf(taskID string) *ProgressBar {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	return m.barsByTask[taskID]
}

func (m *Monitor) endTaskBar(taskID string) {
	m.progressBarsLock.Lock()
	bar, ok := m.barsByTask[taskID]
	delete(m.barsByTask, taskID)
	m.progressBarsLock.Unlock()

	if ok {
		m.CompleteProgressBar(bar)
	}
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        idgen.Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

func (m *Monitor) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/devices", m.listDevices)
	r.HandleFunc("/api/device/{name}", m.listDeviceDetails)
	r.HandleFunc("/api/device/{name}/transfer", m.activeTransfer)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/steps", m.listSteps)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts the monitor as a web server and returns the address it
// listens on.
func (m *Monitor) StartServer() (string, error) {
	listener, err := net.Listen("tcp", ":"+strconv.Itoa(m.portNumber))
	if err != nil {
		return "", fmt.Errorf("monitor listen: %w", err)
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	m.lock.Lock()
	m.server = &http.Server{
		Handler:           m.router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	server := m.server
	m.lock.Unlock()

	fmt.Fprintf(os.Stderr, "Monitoring pioxfer with %s\n", url)

	go func() {
		err := server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("monitor server stopped", "error", err)
		}
	}()

	if m.openBrowser {
		if err := browser.OpenURL(url); err != nil {
			m.logger.Warn("cannot open browser", "url", url, "error", err)
		}
	}

	return url, nil
}

// Close stops the web server.
func (m *Monitor) Close() error {
	m.lock.Lock()
	server := m.server
	m.server = nil
	m.lock.Unlock()

	if server == nil {
		return nil
	}

	return server.Close()
}

func (m *Monitor) listDevices(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	names := make([]string, 0, len(m.devices))
	for _, d := range m.devices {
		names = append(names, d.Name())
	}
	m.lock.Unlock()

	m.writeJSON(w, names)
}

func (m *Monitor) listDeviceDetails(w http.ResponseWriter, r *http.Request) {
	d := m.findDeviceOr404(w, mux.Vars(r)["name"])
	if d == nil {
		return
	}

	snapshot := d.Snapshot()

	serializer := goseth.NewSerializer()
	serializer.SetRoot(&snapshot)
	serializer.SetMaxDepth(2)
	if err := serializer.Serialize(w); err != nil {
		m.logger.Warn("writing response", "device", d.Name(), "error", err)
	}
}

type transferRsp struct {
	ID          string    `json:"id"`
	Direction   string    `json:"direction"`
	Total       uint64    `json:"total"`
	Transferred uint64    `json:"transferred"`
	StartTime   time.Time `json:"start_time"`
}

func (m *Monitor) activeTransfer(w http.ResponseWriter, r *http.Request) {
	d := m.findDeviceOr404(w, mux.Vars(r)["name"])
	if d == nil {
		return
	}

	info, ok := d.ActiveTransfer()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	m.writeJSON(w, transferRsp{
		ID:          info.ID,
		Direction:   info.Direction,
		Total:       info.Total,
		Transferred: info.Transferred,
		StartTime:   info.StartTime,
	})
}

func (m *Monitor) findDeviceOr404(
	w http.ResponseWriter,
	name string,
) *device.Device {
	m.lock.Lock()
	defer m.lock.Unlock()

	for _, d := range m.devices {
		if d.Name() == name {
			return d
		}
	}

	w.WriteHeader(http.StatusNotFound)
	if _, err := w.Write([]byte("Device not found")); err != nil {
		m.logger.Warn("writing response", "device", name, "error", err)
	}

	return nil
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	views := make([]progressBarView, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		views = append(views, b.view())
	}
	m.progressBarsLock.Unlock()

	m.writeJSON(w, views)
}

type stepRsp struct {
	Step  string `json:"step"`
	Count uint64 `json:"count"`
	Tasks uint64 `json:"tasks"`
}

func (m *Monitor) listSteps(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	counters := append([]*tracing.StepCountTracer(nil), m.stepCounters...)
	m.lock.Unlock()

	rsp := make([]stepRsp, 0)
	for _, c := range counters {
		for _, name := range c.GetStepNames() {
			rsp = append(rsp, stepRsp{
				Step:  name,
				Count: c.GetStepCount(name),
				Tasks: c.GetTaskCount(name),
			})
		}
	}

	m.writeJSON(w, rsp)
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

	m.writeJSON(w, rsp)
}

func currentResources() (resourceRsp, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return resourceRsp{}, err
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		return resourceRsp{}, err
	}

	memInfo, err := proc.MemoryInfo()
	if err != nil {
		return resourceRsp{}, err
	}

	return resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memInfo.RSS,
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

	m.writeJSON(w, prof)
}

// writeJSON sends v to the client. A client that went away is only logged.
func (m *Monitor) writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(data); err != nil {
		m.logger.Warn("writing response", "error", err)
	}
}

var _ hooking.Hook = (*Monitor)(nil)

// Package device hosts the transfer engine for one board. A Device owns a
// single worker slot, validates transfer requests, launches a worker per
// transfer, and decodes the control codes of the driver interface.
package device

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sarchlab/pioxfer/instrumentation/hooking"
	"github.com/sarchlab/pioxfer/instrumentation/tracing"
	"github.com/sarchlab/pioxfer/register"
	"github.com/sarchlab/pioxfer/transfer"
)

// Transfers must be whole 32-bit words.
const transferGranularity = 4

type slotState int

const (
	slotIdle slotState = iota
	slotActive
)

// slot is the one worker slot of a device.
type slot struct {
	state   slotState
	desc    *transfer.Descriptor
	started time.Time
}

// Stats counts what a device has done since it was built.
type Stats struct {
	Completed    uint64
	Cancelled    uint64
	Rejected     uint64
	BytesRead    uint64
	BytesWritten uint64
}

// TransferInfo describes the transfer that occupies a device.
type TransferInfo struct {
	ID          string
	Direction   string
	Total       uint64
	Transferred uint64
	StartTime   time.Time
}

// Snapshot is a consistent view of a device.
type Snapshot struct {
	Name   string
	Window string
	Busy   bool
	Active *TransferInfo
	Stats  Stats
}

// Device runs polling transfers against one board.
type Device struct {
	*hooking.HookableBase

	name      string
	regs      register.Controller
	resources Resources
	builder   transfer.Builder
	launcher  Launcher
	logger    *slog.Logger

	mu    sync.Mutex
	slot  slot
	stats Stats
}

// Name returns the name of the device.
func (d *Device) Name() string {
	return d.name
}

// Resources returns the port window the device was built with.
func (d *Device) Resources() Resources {
	return d.resources
}

// Busy tells if a transfer occupies the worker slot.
func (d *Device) Busy() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.slot.state == slotActive
}

// ActiveTransfer returns the transfer in the worker slot, if any.
func (d *Device) ActiveTransfer() (TransferInfo, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.slot.state != slotActive {
		return TransferInfo{}, false
	}

	return d.transferInfo(), true
}

func (d *Device) transferInfo() TransferInfo {
	desc := d.slot.desc

	return TransferInfo{
		ID:          desc.Request().ID(),
		Direction:   desc.Direction().String(),
		Total:       desc.Total(),
		Transferred: desc.Transferred(),
		StartTime:   d.slot.started,
	}
}

// Stats returns the device counters.
func (d *Device) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.stats
}

// Snapshot returns the state of the device.
func (d *Device) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := Snapshot{
		Name:   d.name,
		Window: d.resources.Window.String(),
		Busy:   d.slot.state == slotActive,
		Stats:  d.stats,
	}

	if s.Busy {
		info := d.transferInfo()
		s.Active = &info
	}

	return s
}

// BeginTransfer starts moving buf in the given direction on behalf of req.
//
// Requests that are not a whole number of 32-bit words, or that are empty,
// are rejected before the hardware is touched. Otherwise a worker is launched
// and StatusPending is returned; the worker later completes req with
// StatusSuccess or StatusCancelled. Any other returned status means req has
// not been completed and the caller must complete it.
//
// Only one transfer may be active at a time. Starting a second one is a
// programming error and panics.
func (d *Device) BeginTransfer(
	req transfer.Request,
	dir transfer.Direction,
	buf []byte,
) transfer.Status {
	if status := validateTransfer(buf); status != transfer.StatusPending {
		d.reject(req, status)
		return status
	}

	desc := transfer.NewDescriptor(dir, buf, req)
	machine := d.builder.WithDomain(d, req.ID()).Build(desc)

	d.activate(desc)

	tracing.StartTask(req.ID(), "", d, "transfer", dir.String(), desc.Total())

	err := d.launcher.Launch(func() { d.work(machine) })
	if err != nil {
		d.release()
		d.logger.Warn("worker launch failed",
			"request", req.ID(), "error", err)
		tracing.EndTask(req.ID(), d, transfer.StatusResourceExhausted)
		d.reject(req, transfer.StatusResourceExhausted)

		return transfer.StatusResourceExhausted
	}

	d.logger.Debug("transfer started",
		"request", req.ID(), "direction", dir, "size", len(buf))

	return transfer.StatusPending
}

func validateTransfer(buf []byte) transfer.Status {
	if len(buf)%transferGranularity != 0 {
		return transfer.StatusInvalidParameter
	}

	if len(buf) < transferGranularity {
		return transfer.StatusBufferTooSmall
	}

	return transfer.StatusPending
}

func (d *Device) reject(req transfer.Request, status transfer.Status) {
	d.mu.Lock()
	d.stats.Rejected++
	d.mu.Unlock()

	d.logger.Debug("transfer rejected", "request", req.ID(), "status", status)
}

func (d *Device) activate(desc *transfer.Descriptor) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.slotMustBeIdle()

	d.slot = slot{
		state:   slotActive,
		desc:    desc,
		started: time.Now(),
	}
}

func (d *Device) slotMustBeIdle() {
	if d.slot.state != slotIdle {
		panic(fmt.Sprintf("device %s already has an active transfer %s",
			d.name, d.slot.desc.Request().ID()))
	}
}

func (d *Device) release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.slot = slot{state: slotIdle}
}

// work runs on the worker goroutine.
func (d *Device) work(m *transfer.Machine) {
	res := m.Run()
	desc := m.Descriptor()
	req := desc.Request()

	d.mu.Lock()
	d.account(desc, res)
	d.slot = slot{state: slotIdle}
	d.mu.Unlock()

	d.logger.Info("transfer finished",
		"request", req.ID(),
		"direction", desc.Direction(),
		"status", res.Status,
		"transferred", res.Transferred,
		"polls", m.Polls(),
		"stalls", m.Stalls())

	tracing.EndTask(req.ID(), d, res.Status)
	req.Complete(res.Status, res.Transferred)
}

func (d *Device) account(desc *transfer.Descriptor, res transfer.Result) {
	if res.Status == transfer.StatusCancelled {
		d.stats.Cancelled++
	} else {
		d.stats.Completed++
	}

	if desc.Direction() == transfer.Write {
		d.stats.BytesWritten += res.Transferred
	} else {
		d.stats.BytesRead += res.Transferred
	}
}

// Reset resets the board. It is refused while a transfer is active.
func (d *Device) Reset() transfer.Status {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.slot.state == slotActive {
		d.logger.Warn("reset refused, transfer active",
			"request", d.slot.desc.Request().ID())
		return transfer.StatusInvalidDeviceRequest
	}

	d.regs.Reset()
	d.logger.Info("board reset")

	return transfer.StatusSuccess
}

var _ tracing.NamedHookable = (*Device)(nil)

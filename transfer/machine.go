// Package transfer implements the polling block-transfer engine. A Machine
// moves the bytes of one Descriptor through the FIFO of a register.Interface,
// one chunk per ready poll, and backs off while the hardware is not ready.
package transfer

import (
	"fmt"

	"github.com/sarchlab/pioxfer/instrumentation/tracing"
	"github.com/sarchlab/pioxfer/register"
)

// State is the lifecycle state of a Machine.
type State int

// Machine states.
const (
	StateRunning State = iota
	StateCompleted
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "Running"
	case StateCompleted:
		return "Completed"
	case StateCancelled:
		return "Cancelled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal tells if no more ticks are needed.
func (s State) Terminal() bool {
	return s != StateRunning
}

// Result is the outcome of a finished transfer.
type Result struct {
	Status      Status
	Transferred uint64
}

// A mover is the direction specific part of the poll loop.
type mover interface {
	// ready tells if the FIFO can serve one more chunk.
	ready(s register.Status) bool

	// move transfers one chunk between the FIFO and p.
	move(regs register.Interface, p []byte)
}

type readMover struct{}

func (readMover) ready(s register.Status) bool {
	return !s.ReadFIFOEmpty()
}

func (readMover) move(regs register.Interface, p []byte) {
	regs.ReadChunk(p)
}

type writeMover struct{}

func (writeMover) ready(s register.Status) bool {
	return !s.WriteFIFOFull()
}

func (writeMover) move(regs register.Interface, p []byte) {
	regs.WriteChunk(p)
}

func moverFor(dir Direction) mover {
	if dir == Write {
		return writeMover{}
	}

	return readMover{}
}

// Machine drives one Descriptor to a terminal state.
type Machine struct {
	desc    *Descriptor
	regs    register.Interface
	mover   mover
	policy  Policy
	sleeper Sleeper

	domain tracing.NamedHookable
	taskID string

	state   State
	started bool
	run     uint64
	polls   uint64
	stalls  uint64
}

// Descriptor returns the descriptor the machine works on.
func (m *Machine) Descriptor() *Descriptor {
	return m.desc
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Polls returns how many times the status register has been read.
func (m *Machine) Polls() uint64 {
	return m.polls
}

// Stalls returns how many polls found the hardware not ready.
func (m *Machine) Stalls() uint64 {
	return m.stalls
}

// Result returns the outcome. It panics if the machine is still running.
func (m *Machine) Result() Result {
	switch m.state {
	case StateCompleted:
		return Result{Status: StatusSuccess, Transferred: m.desc.Transferred()}
	case StateCancelled:
		return Result{Status: StatusCancelled, Transferred: m.desc.Transferred()}
	default:
		panic("transfer is still running")
	}
}

// Tick performs one iteration of the poll loop. It returns false once the
// machine has reached a terminal state and needs no more ticks.
func (m *Machine) Tick() bool {
	if m.state.Terminal() {
		return false
	}

	if !m.started {
		m.started = true

		if m.cancelled() {
			return false
		}

		if m.desc.Done() {
			m.finish(StateCompleted)
			return false
		}
	}

	m.polls++
	status := m.regs.ReadStatus()

	if !m.mover.ready(status) {
		return m.stall(status)
	}

	n := ChunkSize(m.desc.Remaining())
	m.mover.move(m.regs, m.desc.chunk(n))
	m.desc.advance(n)
	m.run++

	if m.desc.Done() {
		m.finish(StateCompleted)
		return false
	}

	if m.policy.checkDue(m.desc.Direction(), m.run) {
		m.traceStep("checkpoint", m.run)
		m.reportProgress()

		if m.cancelled() {
			return false
		}
	}

	return true
}

func (m *Machine) stall(status register.Status) bool {
	m.stalls++

	if m.cancelled() {
		return false
	}

	m.traceStep("stall", status)
	m.reportProgress()

	m.run = 0
	m.sleeper.Sleep(m.policy.YieldDelay)

	return true
}

// cancelled is a checkpoint. It moves the machine to StateCancelled if the
// request has been cancelled.
func (m *Machine) cancelled() bool {
	if !m.desc.Request().IsCancelled() {
		return false
	}

	m.finish(StateCancelled)

	return true
}

func (m *Machine) finish(state State) {
	m.state = state
	m.reportProgress()
}

// Run ticks the machine until it reaches a terminal state and returns the
// result.
func (m *Machine) Run() Result {
	for m.Tick() {
	}

	return m.Result()
}

func (m *Machine) traceStep(what string, detail any) {
	if m.domain == nil || m.domain.NumHooks() == 0 {
		return
	}

	tracing.AddTaskStep(m.taskID, m.domain, what, detail)
}

func (m *Machine) reportProgress() {
	if m.domain == nil || m.domain.NumHooks() == 0 {
		return
	}

	tracing.ReportProgress(m.taskID, m.domain,
		m.desc.Transferred(), m.desc.Total())
}

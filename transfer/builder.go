package transfer

import (
	"github.com/sarchlab/pioxfer/instrumentation/tracing"
	"github.com/sarchlab/pioxfer/register"
)

// A Builder can build transfer machines.
type Builder struct {
	regs    register.Interface
	policy  Policy
	sleeper Sleeper
	domain  tracing.NamedHookable
	taskID  string
}

// MakeBuilder returns a Builder with the default policy and a wall clock
// sleeper.
func MakeBuilder() Builder {
	return Builder{
		policy:  DefaultPolicy(),
		sleeper: RealSleeper,
	}
}

// WithRegisters sets the hardware the machine polls.
func (b Builder) WithRegisters(regs register.Interface) Builder {
	b.regs = regs
	return b
}

// WithPolicy sets the cancellation and yield policy.
func (b Builder) WithPolicy(p Policy) Builder {
	b.policy = p
	return b
}

// WithSleeper sets how the machine backs off.
func (b Builder) WithSleeper(s Sleeper) Builder {
	b.sleeper = s
	return b
}

// WithDomain sets the hookable that receives the machine's trace steps and
// progress reports for the task with the given ID.
func (b Builder) WithDomain(domain tracing.NamedHookable, taskID string) Builder {
	b.domain = domain
	b.taskID = taskID

	return b
}

// Build creates a machine for the descriptor.
func (b Builder) Build(desc *Descriptor) *Machine {
	b.mustBeValid(desc)

	return &Machine{
		desc:    desc,
		regs:    b.regs,
		mover:   moverFor(desc.Direction()),
		policy:  b.policy,
		sleeper: b.sleeper,
		domain:  b.domain,
		taskID:  b.taskID,
	}
}

func (b Builder) mustBeValid(desc *Descriptor) {
	if desc == nil {
		panic("descriptor is not given")
	}

	if b.regs == nil {
		panic("registers are not given")
	}

	if b.sleeper == nil {
		panic("sleeper is not given")
	}
}

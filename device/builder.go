package device

import (
	"log/slog"

	"github.com/sarchlab/pioxfer/instrumentation/hooking"
	"github.com/sarchlab/pioxfer/logging"
	"github.com/sarchlab/pioxfer/portio"
	"github.com/sarchlab/pioxfer/register"
	"github.com/sarchlab/pioxfer/transfer"
)

// A Builder can build devices.
type Builder struct {
	io        portio.Accessor
	regs      register.Controller
	resources Resources
	policy    transfer.Policy
	sleeper   transfer.Sleeper
	launcher  Launcher
	logger    *slog.Logger
}

// MakeBuilder creates a builder with default resources and policy.
func MakeBuilder() Builder {
	return Builder{
		resources: DefaultResources(),
		policy:    transfer.DefaultPolicy(),
		sleeper:   transfer.RealSleeper,
	}
}

// WithAccessor sets the port accessor. The device reaches the board's
// registers through it, confined to the resource window.
func (b Builder) WithAccessor(io portio.Accessor) Builder {
	b.io = io
	return b
}

// WithRegisters sets the register block directly, bypassing the accessor.
func (b Builder) WithRegisters(regs register.Controller) Builder {
	b.regs = regs
	return b
}

// WithResources sets the assigned port window.
func (b Builder) WithResources(r Resources) Builder {
	b.resources = r
	return b
}

// WithPolicy sets the cancellation and yield policy of the transfers.
func (b Builder) WithPolicy(p transfer.Policy) Builder {
	b.policy = p
	return b
}

// WithSleeper sets how workers back off.
func (b Builder) WithSleeper(s transfer.Sleeper) Builder {
	b.sleeper = s
	return b
}

// WithLauncher sets how workers are started. By default each device gets its
// own unbounded GoroutineLauncher.
func (b Builder) WithLauncher(l Launcher) Builder {
	b.launcher = l
	return b
}

// WithLogger sets the logger.
func (b Builder) WithLogger(l *slog.Logger) Builder {
	b.logger = l
	return b
}

// Build creates a device. It fails if the resources cannot host the board.
func (b Builder) Build(name string) (*Device, error) {
	if err := b.resources.Validate(); err != nil {
		return nil, err
	}

	regs := b.regs
	if regs == nil {
		if b.io == nil {
			panic("neither registers nor port accessor is given")
		}

		regs = register.NewS5933(
			portio.Windowed(b.io, b.resources.Window),
			b.resources.Window.Base)
	}

	launcher := b.launcher
	if launcher == nil {
		launcher = NewGoroutineLauncher(0)
	}

	logger := b.logger
	if logger == nil {
		logger = logging.For(logging.ComponentDevice)
	}

	d := &Device{
		HookableBase: hooking.NewHookableBase(),
		name:         name,
		regs:         regs,
		resources:    b.resources,
		launcher:     launcher,
		logger:       logger.With("device", name),
		builder: transfer.MakeBuilder().
			WithRegisters(regs).
			WithPolicy(b.policy).
			WithSleeper(b.sleeper),
	}

	return d, nil
}

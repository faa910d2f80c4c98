package device

import (
	"errors"
	"fmt"

	"github.com/sarchlab/pioxfer/portio"
	"github.com/sarchlab/pioxfer/register"
)

// ErrInvalidResources is returned when the assigned resources cannot host
// the board.
var ErrInvalidResources = errors.New("invalid device resources")

// Resources are the hardware resources assigned to a device.
type Resources struct {
	Window portio.Window
}

// DefaultResources is the port window of the board as shipped.
func DefaultResources() Resources {
	return Resources{
		Window: portio.Window{Base: register.DefaultBase, Count: register.Span},
	}
}

// Validate checks that the window holds the add-on register block.
func (r Resources) Validate() error {
	if r.Window.Count < register.Span {
		return fmt.Errorf("%w: window %s has %d ports, need %d",
			ErrInvalidResources, r.Window, r.Window.Count, register.Span)
	}

	if r.Window.End() > 0x10000 {
		return fmt.Errorf("%w: window %s exceeds port space",
			ErrInvalidResources, r.Window)
	}

	return nil
}

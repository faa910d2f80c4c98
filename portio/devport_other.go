//go:build !linux

package portio

// DefaultDevPortPath is the character device that exposes I/O port space.
const DefaultDevPortPath = "/dev/port"

// DevPort is unavailable on this platform.
type DevPort struct{}

// OpenDevPort always fails with ErrNotSupported.
func OpenDevPort(string) (*DevPort, error) {
	return nil, ErrNotSupported
}

func (d *DevPort) Close() error         { return ErrNotSupported }
func (d *DevPort) In8(uint16) uint8     { panic(ErrNotSupported) }
func (d *DevPort) In16(uint16) uint16   { panic(ErrNotSupported) }
func (d *DevPort) In32(uint16) uint32   { panic(ErrNotSupported) }
func (d *DevPort) Out8(uint16, uint8)   { panic(ErrNotSupported) }
func (d *DevPort) Out16(uint16, uint16) { panic(ErrNotSupported) }
func (d *DevPort) Out32(uint16, uint32) { panic(ErrNotSupported) }

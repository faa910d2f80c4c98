// Package portio provides access to x86 I/O port space.
//
// An Accessor performs single 8, 16 or 32 bit port accesses. Accesses have no
// error return: a port either answers or the process cannot continue, so
// implementations panic when the underlying access fails.
package portio

import (
	"errors"
	"fmt"
)

// ErrNotSupported is returned when raw port access is not available on the
// running platform.
var ErrNotSupported = errors.New("port I/O is not supported on this platform")

// Accessor performs single accesses to I/O ports. Multi-byte values are
// transferred little endian.
type Accessor interface {
	In8(port uint16) uint8
	In16(port uint16) uint16
	In32(port uint16) uint32
	Out8(port uint16, v uint8)
	Out16(port uint16, v uint16)
	Out32(port uint16, v uint32)
}

// Window is a contiguous range of ports assigned to a device.
type Window struct {
	Base  uint16
	Count uint16
}

// End returns the first port after the window.
func (w Window) End() uint32 {
	return uint32(w.Base) + uint32(w.Count)
}

// Contains tells if an access of width bytes at port stays in the window.
func (w Window) Contains(port uint16, width int) bool {
	if width <= 0 {
		return false
	}

	return port >= w.Base && uint32(port)+uint32(width) <= w.End()
}

// MustContain panics if the access leaves the window.
func (w Window) MustContain(port uint16, width int) {
	if !w.Contains(port, width) {
		panic(fmt.Sprintf("port access 0x%x/%d outside window %s",
			port, width, w))
	}
}

func (w Window) String() string {
	return fmt.Sprintf("[0x%x, 0x%x)", w.Base, w.End())
}

type windowed struct {
	Accessor
	w Window
}

// Windowed returns an Accessor that panics on any access outside w before
// forwarding it to a.
func Windowed(a Accessor, w Window) Accessor {
	return &windowed{Accessor: a, w: w}
}

func (a *windowed) In8(port uint16) uint8 {
	a.w.MustContain(port, 1)
	return a.Accessor.In8(port)
}

func (a *windowed) In16(port uint16) uint16 {
	a.w.MustContain(port, 2)
	return a.Accessor.In16(port)
}

func (a *windowed) In32(port uint16) uint32 {
	a.w.MustContain(port, 4)
	return a.Accessor.In32(port)
}

func (a *windowed) Out8(port uint16, v uint8) {
	a.w.MustContain(port, 1)
	a.Accessor.Out8(port, v)
}

func (a *windowed) Out16(port uint16, v uint16) {
	a.w.MustContain(port, 2)
	a.Accessor.Out16(port, v)
}

func (a *windowed) Out32(port uint16, v uint32) {
	a.w.MustContain(port, 4)
	a.Accessor.Out32(port, v)
}

// ReadBuffer8 fills p with successive 8-bit reads of the same port.
func ReadBuffer8(a Accessor, port uint16, p []byte) {
	for i := range p {
		p[i] = a.In8(port)
	}
}

// WriteBuffer8 writes p to the same port one byte at a time.
func WriteBuffer8(a Accessor, port uint16, p []byte) {
	for _, b := range p {
		a.Out8(port, b)
	}
}

// Package register describes the add-on side register block of the AMCC
// S5933 PCI controller and gives typed access to it.
package register

import (
	"fmt"
	"strings"

	"github.com/sarchlab/pioxfer/portio"
)

// Offsets of the add-on registers, relative to the board base port.
const (
	AFIFO  uint16 = 0x20 // FIFO data port
	AINT   uint16 = 0x38 // interrupt control/status
	AGCSTS uint16 = 0x3C // general control/status

	// Span is the number of ports the register block occupies.
	Span uint16 = 0x40
)

// DefaultBase is the base port of the evaluation board as shipped.
const DefaultBase uint16 = 0x300

// Control values written by Reset.
const (
	GCSTSReset       uint32 = 0x0F000000
	IntInterruptMask uint32 = 0x00FF0000
)

// Status is the value of the AGCSTS register.
type Status uint32

// AGCSTS FIFO flags.
const (
	StatusWriteFIFOFull  Status = 1 << 0
	StatusWriteFIFOEmpty Status = 1 << 2
	StatusReadFIFOFull   Status = 1 << 3
	StatusReadFIFOEmpty  Status = 1 << 5
)

// ReadFIFOEmpty tells that there is nothing to read from the FIFO.
func (s Status) ReadFIFOEmpty() bool {
	return s&StatusReadFIFOEmpty != 0
}

// WriteFIFOFull tells that the FIFO cannot take another write.
func (s Status) WriteFIFOFull() bool {
	return s&StatusWriteFIFOFull != 0
}

func (s Status) String() string {
	var flags []string

	for _, f := range []struct {
		bit  Status
		name string
	}{
		{StatusWriteFIFOFull, "WFULL"},
		{StatusWriteFIFOEmpty, "WEMPTY"},
		{StatusReadFIFOFull, "RFULL"},
		{StatusReadFIFOEmpty, "REMPTY"},
	} {
		if s&f.bit != 0 {
			flags = append(flags, f.name)
		}
	}

	return fmt.Sprintf("0x%08x[%s]", uint32(s), strings.Join(flags, "|"))
}

// Interface is what the transfer engine needs from the hardware. Each call is
// exactly one access of the hardware FIFO or status register.
type Interface interface {
	// ReadStatus samples AGCSTS.
	ReadStatus() Status

	// ReadChunk moves len(p) bytes, 1 to 4, from the FIFO into p.
	ReadChunk(p []byte)

	// WriteChunk moves p, 1 to 4 bytes, into the FIFO.
	WriteChunk(p []byte)
}

// Controller adds the one-shot control operations of the board.
type Controller interface {
	Interface

	// Reset clears the FIFOs and mailboxes and masks all interrupts.
	Reset()
}

// S5933 drives the add-on register block through a port accessor.
type S5933 struct {
	io   portio.Accessor
	base uint16
}

// NewS5933 creates an S5933 whose register block starts at base.
func NewS5933(io portio.Accessor, base uint16) *S5933 {
	return &S5933{io: io, base: base}
}

// Base returns the base port.
func (r *S5933) Base() uint16 {
	return r.base
}

// ReadStatus reads AGCSTS.
func (r *S5933) ReadStatus() Status {
	return Status(r.io.In32(r.base + AGCSTS))
}

// ReadChunk reads one chunk from AFIFO with an access as wide as the chunk.
// Three byte chunks are read as three byte accesses.
func (r *S5933) ReadChunk(p []byte) {
	port := r.base + AFIFO

	switch len(p) {
	case 1:
		p[0] = r.io.In8(port)
	case 2:
		v := r.io.In16(port)
		p[0], p[1] = byte(v), byte(v>>8)
	case 3:
		portio.ReadBuffer8(r.io, port, p)
	case 4:
		v := r.io.In32(port)
		p[0], p[1], p[2], p[3] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24)
	default:
		chunkSizeMustBeValid(len(p))
	}
}

// WriteChunk writes one chunk to AFIFO, mirroring ReadChunk.
func (r *S5933) WriteChunk(p []byte) {
	port := r.base + AFIFO

	switch len(p) {
	case 1:
		r.io.Out8(port, p[0])
	case 2:
		r.io.Out16(port, uint16(p[0])|uint16(p[1])<<8)
	case 3:
		portio.WriteBuffer8(r.io, port, p)
	case 4:
		r.io.Out32(port, uint32(p[0])|uint32(p[1])<<8|
			uint32(p[2])<<16|uint32(p[3])<<24)
	default:
		chunkSizeMustBeValid(len(p))
	}
}

// Reset flushes the FIFOs and mailboxes, then masks interrupts.
func (r *S5933) Reset() {
	r.io.Out32(r.base+AGCSTS, GCSTSReset)
	r.io.Out32(r.base+AINT, IntInterruptMask)
}

func chunkSizeMustBeValid(n int) {
	if n < 1 || n > 4 {
		panic(fmt.Sprintf("chunk size %d is not in 1..4", n))
	}
}

var _ Controller = (*S5933)(nil)

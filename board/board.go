// Package board simulates the add-on side of an S5933 evaluation board. The
// register block answers port accesses like the hardware does, and the far
// side of the FIFOs is driven through Feed and Drain, usually by a Peer.
package board

import (
	"fmt"
	"sync"

	"github.com/sarchlab/pioxfer/register"
)

// DefaultFIFODepth is the depth of each S5933 FIFO in 32-bit words.
const DefaultFIFODepth = 8

// Reset bits in AGCSTS.
const (
	resetOutboundFIFO uint32 = 1 << 25
	resetInboundFIFO  uint32 = 1 << 26
)

// openBus is what reads of unimplemented ports return.
const openBus = 0xffffffff

// Stats counts the accesses the board has served.
type Stats struct {
	StatusReads uint64
	FIFOReads   uint64
	FIFOWrites  uint64
	BytesIn     uint64
	BytesOut    uint64
	Underruns   uint64
	Overruns    uint64
	Resets      uint64
}

// Board is a simulated add-on register block. It implements
// portio.Accessor and is safe for concurrent use.
type Board struct {
	base  uint16
	depth int

	mu       sync.Mutex
	inbound  []byte // peer to add-on, read through AFIFO
	outbound []byte // add-on to peer, written through AFIFO
	aint     uint32
	stats    Stats
}

// New creates a board at base whose FIFOs hold depthWords 32-bit words each.
func New(base uint16, depthWords int) *Board {
	if depthWords <= 0 {
		depthWords = DefaultFIFODepth
	}

	return &Board{
		base:  base,
		depth: depthWords * 4,
	}
}

// Base returns the base port of the register block.
func (b *Board) Base() uint16 {
	return b.base
}

// Depth returns the capacity of each FIFO in bytes.
func (b *Board) Depth() int {
	return b.depth
}

func (b *Board) status() register.Status {
	var s register.Status

	if b.depth-len(b.outbound) < 4 {
		s |= register.StatusWriteFIFOFull
	}

	if len(b.outbound) == 0 {
		s |= register.StatusWriteFIFOEmpty
	}

	if len(b.inbound) == b.depth {
		s |= register.StatusReadFIFOFull
	}

	if len(b.inbound) == 0 {
		s |= register.StatusReadFIFOEmpty
	}

	return s
}

// read serves an access of width bytes and returns the value little endian.
func (b *Board) read(port uint16, width int) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.offset(port) {
	case register.AFIFO:
		return b.popInbound(width)
	case register.AGCSTS:
		b.stats.StatusReads++
		return uint32(b.status())
	case register.AINT:
		return b.aint
	default:
		return openBus
	}
}

func (b *Board) popInbound(width int) uint32 {
	b.stats.FIFOReads++

	if len(b.inbound) < width {
		b.stats.Underruns++
	}

	var v uint32

	for i := 0; i < width; i++ {
		by := byte(0xff)
		if len(b.inbound) > 0 {
			by = b.inbound[0]
			b.inbound = b.inbound[1:]
			b.stats.BytesIn++
		}

		v |= uint32(by) << (8 * i)
	}

	return v
}

func (b *Board) write(port uint16, width int, v uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.offset(port) {
	case register.AFIFO:
		b.pushOutbound(width, v)
	case register.AGCSTS:
		b.control(v)
	case register.AINT:
		b.aint = v
	}
}

func (b *Board) pushOutbound(width int, v uint32) {
	b.stats.FIFOWrites++

	for i := 0; i < width; i++ {
		if len(b.outbound) == b.depth {
			b.stats.Overruns++
			return
		}

		b.outbound = append(b.outbound, byte(v>>(8*i)))
		b.stats.BytesOut++
	}
}

func (b *Board) control(v uint32) {
	if v&(resetInboundFIFO|resetOutboundFIFO) != 0 {
		b.stats.Resets++
	}

	if v&resetInboundFIFO != 0 {
		b.inbound = nil
	}

	if v&resetOutboundFIFO != 0 {
		b.outbound = nil
	}
}

func (b *Board) offset(port uint16) uint16 {
	if port < b.base || port-b.base >= register.Span {
		panic(fmt.Sprintf("port 0x%x is not on the board at 0x%x",
			port, b.base))
	}

	return port - b.base
}

// In8 reads a byte from a board register.
func (b *Board) In8(port uint16) uint8 {
	return uint8(b.read(port, 1))
}

// In16 reads a half word from a board register.
func (b *Board) In16(port uint16) uint16 {
	return uint16(b.read(port, 2))
}

// In32 reads a word from a board register.
func (b *Board) In32(port uint16) uint32 {
	return b.read(port, 4)
}

// Out8 writes a byte to a board register.
func (b *Board) Out8(port uint16, v uint8) {
	b.write(port, 1, uint32(v))
}

// Out16 writes a half word to a board register.
func (b *Board) Out16(port uint16, v uint16) {
	b.write(port, 2, uint32(v))
}

// Out32 writes a word to a board register.
func (b *Board) Out32(port uint16, v uint32) {
	b.write(port, 4, v)
}

// Feed pushes bytes into the inbound FIFO from the peer side and returns how
// many fit.
func (b *Board) Feed(p []byte) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := min(len(p), b.depth-len(b.inbound))
	b.inbound = append(b.inbound, p[:n]...)

	return n
}

// Drain pops bytes from the outbound FIFO into p and returns how many.
func (b *Board) Drain(p []byte) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := copy(p, b.outbound)
	b.outbound = b.outbound[n:]

	return n
}

// Inbound returns the number of bytes waiting to be read by the add-on side.
func (b *Board) Inbound() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.inbound)
}

// Outbound returns the number of bytes waiting to be drained by the peer.
func (b *Board) Outbound() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.outbound)
}

// Interrupt returns the value last written to AINT.
func (b *Board) Interrupt() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.aint
}

// Stats returns the access counters.
func (b *Board) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.stats
}

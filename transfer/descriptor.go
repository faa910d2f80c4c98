package transfer

import (
	"fmt"
	"sync/atomic"
)

// MaxChunk is the widest single FIFO access.
const MaxChunk = 4

// ChunkSize returns how many bytes the next FIFO access moves when remaining
// bytes are left.
func ChunkSize(remaining uint64) int {
	if remaining >= MaxChunk {
		return MaxChunk
	}

	return int(remaining)
}

// A Descriptor tracks the progress of one transfer over a caller-owned
// buffer. Remaining plus Transferred always equals Total. Only the machine
// advances a descriptor, but the counters may be read from any goroutine.
type Descriptor struct {
	dir         Direction
	buf         []byte
	transferred atomic.Uint64
	req         Request
}

// NewDescriptor creates a descriptor for moving all of buf.
func NewDescriptor(dir Direction, buf []byte, req Request) *Descriptor {
	return &Descriptor{
		dir: dir,
		buf: buf,
		req: req,
	}
}

// Direction returns the transfer direction.
func (d *Descriptor) Direction() Direction {
	return d.dir
}

// Request returns the request the transfer belongs to.
func (d *Descriptor) Request() Request {
	return d.req
}

// Total returns the size of the transfer.
func (d *Descriptor) Total() uint64 {
	return uint64(len(d.buf))
}

// Transferred returns the number of bytes moved so far.
func (d *Descriptor) Transferred() uint64 {
	return d.transferred.Load()
}

// Remaining returns the number of bytes still to move.
func (d *Descriptor) Remaining() uint64 {
	return d.Total() - d.transferred.Load()
}

// Done tells whether all bytes are moved.
func (d *Descriptor) Done() bool {
	return d.Remaining() == 0
}

// chunk returns the buffer window the next n bytes move through.
func (d *Descriptor) chunk(n int) []byte {
	d.chunkMustFit(n)

	start := d.transferred.Load()

	return d.buf[start : start+uint64(n)]
}

// advance records that n bytes moved.
func (d *Descriptor) advance(n int) {
	d.chunkMustFit(n)

	d.transferred.Add(uint64(n))
}

func (d *Descriptor) chunkMustFit(n int) {
	if n < 1 || n > MaxChunk {
		panic(fmt.Sprintf("chunk size %d is not in 1..%d", n, MaxChunk))
	}

	if uint64(n) > d.Remaining() {
		panic(fmt.Sprintf("chunk size %d exceeds remaining %d",
			n, d.Remaining()))
	}
}

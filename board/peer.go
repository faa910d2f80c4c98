package board

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/sarchlab/pioxfer/logging"
)

// DefaultPollInterval is how long an idle peer waits before looking at the
// FIFOs again.
const DefaultPollInterval = time.Millisecond

// Peer plays the PCI side of the board. It streams a source into the inbound
// FIFO and drains the outbound FIFO into a sink.
type Peer struct {
	board    *Board
	src      io.Reader
	sink     io.Writer
	throttle *Throttle
	idle     time.Duration
	logger   *slog.Logger

	pending []byte
	srcDone bool
}

// NewPeer creates a peer for the board with no source, a discarding sink and
// no rate limit.
func NewPeer(b *Board) *Peer {
	return &Peer{
		board:  b,
		sink:   io.Discard,
		idle:   DefaultPollInterval,
		logger: logging.For(logging.ComponentBoard),
	}
}

// WithSource sets where inbound bytes come from.
func (p *Peer) WithSource(r io.Reader) *Peer {
	p.src = r
	return p
}

// WithSink sets where outbound bytes go.
func (p *Peer) WithSink(w io.Writer) *Peer {
	p.sink = w
	return p
}

// WithRate limits the peer to bps bytes per second in each direction
// combined. Zero disables the limit.
func (p *Peer) WithRate(bps uint64) *Peer {
	p.throttle = NewThrottle(bps)
	return p
}

// WithPollInterval sets how long an idle peer waits.
func (p *Peer) WithPollInterval(d time.Duration) *Peer {
	p.idle = d
	return p
}

// Run moves bytes until ctx is done or the source or sink fails. Reaching the
// end of the source is not a failure; the peer keeps draining.
func (p *Peer) Run(ctx context.Context) error {
	buf := make([]byte, p.board.Depth())

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		fed, err := p.feed()
		if err != nil {
			return err
		}

		drained, err := p.drain(buf)
		if err != nil {
			return err
		}

		p.throttle.ThrottleN(uint64(fed + drained))

		if fed+drained == 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(p.idle):
			}
		}
	}
}

func (p *Peer) feed() (int, error) {
	if p.src == nil {
		return 0, nil
	}

	if len(p.pending) == 0 && !p.srcDone {
		chunk := make([]byte, p.board.Depth())

		n, err := p.src.Read(chunk)
		p.pending = chunk[:n]

		switch {
		case errors.Is(err, io.EOF):
			p.srcDone = true
			p.logger.Debug("peer source exhausted")
		case err != nil:
			return 0, fmt.Errorf("peer source: %w", err)
		}
	}

	n := p.board.Feed(p.pending)
	p.pending = p.pending[n:]

	return n, nil
}

func (p *Peer) drain(buf []byte) (int, error) {
	n := p.board.Drain(buf)
	if n == 0 {
		return 0, nil
	}

	if _, err := p.sink.Write(buf[:n]); err != nil {
		return n, fmt.Errorf("peer sink: %w", err)
	}

	return n, nil
}

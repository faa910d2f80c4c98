// Package queue presents requests to a device one at a time.
package queue

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/sarchlab/pioxfer/device"
	"github.com/sarchlab/pioxfer/logging"
	"github.com/sarchlab/pioxfer/transfer"
)

// ErrStopped is returned when submitting to a stopped queue.
var ErrStopped = errors.New("queue stopped")

// A Handler performs device requests. It must complete every request it is
// given, possibly later from another goroutine.
type Handler interface {
	DeviceControl(req device.IoRequest)
}

// Sequential dispatches requests to a handler strictly one after another. The
// next request is presented only after the previous one completed.
type Sequential struct {
	handler Handler
	reqs    chan *Request
	logger  *slog.Logger

	mu     sync.RWMutex
	closed bool

	startOnce sync.Once
	stopOnce  sync.Once
	quit      chan struct{}
	stopped   chan struct{}
}

// NewSequential creates a queue that buffers up to depth requests.
func NewSequential(handler Handler, depth int) *Sequential {
	return &Sequential{
		handler: handler,
		reqs:    make(chan *Request, depth),
		logger:  logging.For(logging.ComponentQueue),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// WithLogger replaces the logger.
func (q *Sequential) WithLogger(l *slog.Logger) *Sequential {
	q.logger = l
	return q
}

// Start runs the dispatch loop on a new goroutine. The loop ends when ctx is
// done or Stop is called.
func (q *Sequential) Start(ctx context.Context) {
	q.startOnce.Do(func() {
		go q.run(ctx)
	})
}

// Stop ends the dispatch loop after the request in flight completes and
// cancels everything still queued. It waits for the loop to end.
func (q *Sequential) Stop() {
	q.stopOnce.Do(func() { close(q.quit) })

	q.startOnce.Do(q.shutdown)

	<-q.stopped
}

// Submit queues a request. It blocks while the queue is full.
func (q *Sequential) Submit(req *Request) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrStopped
	}

	select {
	case q.reqs <- req:
		return nil
	case <-q.quit:
		return ErrStopped
	case <-req.ctx.Done():
		return req.ctx.Err()
	}
}

// Do submits a request and waits for it.
func (q *Sequential) Do(
	ctx context.Context,
	code device.ControlCode,
	buf []byte,
) (uint64, error) {
	req := NewRequest(ctx, code, buf)

	if err := q.Submit(req); err != nil {
		return 0, err
	}

	return req.Wait()
}

func (q *Sequential) run(ctx context.Context) {
	defer q.shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.quit:
			return
		case req := <-q.reqs:
			q.present(req)
		}
	}
}

func (q *Sequential) present(req *Request) {
	switch {
	case req.Code().IsTransfer() && len(req.Buffer()) == 0:
		req.Complete(transfer.StatusSuccess, 0)
		return
	case req.IsCancelled():
		req.Complete(transfer.StatusCancelled, 0)
		return
	}

	q.logger.Debug("presenting request", "request", req.ID(), "code", req.Code())

	q.handler.DeviceControl(req)
	<-req.Done()
}

// shutdown refuses further submissions and cancels what is still queued.
func (q *Sequential) shutdown() {
	q.stopOnce.Do(func() { close(q.quit) })

	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.cancelQueued()
	close(q.stopped)
}

func (q *Sequential) cancelQueued() {
	for {
		select {
		case req := <-q.reqs:
			req.Complete(transfer.StatusCancelled, 0)
		default:
			return
		}
	}
}

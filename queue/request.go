package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/sarchlab/pioxfer/device"
	"github.com/sarchlab/pioxfer/idgen"
	"github.com/sarchlab/pioxfer/transfer"
)

// Request is a device request whose cancellation follows a context.
type Request struct {
	id   string
	ctx  context.Context
	code device.ControlCode
	buf  []byte

	mu          sync.Mutex
	completed   bool
	status      transfer.Status
	information uint64
	done        chan struct{}
}

// NewRequest creates a request. The request counts as cancelled once ctx is
// done.
func NewRequest(
	ctx context.Context,
	code device.ControlCode,
	buf []byte,
) *Request {
	return &Request{
		id:   idgen.Generate(),
		ctx:  ctx,
		code: code,
		buf:  buf,
		done: make(chan struct{}),
	}
}

// ID returns the unique ID of the request.
func (r *Request) ID() string {
	return r.id
}

// Code returns the requested operation.
func (r *Request) Code() device.ControlCode {
	return r.code
}

// Buffer returns the data buffer.
func (r *Request) Buffer() []byte {
	return r.buf
}

// IsCancelled tells if the request's context is done.
func (r *Request) IsCancelled() bool {
	return r.ctx.Err() != nil
}

// Complete records the terminal status. Completing a request twice panics.
func (r *Request) Complete(status transfer.Status, information uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.completed {
		panic(fmt.Sprintf("request %s completed twice, first with %s, then %s",
			r.id, r.status, status))
	}

	r.completed = true
	r.status = status
	r.information = information
	close(r.done)
}

// Done returns a channel that is closed when the request completes.
func (r *Request) Done() <-chan struct{} {
	return r.done
}

// Result returns the terminal status and information. It must only be called
// after Done is closed.
func (r *Request) Result() (transfer.Status, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.completed {
		panic(fmt.Sprintf("request %s is not completed", r.id))
	}

	return r.status, r.information
}

// Wait blocks until the request completes and returns the number of bytes
// reported with it, together with the error of the completion status.
func (r *Request) Wait() (uint64, error) {
	<-r.done

	status, information := r.Result()

	return information, status.Err()
}

var _ device.IoRequest = (*Request)(nil)

package transfer

import (
	"errors"
	"fmt"
)

// Status is the completion code reported to a request.
type Status int

// Completion codes.
const (
	StatusSuccess Status = iota
	StatusPending
	StatusCancelled
	StatusInvalidParameter
	StatusBufferTooSmall
	StatusResourceExhausted
	StatusInvalidDeviceRequest
)

// Errors that correspond to the non-success completion codes.
var (
	ErrCancelled            = errors.New("request cancelled")
	ErrInvalidParameter     = errors.New("invalid parameter")
	ErrBufferTooSmall       = errors.New("buffer too small")
	ErrResourceExhausted    = errors.New("insufficient resources")
	ErrInvalidDeviceRequest = errors.New("invalid device request")
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusPending:
		return "Pending"
	case StatusCancelled:
		return "Cancelled"
	case StatusInvalidParameter:
		return "InvalidParameter"
	case StatusBufferTooSmall:
		return "BufferTooSmall"
	case StatusResourceExhausted:
		return "ResourceExhausted"
	case StatusInvalidDeviceRequest:
		return "InvalidDeviceRequest"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Err returns nil for Success and Pending, and the matching error otherwise.
func (s Status) Err() error {
	switch s {
	case StatusSuccess, StatusPending:
		return nil
	case StatusCancelled:
		return ErrCancelled
	case StatusInvalidParameter:
		return ErrInvalidParameter
	case StatusBufferTooSmall:
		return ErrBufferTooSmall
	case StatusResourceExhausted:
		return ErrResourceExhausted
	case StatusInvalidDeviceRequest:
		return ErrInvalidDeviceRequest
	default:
		return fmt.Errorf("unknown status %d", int(s))
	}
}

// StatusOf maps an error back to a completion code. Unknown errors are
// reported as invalid device requests.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, ErrCancelled):
		return StatusCancelled
	case errors.Is(err, ErrInvalidParameter):
		return StatusInvalidParameter
	case errors.Is(err, ErrBufferTooSmall):
		return StatusBufferTooSmall
	case errors.Is(err, ErrResourceExhausted):
		return StatusResourceExhausted
	default:
		return StatusInvalidDeviceRequest
	}
}

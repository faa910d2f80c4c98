package device

import (
	"encoding/binary"
	"fmt"

	"github.com/sarchlab/pioxfer/transfer"
)

// ControlCode selects a device operation.
type ControlCode uint32

// Control codes understood by DeviceControl.
const (
	CodeGetVersion ControlCode = 0x800
	CodeReset      ControlCode = 0x801
	CodeReadDMA    ControlCode = 0x804
	CodeWriteDMA   ControlCode = 0x805
)

// Version is the driver interface version, major in the high half.
const Version uint32 = 0x0004000A

// VersionString formats a version word as major.minor.
func VersionString(v uint32) string {
	return fmt.Sprintf("%d.%d", v>>16, v&0xffff)
}

func (c ControlCode) String() string {
	switch c {
	case CodeGetVersion:
		return "GetVersion"
	case CodeReset:
		return "Reset"
	case CodeReadDMA:
		return "ReadDMA"
	case CodeWriteDMA:
		return "WriteDMA"
	default:
		return fmt.Sprintf("ControlCode(0x%x)", uint32(c))
	}
}

// IsTransfer tells if the code starts a data transfer.
func (c ControlCode) IsTransfer() bool {
	return c == CodeReadDMA || c == CodeWriteDMA
}

// Direction returns the transfer direction of a transfer code.
func (c ControlCode) Direction() transfer.Direction {
	if c == CodeWriteDMA {
		return transfer.Write
	}

	return transfer.Read
}

// IoRequest is a request addressed to DeviceControl.
type IoRequest interface {
	transfer.Request

	// Code returns the requested operation.
	Code() ControlCode

	// Buffer returns the data buffer. Reads and GetVersion fill it, writes
	// take their data from it.
	Buffer() []byte
}

// DeviceControl performs the operation selected by the request's code. The
// request is completed here unless a transfer has been started, in which case
// the transfer's worker completes it.
func (d *Device) DeviceControl(req IoRequest) {
	switch code := req.Code(); code {
	case CodeGetVersion:
		buf := req.Buffer()
		if len(buf) < 4 {
			req.Complete(transfer.StatusBufferTooSmall, 0)
			return
		}

		binary.LittleEndian.PutUint32(buf, Version)
		req.Complete(transfer.StatusSuccess, 4)

	case CodeReset:
		req.Complete(d.Reset(), 0)

	case CodeReadDMA, CodeWriteDMA:
		status := d.BeginTransfer(req, code.Direction(), req.Buffer())
		if status != transfer.StatusPending {
			req.Complete(status, 0)
		}

	default:
		d.logger.Warn("unknown control code",
			"request", req.ID(), "code", code)
		req.Complete(transfer.StatusInvalidDeviceRequest, 0)
	}
}

package transfer

// Direction tells which way the bytes move.
type Direction int

// Directions.
const (
	// Read moves bytes from the device FIFO into memory.
	Read Direction = iota

	// Write moves bytes from memory into the device FIFO.
	Write
)

func (d Direction) String() string {
	if d == Write {
		return "write"
	}

	return "read"
}

// Request is the externally owned request a transfer works on behalf of.
type Request interface {
	// ID identifies the request in logs and traces.
	ID() string

	// IsCancelled samples the request's cancellation flag.
	IsCancelled() bool

	// Complete reports the terminal status and the number of bytes moved.
	// It is called exactly once per request.
	Complete(status Status, information uint64)
}

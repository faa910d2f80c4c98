package transfer

import "time"

// Default cadences and delays.
const (
	DefaultReadCheckInterval  = 512
	DefaultWriteCheckInterval = 0
	DefaultYieldDelay         = 10 * time.Millisecond
)

// Policy decides when a running transfer looks at its request's cancellation
// flag and how long it backs off while the hardware is not ready.
//
// A checkpoint follows every poll that finds the hardware not ready. After a
// chunk moves, a checkpoint follows only if the run of chunks moved since the
// last stall is longer than the direction's check interval. An interval of 0
// checks after every chunk.
type Policy struct {
	ReadCheckInterval  uint64
	WriteCheckInterval uint64
	YieldDelay         time.Duration
}

// DefaultPolicy checks reads every 512 chunks, writes on every chunk, and
// yields for 10ms.
func DefaultPolicy() Policy {
	return Policy{
		ReadCheckInterval:  DefaultReadCheckInterval,
		WriteCheckInterval: DefaultWriteCheckInterval,
		YieldDelay:         DefaultYieldDelay,
	}
}

func (p Policy) checkInterval(dir Direction) uint64 {
	if dir == Write {
		return p.WriteCheckInterval
	}

	return p.ReadCheckInterval
}

// checkDue tells if a checkpoint follows a move that made the run this long.
func (p Policy) checkDue(dir Direction, run uint64) bool {
	return run > p.checkInterval(dir)
}

// A Sleeper suspends the calling goroutine.
type Sleeper interface {
	Sleep(d time.Duration)
}

// SleeperFunc adapts a function to the Sleeper interface.
type SleeperFunc func(d time.Duration)

// Sleep calls f.
func (f SleeperFunc) Sleep(d time.Duration) {
	f(d)
}

// RealSleeper sleeps on the wall clock.
var RealSleeper Sleeper = SleeperFunc(time.Sleep)

package board

import "time"

// Throttle limits a byte stream to a rate on average. It reads the clock only
// after enough bytes passed to make a check worthwhile.
// Not safe for concurrent use.
type Throttle struct {
	nsPerByte  float64
	sent       uint64
	unchecked  uint64
	checkEvery uint64
	startTime  time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

// NewThrottle creates a throttle for bps bytes per second. If bps is 0,
// throttling is disabled and nil is returned; a nil Throttle never blocks.
func NewThrottle(bps uint64) *Throttle {
	if bps == 0 {
		return nil
	}

	return &Throttle{
		nsPerByte: float64(time.Second) / float64(bps),
		startTime: time.Now(),

		// About every 10ms worth of bytes, at least every word and at most
		// every 4KiB.
		checkEvery: min(max(bps/100, 4), 4096),

		now:   time.Now,
		sleep: time.Sleep,
	}
}

// ThrottleN records n more bytes and blocks until they are allowed.
// It does not catch up by allowing faster streaming after being delayed.
func (t *Throttle) ThrottleN(n uint64) {
	if t == nil || n == 0 {
		return
	}

	t.sent += n
	t.unchecked += n

	if t.unchecked < t.checkEvery {
		return
	}

	t.unchecked = 0

	expected := t.startTime.Add(time.Duration(float64(t.sent) * t.nsPerByte))
	if now := t.now(); now.Before(expected) {
		t.sleep(expected.Sub(now))
	}
}

package device

import (
	"fmt"
	"sync/atomic"

	"github.com/sarchlab/pioxfer/transfer"
)

// A Launcher starts transfer workers.
type Launcher interface {
	// Launch runs work on a fresh worker. An error means work will never run.
	Launch(work func()) error
}

// LauncherFunc adapts a function to the Launcher interface.
type LauncherFunc func(work func()) error

// Launch calls f.
func (f LauncherFunc) Launch(work func()) error {
	return f(work)
}

// GoroutineLauncher runs each worker on its own goroutine. It can be shared
// by devices to bound the number of workers in the process.
type GoroutineLauncher struct {
	limit   int64
	running atomic.Int64
}

// NewGoroutineLauncher creates a launcher that allows at most limit workers
// at a time. A limit of 0 or less means no limit.
func NewGoroutineLauncher(limit int) *GoroutineLauncher {
	return &GoroutineLauncher{limit: int64(limit)}
}

// Launch starts work on a new goroutine.
func (l *GoroutineLauncher) Launch(work func()) error {
	n := l.running.Add(1)
	if l.limit > 0 && n > l.limit {
		l.running.Add(-1)
		return fmt.Errorf("%w: %d workers running",
			transfer.ErrResourceExhausted, l.limit)
	}

	go func() {
		defer l.running.Add(-1)
		work()
	}()

	return nil
}

// Running returns the number of workers that have not returned yet.
func (l *GoroutineLauncher) Running() int {
	return int(l.running.Load())
}

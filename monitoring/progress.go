package monitoring

import (
	"sync"
	"time"
)

// A ProgressBar is a tracker of the progress of one transfer.
type ProgressBar struct {
	sync.Mutex
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	Total     uint64    `json:"total"`
	Finished  uint64    `json:"finished"`
	Stalls    uint64    `json:"stalls"`
}

// SetFinished records how many bytes have been moved so far. Progress never
// goes backwards.
func (b *ProgressBar) SetFinished(done, total uint64) {
	b.Lock()
	defer b.Unlock()

	if total > b.Total {
		b.Total = total
	}

	if done > b.Finished {
		b.Finished = done
	}
}

// IncrementStalls counts a poll that found the FIFO not ready.
func (b *ProgressBar) IncrementStalls() {
	b.Lock()
	defer b.Unlock()

	b.Stalls++
}

type progressBarView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	Total     uint64    `json:"total"`
	Finished  uint64    `json:"finished"`
	Stalls    uint64    `json:"stalls"`
}

func (b *ProgressBar) view() progressBarView {
	b.Lock()
	defer b.Unlock()

	return progressBarView{
		ID:        b.ID,
		Name:      b.Name,
		StartTime: b.StartTime,
		Total:     b.Total,
		Finished:  b.Finished,
		Stalls:    b.Stalls,
	}
}

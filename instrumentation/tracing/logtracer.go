package tracing

import (
	"log/slog"
	"sync"
	"time"
)

// LogTracer writes task lifecycles to a structured logger. Starts and steps
// are logged at debug level, ends at info level.
type LogTracer struct {
	logger *slog.Logger

	lock   sync.Mutex
	starts map[string]Task
}

// NewLogTracer creates a LogTracer that writes to logger.
func NewLogTracer(logger *slog.Logger) *LogTracer {
	return &LogTracer{
		logger: logger,
		starts: make(map[string]Task),
	}
}

// StartTask logs the start of the task.
func (t *LogTracer) StartTask(task Task) {
	t.lock.Lock()
	t.starts[task.ID] = task
	t.lock.Unlock()

	t.logger.Debug("task start",
		"id", task.ID, "kind", task.Kind, "what", task.What,
		"where", task.Where)
}

// StepTask logs the step.
func (t *LogTracer) StepTask(task Task) {
	step := task.Steps[0]
	t.logger.Debug("task step", "id", task.ID, "step", step.What,
		"detail", step.Detail)
}

// EndTask logs the end of the task together with its duration.
func (t *LogTracer) EndTask(task Task) {
	t.lock.Lock()
	start, ok := t.starts[task.ID]
	delete(t.starts, task.ID)
	t.lock.Unlock()

	if !ok {
		return
	}

	t.logger.Info("task end",
		"id", task.ID, "kind", start.Kind, "what", start.What,
		"where", start.Where, "result", task.Detail,
		"duration", task.EndTime.Sub(start.StartTime).Round(time.Microsecond))
}

package tracing

import (
	"fmt"
	"sync"
	"time"

	"github.com/sarchlab/pioxfer/datarecording"
)

type taskTableEntry struct {
	ID        string
	ParentID  string
	Kind      string
	What      string
	Location  string
	Result    string
	StartTime float64
	EndTime   float64
}

type stepTableEntry struct {
	TaskID string
	What   string
	Detail string
	Time   float64
}

// DBTracer is a tracer that can store tasks into a database through a
// DataRecorder.
type DBTracer struct {
	mu      sync.Mutex
	backend datarecording.DataRecorder

	tracingTasks map[string]Task
}

// NewDBTracer creates a new DBTracer. It creates the trace and trace_steps
// tables in the recorder.
func NewDBTracer(dataRecorder datarecording.DataRecorder) *DBTracer {
	dataRecorder.CreateTable("trace", taskTableEntry{})
	dataRecorder.CreateTable("trace_steps", stepTableEntry{})

	return &DBTracer{
		backend:      dataRecorder,
		tracingTasks: make(map[string]Task),
	}
}

// StartTask marks the start of a task.
func (t *DBTracer) StartTask(task Task) {
	startingTaskMustBeValid(task)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.tracingTasks[task.ID] = task
}

func startingTaskMustBeValid(task Task) {
	if task.ID == "" {
		panic("task ID must be set")
	}

	if task.Kind == "" {
		panic("task kind must be set")
	}

	if task.What == "" {
		panic("task what must be set")
	}

	if task.Where == "" {
		panic("task location must be set")
	}
}

// StepTask records a step of a task.
func (t *DBTracer) StepTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.tracingTasks[task.ID]; !ok {
		return
	}

	step := task.Steps[0]
	detail := ""
	if step.Detail != nil {
		detail = fmt.Sprint(step.Detail)
	}

	t.backend.InsertData("trace_steps", stepTableEntry{
		TaskID: task.ID,
		What:   step.What,
		Detail: detail,
		Time:   toSeconds(step.Time),
	})
}

// EndTask writes the finished task.
func (t *DBTracer) EndTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	originalTask, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	delete(t.tracingTasks, task.ID)

	result := ""
	if task.Detail != nil {
		result = fmt.Sprint(task.Detail)
	}

	t.backend.InsertData("trace", taskTableEntry{
		ID:        originalTask.ID,
		ParentID:  originalTask.ParentID,
		Kind:      originalTask.Kind,
		What:      originalTask.What,
		Location:  originalTask.Where,
		Result:    result,
		StartTime: toSeconds(originalTask.StartTime),
		EndTime:   toSeconds(task.EndTime),
	})
}

// Terminate drops unfinished tasks and flushes the backend.
func (t *DBTracer) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.tracingTasks = make(map[string]Task)
	t.backend.Flush()
}

func toSeconds(tm time.Time) float64 {
	return float64(tm.UnixNano()) / float64(time.Second)
}

package tracing

import "time"

// A TaskStep represents a milestone in the processing of task.
type TaskStep struct {
	Time   time.Time `json:"time"`
	What   string    `json:"what"`
	Detail any       `json:"-"`
}

// A Task is a task.
type Task struct {
	ID        string     `json:"id"`
	ParentID  string     `json:"parent_id"`
	Kind      string     `json:"kind"`
	What      string     `json:"what"`
	Where     string     `json:"where"`
	StartTime time.Time  `json:"start_time"`
	EndTime   time.Time  `json:"end_time"`
	Steps     []TaskStep `json:"steps"`
	Detail    any        `json:"-"`
}

// ProgressEvent reports how far a task has come.
type ProgressEvent struct {
	TaskID string    `json:"task_id"`
	Time   time.Time `json:"time"`
	Done   uint64    `json:"done"`
	Total  uint64    `json:"total"`
}

// TaskFilter is a function that can filter interesting tasks. If this function
// returns true, the task is considered useful.
type TaskFilter func(t Task) bool

// AllTasks accepts every task.
func AllTasks(Task) bool {
	return true
}

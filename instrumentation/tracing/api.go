// Package tracing layers task tracing on top of the hooking primitives.
//
// A device reports each transfer as a task. The task starts when a worker is
// launched, receives steps when the poll loop stalls or passes a cancellation
// checkpoint, receives progress updates, and ends with the terminal status.
// Tracers observe these events by registering a hook on the device.
package tracing

import (
	"time"

	"github.com/sarchlab/pioxfer/instrumentation/hooking"
)

// NamedHookable represent something both have a name and can be hooked.
type NamedHookable interface {
	Name() string
	hooking.Hookable
}

// A list of hook poses for the hooks to apply to.
var (
	HookPosTaskStart    = &hooking.HookPos{Name: "TaskStart"}
	HookPosTaskStep     = &hooking.HookPos{Name: "TaskStep"}
	HookPosTaskProgress = &hooking.HookPos{Name: "TaskProgress"}
	HookPosTaskEnd      = &hooking.HookPos{Name: "TaskEnd"}
)

// StartTask notifies the hooks that hook to the domain about the start of a
// task.
func StartTask(
	id string,
	parentID string,
	domain NamedHookable,
	kind string,
	what string,
	detail any,
) {
	if domain == nil || domain.NumHooks() == 0 {
		return
	}

	allRequiredFieldsMustBeNotEmpty(id, kind, what)
	domainMustHaveName(domain)

	task := Task{
		ID:        id,
		ParentID:  parentID,
		Kind:      kind,
		What:      what,
		Where:     domain.Name(),
		StartTime: time.Now(),
		Detail:    detail,
	}
	domain.InvokeHook(hooking.HookCtx{
		Domain: domain,
		Item:   task,
		Pos:    HookPosTaskStart,
	})
}

func allRequiredFieldsMustBeNotEmpty(id, kind, what string) {
	if id == "" {
		panic("id must not be empty")
	}

	if kind == "" {
		panic("kind must not be empty")
	}

	if what == "" {
		panic("what must not be empty")
	}
}

func domainMustHaveName(domain NamedHookable) {
	if domain.Name() == "" {
		panic("domain must have a name")
	}
}

// AddTaskStep marks that a milestone has been reached when processing a task.
func AddTaskStep(
	id string,
	domain NamedHookable,
	what string,
	detail any,
) {
	if domain == nil || domain.NumHooks() == 0 {
		return
	}

	step := TaskStep{
		Time:   time.Now(),
		What:   what,
		Detail: detail,
	}
	task := Task{
		ID:    id,
		Steps: []TaskStep{step},
	}
	domain.InvokeHook(hooking.HookCtx{
		Domain: domain,
		Item:   task,
		Pos:    HookPosTaskStep,
	})
}

// ReportProgress tells the hooks how many units of a task are done.
func ReportProgress(
	id string,
	domain NamedHookable,
	done, total uint64,
) {
	if domain == nil || domain.NumHooks() == 0 {
		return
	}

	domain.InvokeHook(hooking.HookCtx{
		Domain: domain,
		Item: ProgressEvent{
			TaskID: id,
			Time:   time.Now(),
			Done:   done,
			Total:  total,
		},
		Pos: HookPosTaskProgress,
	})
}

// EndTask notifies the hooks about the end of a task. The detail usually
// carries the outcome of the task.
func EndTask(
	id string,
	domain NamedHookable,
	detail any,
) {
	if domain == nil || domain.NumHooks() == 0 {
		return
	}

	task := Task{
		ID:      id,
		EndTime: time.Now(),
		Detail:  detail,
	}
	domain.InvokeHook(hooking.HookCtx{
		Domain: domain,
		Item:   task,
		Pos:    HookPosTaskEnd,
	})
}

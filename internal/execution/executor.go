package execution

import (
	"context"
	"time"
)

// Status classifies the outcome of one task
type Status int

const (
	// StatusSucceeded means the task produced its output
	StatusSucceeded Status = iota
	// StatusSkipped means the task declined the input on purpose; not an error
	StatusSkipped
	// StatusFailed means the task errored or timed out
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Outcome is the uniform result of a task
type Outcome struct {
	Status Status
	Reason string // Why the task failed
	Output string // Diagnostic output captured from the task
}

// Task is one unit of work for the pool
type Task struct {
	Name string
	Do   func(ctx context.Context) Outcome
}

// Result pairs a task with its outcome
type Result struct {
	Name     string
	Outcome  Outcome
	Duration time.Duration
}

// Executor runs tasks and returns one result per task, in task order
type Executor interface {
	Execute(ctx context.Context, tasks []Task) ([]Result, time.Duration)
}

// Progress receives running totals while a pool drains
type Progress interface {
	Update(succeeded, skipped, failed int)
	Finish()
}

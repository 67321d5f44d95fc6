package execution

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// WorkerPool runs tasks on a fixed number of workers pulling from a shared queue.
// A failing task never stops the others; Execute returns after every task has finished.
type WorkerPool struct {
	workers  int
	progress Progress
}

// NewWorkerPool creates a new WorkerPool
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	return &WorkerPool{workers: workers}
}

// SetProgress sets the progress reporter for the worker pool
func (wp *WorkerPool) SetProgress(progress Progress) {
	wp.progress = progress
}

// Workers returns the concurrency limit
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

// Execute runs all tasks and returns their results in task order.
func (wp *WorkerPool) Execute(ctx context.Context, tasks []Task) ([]Result, time.Duration) {
	if len(tasks) == 0 {
		return nil, 0
	}

	queue := make(chan int, len(tasks))
	for i := range tasks {
		queue <- i
	}
	close(queue)

	results := make([]Result, len(tasks))
	var mu sync.Mutex
	var succeeded, skipped, failed int
	startTime := time.Now()

	workerCount := wp.workers
	if workerCount > len(tasks) {
		workerCount = len(tasks)
	}

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range queue {
				task := tasks[idx]
				start := time.Now()
				outcome := run(ctx, task)
				results[idx] = Result{Name: task.Name, Outcome: outcome, Duration: time.Since(start)}

				mu.Lock()
				switch outcome.Status {
				case StatusSucceeded:
					succeeded++
				case StatusSkipped:
					skipped++
				default:
					failed++
				}
				if wp.progress != nil {
					wp.progress.Update(succeeded, skipped, failed)
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wp.progress != nil {
		wp.progress.Finish()
	}
	return results, time.Since(startTime)
}

// run shields the pool from a panicking task.
func run(ctx context.Context, task Task) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = Outcome{Status: StatusFailed, Reason: "panic", Output: fmt.Sprint(r)}
		}
	}()
	if err := ctx.Err(); err != nil {
		return Outcome{Status: StatusFailed, Reason: err.Error()}
	}
	return task.Do(ctx)
}

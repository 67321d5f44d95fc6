package execution

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type recordingProgress struct {
	mu       sync.Mutex
	updates  int
	last     [3]int
	finished bool
}

func (p *recordingProgress) Update(succeeded, skipped, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates++
	p.last = [3]int{succeeded, skipped, failed}
}

func (p *recordingProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finished = true
}

func TestWorkerPool_RunsEveryTask(t *testing.T) {
	defer goleak.VerifyNone(t)

	var tasks []Task
	for i := 0; i < 10; i++ {
		i := i
		tasks = append(tasks, Task{
			Name: fmt.Sprintf("task-%d", i),
			Do: func(ctx context.Context) Outcome {
				switch i % 3 {
				case 0:
					return Outcome{Status: StatusSucceeded}
				case 1:
					return Outcome{Status: StatusSkipped}
				default:
					return Outcome{Status: StatusFailed, Reason: "boom"}
				}
			},
		})
	}

	pool := NewWorkerPool(3)
	progress := &recordingProgress{}
	pool.SetProgress(progress)

	results, _ := pool.Execute(context.Background(), tasks)
	require.Len(t, results, 10)
	for i, r := range results {
		assert.Equal(t, fmt.Sprintf("task-%d", i), r.Name)
	}
	assert.Equal(t, StatusFailed, results[2].Outcome.Status)
	assert.Equal(t, "boom", results[2].Outcome.Reason)

	assert.Equal(t, 10, progress.updates)
	assert.Equal(t, [3]int{4, 3, 3}, progress.last)
	assert.True(t, progress.finished)
}

func TestWorkerPool_BoundsConcurrency(t *testing.T) {
	defer goleak.VerifyNone(t)

	var running, peak int32
	task := Task{Do: func(ctx context.Context) Outcome {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return Outcome{Status: StatusSucceeded}
	}}

	tasks := make([]Task, 12)
	for i := range tasks {
		tasks[i] = task
	}

	NewWorkerPool(2).Execute(context.Background(), tasks)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestWorkerPool_RecoversPanics(t *testing.T) {
	results, _ := NewWorkerPool(1).Execute(context.Background(), []Task{
		{Name: "bad", Do: func(ctx context.Context) Outcome { panic("decoder exploded") }},
		{Name: "good", Do: func(ctx context.Context) Outcome { return Outcome{Status: StatusSucceeded} }},
	})
	require.Len(t, results, 2)
	assert.Equal(t, StatusFailed, results[0].Outcome.Status)
	assert.Contains(t, results[0].Outcome.Output, "decoder exploded")
	assert.Equal(t, StatusSucceeded, results[1].Outcome.Status)
}

func TestWorkerPool_Empty(t *testing.T) {
	results, d := NewWorkerPool(0).Execute(context.Background(), nil)
	assert.Nil(t, results)
	assert.Zero(t, d)
	assert.Equal(t, 1, NewWorkerPool(0).Workers())
}

// Package pool runs a fixed batch of jobs on a bounded number of workers and
// gathers their outcomes.
//
// It is the batch counterpart of a long-running task engine: there is no
// queue to keep alive between calls, every call starts its workers, drains
// its jobs and returns once all outcomes are in.
package pool

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	logx "folionotify/pkg/logx"
)

var ErrPanic = errors.New("job panicked")

const DefaultWorkers = 10

type Config struct {
	// Workers caps concurrently running jobs. <= 0 means DefaultWorkers.
	Workers int
	// Timeout bounds each job. 0 disables the per-job timeout.
	Timeout time.Duration
}

// Job is a named unit of work producing a T.
type Job[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, error)
}

// Outcome is the result of one job. Index is the job's position in the input.
type Outcome[T any] struct {
	Index    int
	Name     string
	Value    T
	Err      error
	Duration time.Duration
}

// Run executes jobs with at most cfg.Workers in flight and returns one
// outcome per job, in completion order. A failing or panicking job never
// affects the others. Run returns when every job has finished.
func Run[T any](ctx context.Context, cfg Config, log logx.Logger, jobs []Job[T]) []Outcome[T] {
	if ctx == nil {
		ctx = context.Background()
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}
	if len(jobs) == 0 {
		return nil
	}

	queue := make(chan int, len(jobs))
	for i := range jobs {
		queue <- i
	}
	close(queue)

	results := make(chan Outcome[T], len(jobs))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range queue {
				results <- execOne(ctx, cfg.Timeout, log, idx, jobs[idx])
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]Outcome[T], 0, len(jobs))
	for o := range results {
		out = append(out, o)
	}
	return out
}

func execOne[T any](ctx context.Context, timeout time.Duration, log logx.Logger, idx int, job Job[T]) (o Outcome[T]) {
	o = Outcome[T]{Index: idx, Name: job.Name}
	start := time.Now()
	defer func() { o.Duration = time.Since(start) }()

	if job.Run == nil {
		o.Err = fmt.Errorf("job %q: Run is nil", job.Name)
		return o
	}
	if err := ctx.Err(); err != nil {
		o.Err = err
		return o
	}

	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	// Guard against job panics: convert to error so one bad job can't take
	// down the whole batch.
	defer func() {
		if r := recover(); r != nil {
			o.Err = fmt.Errorf("%w: %v", ErrPanic, r)
			log.Error("job.panic", logx.String("job", job.Name), logx.Any("panic", r), logx.Stack(string(debug.Stack())))
		}
	}()
	o.Value, o.Err = job.Run(runCtx)
	return o
}

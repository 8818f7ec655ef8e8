package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// launchStagger spaces worker launches in sync mode.
	launchStagger = 10 * time.Millisecond
	// iterationPause is the extra pause each sync-mode worker takes
	// between iterations.
	iterationPause = 10 * time.Millisecond
)

// Result captures execution summary.
type Result struct {
	Workers  int
	Duration time.Duration
}

// Runner coordinates a pool of workers against a shared deadline.
type Runner struct {
	opt     Options
	limiter *rate.Limiter
}

func New(opt Options) *Runner {
	opt.normalize()
	return &Runner{opt: opt, limiter: opt.LimiterFactory(opt.RatePerSecond)}
}

// Run builds one task per worker, launches the pool, and blocks according to
// the configured mode. In async mode it returns when every worker's loop has
// exited. In sync mode it returns once the duration has elapsed since the
// pool started, even if staggered late workers are still draining a final
// iteration; those workers keep recording into the shared collector until
// their own loop condition fails.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	tasks := make([]Task, r.opt.Concurrency)
	for i := range tasks {
		task, err := r.opt.TaskFactory()
		if err != nil {
			return Result{}, fmt.Errorf("starting worker %d: %w", i, err)
		}
		tasks[i] = task
	}

	start := time.Now()

	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for _, task := range tasks {
		task := task
		go func() {
			defer wg.Done()
			r.workerLoop(ctx, task, start)
		}()
		if r.opt.Mode == ModeSync {
			time.Sleep(launchStagger)
		}
	}

	if r.opt.Mode == ModeSync {
		select {
		case <-ctx.Done():
		case <-time.After(time.Until(start.Add(r.opt.Duration))):
		}
	} else {
		wg.Wait()
	}

	return Result{
		Workers:  len(tasks),
		Duration: time.Since(start),
	}, nil
}

// workerLoop repeats the task until the shared deadline passes or the context
// is canceled. Both are checked only between iterations, so an iteration that
// is in flight when the deadline hits runs to completion.
func (r *Runner) workerLoop(ctx context.Context, task Task, start time.Time) {
	for time.Since(start) < r.opt.Duration {
		if err := r.limiter.Wait(ctx); err != nil {
			return
		}
		task.Run(ctx)
		if r.opt.Mode == ModeSync {
			select {
			case <-ctx.Done():
				return
			case <-time.After(iterationPause):
			}
		} else if ctx.Err() != nil {
			return
		}
	}
}

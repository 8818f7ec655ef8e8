package runner_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/fluxload/flux/internal/runner"
)

// fakeTask counts iterations with a fixed simulated latency.
type fakeTask struct {
	latency time.Duration
	calls   *int64
}

func (f *fakeTask) Run(ctx context.Context) {
	if f.calls != nil {
		atomic.AddInt64(f.calls, 1)
	}
	if f.latency > 0 {
		select {
		case <-time.After(f.latency):
		case <-ctx.Done():
		}
	}
}

func TestAsyncRunWaitsForAllWorkers(t *testing.T) {
	var calls int64
	var made int64
	r := runner.New(runner.Options{
		Concurrency: 5,
		Duration:    50 * time.Millisecond,
		TaskFactory: func() (runner.Task, error) {
			atomic.AddInt64(&made, 1)
			return &fakeTask{latency: time.Millisecond, calls: &calls}, nil
		},
	})
	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Workers != 5 {
		t.Errorf("Workers = %d, want 5", res.Workers)
	}
	if made != 5 {
		t.Errorf("factory invoked %d times, want once per worker", made)
	}
	if atomic.LoadInt64(&calls) == 0 {
		t.Errorf("no iterations executed")
	}
	if res.Duration < 50*time.Millisecond {
		t.Errorf("Run returned before the deadline: %s", res.Duration)
	}
}

func TestFactoryErrorAbortsRun(t *testing.T) {
	boom := errors.New("no client")
	r := runner.New(runner.Options{
		Concurrency: 3,
		Duration:    time.Second,
		TaskFactory: func() (runner.Task, error) { return nil, boom },
	})
	start := time.Now()
	_, err := r.Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped factory error", err)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Errorf("factory failure did not abort before the run started")
	}
}

func TestSyncRunReturnsAtDeadline(t *testing.T) {
	var calls int64
	// Slow iterations so workers are still draining when the deadline hits.
	r := runner.New(runner.Options{
		Concurrency: 4,
		Duration:    80 * time.Millisecond,
		Mode:        runner.ModeSync,
		TaskFactory: func() (runner.Task, error) {
			return &fakeTask{latency: 60 * time.Millisecond, calls: &calls}, nil
		},
	})
	start := time.Now()
	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	elapsed := time.Since(start)
	if elapsed < 80*time.Millisecond || elapsed > 250*time.Millisecond {
		t.Errorf("sync return time off: %s", elapsed)
	}
	if res.Workers != 4 {
		t.Errorf("Workers = %d, want 4", res.Workers)
	}
}

func TestContextCancelStopsWorkers(t *testing.T) {
	var calls int64
	ctx, cancel := context.WithCancel(context.Background())
	r := runner.New(runner.Options{
		Concurrency: 8,
		Duration:    5 * time.Second,
		TaskFactory: func() (runner.Task, error) {
			return &fakeTask{latency: time.Millisecond, calls: &calls}, nil
		},
	})
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()
	start := time.Now()
	if _, err := r.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("cancellation not honored between iterations: %s", elapsed)
	}
}

func TestRateLimiterCapsThroughput(t *testing.T) {
	var calls int64
	concurrency := 20
	rps := 100
	duration := 100 * time.Millisecond
	r := runner.New(runner.Options{
		Concurrency:   concurrency,
		Duration:      duration,
		RatePerSecond: rps,
		TaskFactory: func() (runner.Task, error) {
			return &fakeTask{calls: &calls}, nil
		},
		LimiterFactory: func(limit int) *rate.Limiter { return rate.NewLimiter(rate.Limit(limit), 1) },
	})
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Tokens issued inside the window, plus one reservation per worker that
	// was already queued in limiter.Wait when the deadline passed (the
	// deadline is only checked between iterations), plus scheduling slack.
	inWindow := 1 + rps*int(duration)/int(time.Second)
	maxExpected := inWindow + concurrency + 10
	if total := atomic.LoadInt64(&calls); total > int64(maxExpected) {
		t.Errorf("rate limiter exceeded: %d iterations, max expected %d", total, maxExpected)
	}
}

func TestNormalizeDefaultsConcurrencyToOne(t *testing.T) {
	var made int64
	r := runner.New(runner.Options{
		Concurrency: 0,
		Duration:    10 * time.Millisecond,
		TaskFactory: func() (runner.Task, error) {
			atomic.AddInt64(&made, 1)
			return &fakeTask{}, nil
		},
	})
	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Workers != 1 || made != 1 {
		t.Errorf("Workers = %d, factory calls = %d, want 1 worker", res.Workers, made)
	}
}

package runner

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Task is one worker's unit of work: a single simple request or a full
// scenario chain pass. Implementations record their own outcomes.
type Task interface {
	Run(ctx context.Context)
}

// Mode selects how workers are launched and how Run returns.
type Mode int

const (
	// ModeAsync launches every worker back to back and waits for all of
	// them to finish before returning.
	ModeAsync Mode = iota
	// ModeSync staggers worker launches and returns once the configured
	// duration has elapsed, without waiting for stragglers.
	ModeSync
)

// Options configure the Runner.
type Options struct {
	Concurrency   int           // number of worker goroutines
	Duration      time.Duration // shared deadline measured from pool start
	Mode          Mode          // launch and return behavior
	RatePerSecond int           // iteration pacing across all workers (0 means unpaced)

	// TaskFactory is invoked once per worker at start, so every worker
	// owns its task and the client behind it. Required.
	TaskFactory func() (Task, error)

	// LimiterFactory allows tests to inject a pacing limiter.
	LimiterFactory func(rps int) *rate.Limiter
}

func (o *Options) normalize() {
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.RatePerSecond < 0 {
		o.RatePerSecond = 0
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(rps int) *rate.Limiter {
			if rps <= 0 {
				return rate.NewLimiter(rate.Inf, 0)
			}
			// Burst equal to rps to smooth pacing under concurrency.
			return rate.NewLimiter(rate.Limit(rps), rps)
		}
	}
}

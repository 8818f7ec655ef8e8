package output

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/fluxload/flux/internal/metrics"
)

// ProgressReporter writes live updates on a single rewritten terminal line.
type ProgressReporter struct {
	collector *metrics.Collector
	ticker    *time.Ticker
	done      chan struct{}
	finished  chan struct{}
	writer    io.Writer
	active    int32
	start     time.Time
}

// NewProgressReporter creates a progress reporter that updates at the given interval.
func NewProgressReporter(collector *metrics.Collector, interval time.Duration, writer io.Writer) *ProgressReporter {
	if writer == nil {
		writer = io.Discard
	}
	return &ProgressReporter{
		collector: collector,
		ticker:    time.NewTicker(interval),
		done:      make(chan struct{}),
		finished:  make(chan struct{}),
		writer:    writer,
		start:     time.Now(),
	}
}

// Start begins displaying progress updates in a background goroutine.
func (p *ProgressReporter) Start() {
	if !atomic.CompareAndSwapInt32(&p.active, 0, 1) {
		return // already running
	}
	go p.run()
}

// Stop halts progress updates and terminates the status line.
func (p *ProgressReporter) Stop() {
	if atomic.CompareAndSwapInt32(&p.active, 1, 0) {
		close(p.done)
		p.ticker.Stop()
		<-p.finished
		fmt.Fprintln(p.writer)
	}
}

func (p *ProgressReporter) run() {
	defer close(p.finished)
	for {
		select {
		case <-p.ticker.C:
			live := p.collector.Live()
			errPct := 0.0
			if live.Total > 0 {
				errPct = float64(live.ErrorCount) / float64(live.Total) * 100
			}
			fmt.Fprintf(p.writer,
				"\r[%3ds] RPS: %.0f | Avg Latency: %.0fms | Errors: %d (%.1f%%)",
				int(time.Since(p.start).Seconds()),
				live.RPS, live.AvgLatencyMs, live.ErrorCount, errPct)
		case <-p.done:
			return
		}
	}
}

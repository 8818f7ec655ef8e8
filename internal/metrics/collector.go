package metrics

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Histogram bounds: latencies are tracked from 1ms to 60s at 3 significant
// figures. Values outside the range are clamped to the nearest bound.
const (
	histogramMinMs     = 1
	histogramMaxMs     = 60_000
	histogramPrecision = 3
)

// Outcome is the result of one executed request or scenario step. Once
// recorded it is owned by the collector's result log.
type Outcome struct {
	Scenario   string    `json:"scenario_name,omitempty"`
	LatencyMs  int64     `json:"latency_ms"`
	StatusCode int       `json:"status_code"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"request_start_timestamp"`
	EndedAt    time.Time `json:"request_end_timestamp"`
}

// Failed reports whether the outcome carries an error. A transport failure
// records status code 0 alongside the error message.
func (o Outcome) Failed() bool {
	return o.Error != ""
}

// LiveStats is a cumulative-to-date snapshot offered to display collaborators
// during a run.
type LiveStats struct {
	RPS          float64
	AvgLatencyMs float64
	ErrorCount   int
	Total        int
}

// Summary holds the final run statistics.
type Summary struct {
	TotalRequests      int       `json:"total_requests"`
	SuccessfulRequests int       `json:"successful_requests"`
	FailedRequests     int       `json:"failed_requests"`
	TotalDurationSecs  float64   `json:"total_duration_secs"`
	ThroughputRPS      float64   `json:"throughput_rps"`
	MinLatencyMs       int64     `json:"min_latency_ms"`
	MaxLatencyMs       int64     `json:"max_latency_ms"`
	MeanLatencyMs      float64   `json:"mean_latency_ms"`
	P50LatencyMs       int64     `json:"p50_latency_ms"`
	P90LatencyMs       int64     `json:"p90_latency_ms"`
	P95LatencyMs       int64     `json:"p95_latency_ms"`
	P99LatencyMs       int64     `json:"p99_latency_ms"`
	ErrorRate          float64   `json:"error_rate"`
	StartTime          time.Time `json:"start_time"`
	EndTime            time.Time `json:"end_time"`
}

// Collector records request outcomes in a thread-safe manner. A single mutex
// guards the streaming histogram and the append-only result log; every Record
// call is atomic with respect to other calls, and snapshot reads take the
// same lock briefly.
type Collector struct {
	mu      sync.Mutex
	hist    *hdrhistogram.Histogram
	results []Outcome
	start   time.Time
}

// NewCollector creates a collector. The creation instant anchors RPS and
// duration math until Start is called.
func NewCollector() *Collector {
	return &Collector{
		hist:  hdrhistogram.New(histogramMinMs, histogramMaxMs, histogramPrecision),
		start: time.Now(),
	}
}

// Start re-marks the run start time. Call it immediately before launching
// workers so snapshots taken by display collaborators created earlier use the
// correct elapsed time.
func (c *Collector) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start = time.Now()
}

// Record appends the outcome to the result log and its latency to the
// histogram. Safe under unbounded concurrent callers.
func (c *Collector) Record(outcome Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	latency := outcome.LatencyMs
	if latency < histogramMinMs {
		latency = histogramMinMs
	}
	if latency > histogramMaxMs {
		latency = histogramMaxMs
	}
	_ = c.hist.RecordValue(latency)

	c.results = append(c.results, outcome)
}

// Live computes a cumulative snapshot from the result log at call time.
// With zero recorded outcomes every field is zero.
func (c *Collector) Live() LiveStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := len(c.results)
	if total == 0 {
		return LiveStats{}
	}

	var errorCount int
	var sumLatency int64
	for _, r := range c.results {
		if r.Failed() {
			errorCount++
		}
		sumLatency += r.LatencyMs
	}

	stats := LiveStats{
		Total:        total,
		ErrorCount:   errorCount,
		AvgLatencyMs: float64(sumLatency) / float64(total),
	}

	if elapsed := time.Since(c.start).Seconds(); elapsed > 0 {
		stats.RPS = float64(total) / elapsed
	}
	return stats
}

// Summary computes the final run statistics from the histogram and result
// log. Calling it with zero recorded outcomes yields all-zero statistics.
func (c *Collector) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := len(c.results)
	var failed int
	for _, r := range c.results {
		if r.Failed() {
			failed++
		}
	}
	successful := total - failed

	end := time.Now()
	duration := end.Sub(c.start).Seconds()

	summary := Summary{
		TotalRequests:      total,
		SuccessfulRequests: successful,
		FailedRequests:     failed,
		TotalDurationSecs:  duration,
		StartTime:          c.start,
		EndTime:            end,
	}

	if duration > 0 {
		summary.ThroughputRPS = float64(total) / duration
	}
	if total > 0 {
		summary.ErrorRate = float64(failed) / float64(total) * 100
	}

	if c.hist.TotalCount() > 0 {
		summary.MinLatencyMs = clampToBounds(c.hist.Min())
		summary.MaxLatencyMs = clampToBounds(c.hist.Max())
		summary.MeanLatencyMs = c.hist.Mean()
		summary.P50LatencyMs = clampToBounds(c.hist.ValueAtQuantile(50))
		summary.P90LatencyMs = clampToBounds(c.hist.ValueAtQuantile(90))
		summary.P95LatencyMs = clampToBounds(c.hist.ValueAtQuantile(95))
		summary.P99LatencyMs = clampToBounds(c.hist.ValueAtQuantile(99))
	}

	return summary
}

// clampToBounds caps a histogram-derived value at the tracking range. At 3
// significant figures the histogram reports the highest equivalent value in
// a bucket, which can overshoot the upper bound (60031 for 60000).
func clampToBounds(ms int64) int64 {
	if ms < histogramMinMs {
		return histogramMinMs
	}
	if ms > histogramMaxMs {
		return histogramMaxMs
	}
	return ms
}

// Results returns an ordered copy of the result log for reporting.
func (c *Collector) Results() []Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Outcome, len(c.results))
	copy(out, c.results)
	return out
}

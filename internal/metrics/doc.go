// Package metrics provides real-time metrics collection and aggregation for
// load testing.
//
// The central [Collector] type aggregates outcomes from all request workers:
//
//	collector := metrics.NewCollector()
//	collector.Start() // Mark test start for accurate RPS calculation
//
//	collector.Record(metrics.Outcome{
//		Scenario:   "login",
//		LatencyMs:  42,
//		StatusCode: 200,
//	})
//
//	live := collector.Live()       // cumulative snapshot during the run
//	summary := collector.Summary() // final percentile statistics
//	results := collector.Results() // ordered outcome log for reporting
//
// Latencies feed a streaming HDR histogram bounded to [1ms, 60s] at three
// significant figures; out-of-range values are clamped to the nearest bound
// rather than rejected.
//
// # Thread Safety
//
// A single mutex guards the histogram and the result log. Record is safe to
// call from any number of goroutines, and Live/Summary/Results may be called
// concurrently with Record.
package metrics

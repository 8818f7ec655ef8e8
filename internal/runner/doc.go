// Package runner drives the worker pool that generates load.
//
// A [Runner] builds one [Task] per worker through the configured factory,
// launches all workers, and holds them to a shared deadline measured from
// pool start. Two launch modes exist:
//
//   - Async: workers start back to back and Run returns only after every
//     worker loop has exited.
//   - Sync: launches are spaced 10ms apart and Run returns as soon as the
//     duration elapses, without waiting for late workers to drain.
//
// The deadline and context cancellation are checked between iterations, not
// during one, so a slow in-flight request always completes and is recorded.
// When a rate is configured, a single limiter shared by all workers paces
// iteration starts across the whole pool.
package runner

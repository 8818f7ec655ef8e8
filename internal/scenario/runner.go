// Package scenario executes simple repeated requests and chained scenario
// passes, feeding every outcome to the metrics collector.
package scenario

import (
	"context"
	"strings"
	"time"

	"github.com/fluxload/flux/internal/config"
	"github.com/fluxload/flux/internal/extractor"
	"github.com/fluxload/flux/internal/httpclient"
	"github.com/fluxload/flux/internal/metrics"
	"github.com/fluxload/flux/internal/variables"
)

// Executor abstracts the request execution capability so the chain logic can
// be tested without network access.
type Executor interface {
	Execute(ctx context.Context, req httpclient.Request) (*httpclient.Response, error)
}

// Recorder receives request outcomes. Satisfied by *metrics.Collector.
type Recorder interface {
	Record(outcome metrics.Outcome)
}

// Logger interface for warning output. May be nil.
type Logger interface {
	Warn(format string, args ...interface{})
}

// ChainRunner executes the configured scenario list once per Run call, in
// declaration order, threading one fresh variable store through all steps of
// the pass. A ChainRunner is owned by a single worker and never shared.
type ChainRunner struct {
	base      string
	scenarios []config.Scenario
	client    Executor
	recorder  Recorder
	logger    Logger
}

// NewChainRunner builds a runner over the configured scenarios. The scenario
// slice is shared read-only across workers; per-pass state lives entirely in
// Run.
func NewChainRunner(cfg *config.Config, client Executor, recorder Recorder, logger Logger) *ChainRunner {
	return &ChainRunner{
		base:      cfg.Target,
		scenarios: cfg.Scenarios,
		client:    client,
		recorder:  recorder,
		logger:    logger,
	}
}

// Run performs one pass through the chain. Steps whose dependency did not
// execute earlier in this same pass are skipped entirely: no request is sent
// and no outcome is recorded, but the remaining steps are still attempted.
func (r *ChainRunner) Run(ctx context.Context) {
	store := variables.NewStore()
	executed := make(map[string]bool, len(r.scenarios))

	for i := range r.scenarios {
		step := &r.scenarios[i]

		if dep := step.DependsOn; dep != "" && !executed[dep] {
			if r.logger != nil {
				r.logger.Warn("skipping step %q: dependency %q did not execute in this pass", step.Name, dep)
			}
			continue
		}

		r.runStep(ctx, step, store)
		executed[step.Name] = true
	}
}

func (r *ChainRunner) runStep(ctx context.Context, step *config.Scenario, store variables.Store) {
	req := httpclient.Request{
		Method:  step.Method,
		URL:     ResolveURL(r.base, step.URL),
		Headers: variables.SubstituteMap(step.Headers, store),
	}
	// Multipart parts are sent as-is; substitution applies to headers and
	// plain bodies only.
	if len(step.Multipart) > 0 {
		req.Multipart = step.Multipart
	} else if step.Body != "" {
		req.Body = variables.Substitute(step.Body, store)
	}

	started := time.Now()
	resp, err := r.client.Execute(ctx, req)
	ended := time.Now()

	outcome := metrics.Outcome{
		Scenario:  step.Name,
		LatencyMs: ended.Sub(started).Milliseconds(),
		StartedAt: started,
		EndedAt:   ended,
	}

	if err != nil {
		outcome.Error = err.Error()
		if r.logger != nil {
			r.logger.Warn("step %q failed: %v", step.Name, err)
		}
	} else {
		outcome.StatusCode = resp.StatusCode
		if len(step.Extract) > 0 {
			extractor.ExtractAll([]byte(resp.Body), step.Extract, store, r.logger)
		}
	}

	r.recorder.Record(outcome)
}

// SimpleRequester repeats the single simple-mode request described by the
// configuration. Like ChainRunner, one instance belongs to one worker.
type SimpleRequester struct {
	req      httpclient.Request
	client   Executor
	recorder Recorder
	logger   Logger
}

// NewSimpleRequester builds the request definition once; Run reuses it for
// every iteration.
func NewSimpleRequester(cfg *config.Config, client Executor, recorder Recorder, logger Logger) *SimpleRequester {
	req := httpclient.Request{
		Method:  cfg.Method,
		URL:     cfg.Target,
		Headers: cfg.Headers,
	}
	if len(cfg.Multipart) > 0 {
		req.Multipart = cfg.Multipart
	} else {
		req.Body = cfg.Body
	}
	return &SimpleRequester{
		req:      req,
		client:   client,
		recorder: recorder,
		logger:   logger,
	}
}

// Run executes the simple request once and records its outcome.
func (s *SimpleRequester) Run(ctx context.Context) {
	started := time.Now()
	resp, err := s.client.Execute(ctx, s.req)
	ended := time.Now()

	outcome := metrics.Outcome{
		LatencyMs: ended.Sub(started).Milliseconds(),
		StartedAt: started,
		EndedAt:   ended,
	}

	if err != nil {
		outcome.Error = err.Error()
		if s.logger != nil {
			s.logger.Warn("request failed: %v", err)
		}
	} else {
		outcome.StatusCode = resp.StatusCode
	}

	s.recorder.Record(outcome)
}

// ResolveURL joins a step URL with the base target. URLs carrying an explicit
// scheme are used unmodified; otherwise the trimmed base (trailing slash
// removed) is concatenated with the step URL.
func ResolveURL(base, url string) string {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	trimmed := strings.TrimRight(strings.TrimSpace(base), "/")
	if trimmed == "" {
		return url
	}
	return trimmed + url
}

package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/fluxload/flux/internal/config"
	"github.com/fluxload/flux/internal/dashboard"
	"github.com/fluxload/flux/internal/httpclient"
	"github.com/fluxload/flux/internal/metrics"
	"github.com/fluxload/flux/internal/output"
	"github.com/fluxload/flux/internal/runner"
	"github.com/fluxload/flux/internal/scenario"
)

const progressInterval = time.Second

type stderrFailureLogger struct {
	mu sync.Mutex
}

func (l *stderrFailureLogger) Warn(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(os.Stderr, "[flux] "+format+"\n", args...)
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.NewLoader().Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	duration, err := config.ParseDuration(cfg.Duration)
	if err != nil {
		return err
	}

	collector := metrics.NewCollector()

	var logger scenario.Logger
	if cfg.LogErrors {
		logger = &stderrFailureLogger{}
	}

	// Every worker owns its own client so connection state is never shared.
	factory := func() (runner.Task, error) {
		client := httpclient.NewClient(cfg.Timeout)
		if cfg.SimpleMode() {
			return scenario.NewSimpleRequester(cfg, client, collector, logger), nil
		}
		return scenario.NewChainRunner(cfg, client, collector, logger), nil
	}

	mode := runner.ModeAsync
	if cfg.Mode == config.ModeSync {
		mode = runner.ModeSync
	}

	r := runner.New(runner.Options{
		Concurrency:   cfg.Concurrency,
		Duration:      duration,
		Mode:          mode,
		RatePerSecond: cfg.Rate,
		TaskFactory:   factory,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	runID := newRunID()

	var dash *dashboard.Dashboard
	var progress *output.ProgressReporter
	if cfg.Dashboard {
		dash, err = dashboard.New(collector, dashboard.TestConfig{
			TargetURL:   cfg.Target,
			Concurrency: cfg.Concurrency,
			Duration:    duration,
			Rate:        cfg.Rate,
			Mode:        string(cfg.Mode),
		}, cancel)
		if err != nil {
			return err
		}
		dash.Start()
	} else {
		output.PrintBanner(os.Stdout, cfg, int(duration.Seconds()))
		progress = output.NewProgressReporter(collector, progressInterval, os.Stdout)
		progress.Start()
	}

	collector.Start()
	_, runErr := r.Run(ctx)

	if progress != nil {
		progress.Stop()
	}
	if dash != nil {
		dash.Stop()
	}
	if runErr != nil {
		return runErr
	}

	summary := collector.Summary()
	output.PrintSummary(os.Stdout, summary)

	report := output.Report{
		RunID:   runID,
		Summary: summary,
		Results: collector.Results(),
	}
	if path := cfg.Output.JSON; path != "" {
		if err := output.WriteJSONReport(path, report); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "JSON report saved to: %s\n", path)
	}
	if path := cfg.Output.HTML; path != "" {
		if err := output.WriteHTMLReport(path, report); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "HTML report saved to: %s\n", path)
	}

	return nil
}

func newRunID() string {
	now := time.Now()
	entropy := ulid.Monotonic(rand.New(rand.NewSource(now.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(now), entropy).String()
}

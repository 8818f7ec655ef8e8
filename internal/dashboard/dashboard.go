// Package dashboard renders an opt-in live terminal UI for a running load
// test, fed by periodic collector snapshots.
package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/fluxload/flux/internal/metrics"
)

// TestConfig holds the run parameters shown in the header.
type TestConfig struct {
	TargetURL   string
	Concurrency int
	Duration    time.Duration
	Rate        int
	Mode        string
}

// Dashboard renders a live terminal UI for load test metrics.
type Dashboard struct {
	collector    *metrics.Collector
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownFunc func()
	wg           sync.WaitGroup
	mu           sync.Mutex

	grid           *ui.Grid
	summaryPara    *widgets.Paragraph
	metricsPara    *widgets.Paragraph
	latencyPara    *widgets.Paragraph
	rpsGauge       *widgets.Gauge
	latencySparkle *widgets.SparklineGroup
	latencyHistory []float64
	startTime      time.Time
	cfg            TestConfig
}

// New initializes termui and builds the dashboard. The shutdown function is
// invoked when the user presses q or Ctrl-C.
func New(collector *metrics.Collector, cfg TestConfig, shutdownFunc func()) (*Dashboard, error) {
	if err := ui.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize termui: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	d := &Dashboard{
		collector:      collector,
		ctx:            ctx,
		cancel:         cancel,
		shutdownFunc:   shutdownFunc,
		latencyHistory: make([]float64, 0, 100),
		startTime:      time.Now(),
		cfg:            cfg,
	}

	d.initWidgets()
	d.setupGrid()

	return d, nil
}

func (d *Dashboard) initWidgets() {
	d.summaryPara = widgets.NewParagraph()
	d.summaryPara.Title = "Flux Load Test"
	d.summaryPara.Text = "Initializing..."
	d.summaryPara.BorderStyle.Fg = ui.ColorCyan

	d.rpsGauge = widgets.NewGauge()
	d.rpsGauge.Title = "Requests Per Second"
	d.rpsGauge.Percent = 0
	d.rpsGauge.BarColor = ui.ColorBlue
	d.rpsGauge.BorderStyle.Fg = ui.ColorCyan
	d.rpsGauge.LabelStyle = ui.NewStyle(ui.ColorWhite)

	d.metricsPara = widgets.NewParagraph()
	d.metricsPara.Title = "Metrics"
	d.metricsPara.Text = "Waiting for data..."
	d.metricsPara.BorderStyle.Fg = ui.ColorCyan

	d.latencyPara = widgets.NewParagraph()
	d.latencyPara.Title = "Latency Percentiles"
	d.latencyPara.Text = "Min: 0ms\nMean: 0ms\nP50: 0ms\nP90: 0ms\nP99: 0ms"
	d.latencyPara.BorderStyle.Fg = ui.ColorCyan

	sparkline := widgets.NewSparkline()
	sparkline.Title = "Avg Latency (ms)"
	sparkline.LineColor = ui.ColorGreen
	sparkline.Data = []float64{0}

	d.latencySparkle = widgets.NewSparklineGroup(sparkline)
	d.latencySparkle.Title = "Real-time Latency"
	d.latencySparkle.BorderStyle.Fg = ui.ColorCyan
}

func (d *Dashboard) setupGrid() {
	termWidth, termHeight := ui.TerminalDimensions()
	d.grid = ui.NewGrid()
	d.grid.SetRect(0, 0, termWidth, termHeight)

	d.grid.Set(
		ui.NewRow(0.2,
			ui.NewCol(1.0, d.summaryPara),
		),
		ui.NewRow(0.25,
			ui.NewCol(0.5, d.rpsGauge),
			ui.NewCol(0.5, d.metricsPara),
		),
		ui.NewRow(0.55,
			ui.NewCol(0.65, d.latencySparkle),
			ui.NewCol(0.35, d.latencyPara),
		),
	)
}

// Start begins the dashboard update loop.
func (d *Dashboard) Start() {
	d.wg.Add(1)
	go d.run()
}

// Stop stops the dashboard and restores the terminal.
func (d *Dashboard) Stop() {
	d.cancel()
	d.wg.Wait()
	ui.Close()
	// Give terminal time to restore
	time.Sleep(100 * time.Millisecond)
}

func (d *Dashboard) run() {
	defer d.wg.Done()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	uiEvents := ui.PollEvents()

	d.render()

	for {
		select {
		case <-d.ctx.Done():
			for len(uiEvents) > 0 {
				<-uiEvents
			}
			return
		case e := <-uiEvents:
			select {
			case <-d.ctx.Done():
				return
			default:
			}

			switch e.ID {
			case "q", "<C-c>":
				if d.shutdownFunc != nil {
					d.shutdownFunc()
				}
				// Wait for Stop() to cancel the context
			case "<Resize>":
				payload := e.Payload.(ui.Resize)
				d.grid.SetRect(0, 0, payload.Width, payload.Height)
				ui.Clear()
				d.render()
			}
		case <-ticker.C:
			d.update()
			d.render()
		}
	}
}

func (d *Dashboard) update() {
	d.mu.Lock()
	defer d.mu.Unlock()

	live := d.collector.Live()
	summary := d.collector.Summary()
	elapsed := time.Since(d.startTime)

	if live.Total > 0 {
		d.latencyHistory = append(d.latencyHistory, live.AvgLatencyMs)
		if len(d.latencyHistory) > 100 {
			d.latencyHistory = d.latencyHistory[1:]
		}
		d.latencySparkle.Sparklines[0].Data = d.latencyHistory
		d.latencySparkle.Title = fmt.Sprintf(
			"Real-time Latency | Avg: %.1fms | Min: %dms | Max: %dms",
			live.AvgLatencyMs, summary.MinLatencyMs, summary.MaxLatencyMs,
		)
	}

	d.rpsGauge.Percent = rpsPercent(live.RPS)
	d.rpsGauge.Label = fmt.Sprintf("%.1f RPS", live.RPS)

	d.summaryPara.Text = summaryText(d.cfg, elapsed, live)
	d.metricsPara.Text = metricsText(live, summary)
	d.latencyPara.Text = fmt.Sprintf(
		"Min:  %dms\nMean: %.2fms\nP50:  %dms\nP90:  %dms\nP99:  %dms",
		summary.MinLatencyMs, summary.MeanLatencyMs,
		summary.P50LatencyMs, summary.P90LatencyMs, summary.P99LatencyMs,
	)
}

func (d *Dashboard) render() {
	d.mu.Lock()
	defer d.mu.Unlock()

	ui.Render(d.grid)
}

// rpsPercent maps the current RPS onto a 0-100 gauge, scaling past 100 RPS.
func rpsPercent(rps float64) int {
	maxRPS := 100.0
	if rps > maxRPS {
		maxRPS = rps
	}
	percent := int(rps / maxRPS * 100)
	if percent > 100 {
		percent = 100
	}
	return percent
}

func summaryText(cfg TestConfig, elapsed time.Duration, live metrics.LiveStats) string {
	remaining := cfg.Duration - elapsed
	if remaining < 0 {
		remaining = 0
	}
	return fmt.Sprintf(
		"Target: %s\nWorkers: %d | Mode: %s | Rate: %s\nElapsed: %s | Remaining: %s | Total: %d",
		cfg.TargetURL,
		cfg.Concurrency,
		cfg.Mode,
		rateLabel(cfg.Rate),
		elapsed.Round(time.Second),
		remaining.Round(time.Second),
		live.Total,
	)
}

func metricsText(live metrics.LiveStats, summary metrics.Summary) string {
	successRate := 0.0
	if live.Total > 0 {
		successRate = float64(live.Total-live.ErrorCount) / float64(live.Total) * 100
	}
	return fmt.Sprintf(
		"Total Requests:    %d\nSuccessful:        %d\nFailed:            %d\nCurrent RPS:       %.2f\nSuccess Rate:      %.1f%%\nMean Latency:      %.2fms",
		live.Total,
		live.Total-live.ErrorCount,
		live.ErrorCount,
		live.RPS,
		successRate,
		summary.MeanLatencyMs,
	)
}

func rateLabel(rate int) string {
	if rate <= 0 {
		return "unlimited"
	}
	return fmt.Sprintf("%d rps", rate)
}

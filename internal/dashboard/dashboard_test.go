package dashboard

import (
	"strings"
	"testing"
	"time"

	"github.com/fluxload/flux/internal/metrics"
)

func TestRPSPercent(t *testing.T) {
	tests := []struct {
		name     string
		rps      float64
		expected int
	}{
		{"zero", 0, 0},
		{"half scale", 50, 50},
		{"full scale", 100, 100},
		{"above scale", 400, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rpsPercent(tt.rps); got != tt.expected {
				t.Errorf("rpsPercent(%v) = %d, expected %d", tt.rps, got, tt.expected)
			}
		})
	}
}

func TestSummaryText(t *testing.T) {
	cfg := TestConfig{
		TargetURL:   "http://api.example.com",
		Concurrency: 10,
		Duration:    30 * time.Second,
		Mode:        "async",
	}
	live := metrics.LiveStats{Total: 42}

	text := summaryText(cfg, 10*time.Second, live)
	for _, want := range []string{
		"http://api.example.com",
		"Workers: 10",
		"Mode: async",
		"Rate: unlimited",
		"Remaining: 20s",
		"Total: 42",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("summary text missing %q:\n%s", want, text)
		}
	}
}

func TestSummaryTextRemainingClampsAtZero(t *testing.T) {
	cfg := TestConfig{Duration: 5 * time.Second}
	text := summaryText(cfg, 10*time.Second, metrics.LiveStats{})
	if !strings.Contains(text, "Remaining: 0s") {
		t.Errorf("remaining time not clamped:\n%s", text)
	}
}

func TestMetricsText(t *testing.T) {
	live := metrics.LiveStats{RPS: 12.5, AvgLatencyMs: 40, ErrorCount: 2, Total: 10}
	summary := metrics.Summary{MeanLatencyMs: 41.5}

	text := metricsText(live, summary)
	for _, want := range []string{
		"Total Requests:    10",
		"Successful:        8",
		"Failed:            2",
		"Current RPS:       12.50",
		"Success Rate:      80.0%",
		"Mean Latency:      41.50ms",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics text missing %q:\n%s", want, text)
		}
	}
}

func TestRateLabel(t *testing.T) {
	if got := rateLabel(0); got != "unlimited" {
		t.Errorf("rateLabel(0) = %q", got)
	}
	if got := rateLabel(250); got != "250 rps" {
		t.Errorf("rateLabel(250) = %q", got)
	}
}

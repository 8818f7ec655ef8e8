package output_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fluxload/flux/internal/config"
	"github.com/fluxload/flux/internal/metrics"
	"github.com/fluxload/flux/internal/output"
)

func sampleSummary() metrics.Summary {
	return metrics.Summary{
		TotalRequests:      120,
		SuccessfulRequests: 117,
		FailedRequests:     3,
		TotalDurationSecs:  30.0,
		ThroughputRPS:      4.0,
		MinLatencyMs:       12,
		MaxLatencyMs:       480,
		MeanLatencyMs:      95.5,
		P50LatencyMs:       80,
		P90LatencyMs:       210,
		P95LatencyMs:       300,
		P99LatencyMs:       450,
		ErrorRate:          2.5,
	}
}

func TestPrintSummaryContent(t *testing.T) {
	var buf bytes.Buffer
	output.PrintSummary(&buf, sampleSummary())
	out := buf.String()

	for _, want := range []string{
		"Final Summary",
		"Total Requests",
		": 120",
		": 117",
		"4.00 req/s",
		"2.50%",
		"P99",
		": 450ms",
		"95.50ms",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintBannerWithScenarios(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{
		Target:      "http://api.example.com",
		Concurrency: 10,
		Mode:        config.ModeAsync,
		Scenarios: []config.Scenario{
			{Name: "login"},
			{Name: "profile"},
		},
	}
	output.PrintBanner(&buf, cfg, 30)
	out := buf.String()

	for _, want := range []string{
		"Flux Load Test Started",
		"http://api.example.com",
		"10 workers",
		": 30s",
		"ASYNC",
		"login -> profile",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("banner missing %q:\n%s", want, out)
		}
	}
}

func TestWriteJSONReportCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "nested", "run.json")
	report := output.Report{
		RunID:   "01J8TESTRUN",
		Summary: sampleSummary(),
		Results: []metrics.Outcome{
			{Scenario: "login", LatencyMs: 42, StatusCode: 200},
		},
	}

	if err := output.WriteJSONReport(path, report); err != nil {
		t.Fatalf("WriteJSONReport: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	var decoded output.Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if decoded.RunID != "01J8TESTRUN" {
		t.Errorf("RunID = %q", decoded.RunID)
	}
	if decoded.Summary.TotalRequests != 120 {
		t.Errorf("TotalRequests = %d", decoded.Summary.TotalRequests)
	}
	if len(decoded.Results) != 1 || decoded.Results[0].Scenario != "login" {
		t.Errorf("Results = %+v", decoded.Results)
	}
}

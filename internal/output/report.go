package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fluxload/flux/internal/config"
	"github.com/fluxload/flux/internal/metrics"
)

// Report is the machine-readable run artifact written to JSON and rendered
// into the HTML page.
type Report struct {
	RunID   string            `json:"run_id"`
	Summary metrics.Summary   `json:"summary"`
	Results []metrics.Outcome `json:"results"`
}

const rule = "======================================================================"

// PrintBanner writes the run header before traffic starts.
func PrintBanner(w io.Writer, cfg *config.Config, durationSecs int) {
	fmt.Fprintf(w, "\n%s\n", rule)
	fmt.Fprintln(w, "Flux Load Test Started")
	fmt.Fprintln(w, rule)
	if cfg.Target != "" {
		fmt.Fprintf(w, "%-20s : %s\n", "Target", cfg.Target)
	}
	fmt.Fprintf(w, "%-20s : %d workers\n", "Concurrency", cfg.Concurrency)
	fmt.Fprintf(w, "%-20s : %ds\n", "Duration", durationSecs)
	fmt.Fprintf(w, "%-20s : %s\n", "Mode", strings.ToUpper(string(cfg.Mode)))
	if len(cfg.Scenarios) > 0 {
		names := make([]string, len(cfg.Scenarios))
		for i, s := range cfg.Scenarios {
			names[i] = s.Name
		}
		fmt.Fprintf(w, "%-20s : %s\n", "Scenarios", strings.Join(names, " -> "))
	}
	fmt.Fprintf(w, "%s\n\n", rule)
}

// PrintSummary writes the human-readable final summary.
func PrintSummary(w io.Writer, summary metrics.Summary) {
	fmt.Fprintf(w, "\n%s\n", rule)
	fmt.Fprintln(w, "Final Summary")
	fmt.Fprintln(w, rule)

	fmt.Fprintln(w, "\nRequest Statistics:")
	fmt.Fprintf(w, "  %-25s : %d\n", "Total Requests", summary.TotalRequests)
	fmt.Fprintf(w, "  %-25s : %d\n", "Successful", summary.SuccessfulRequests)
	fmt.Fprintf(w, "  %-25s : %d\n", "Failed", summary.FailedRequests)

	fmt.Fprintln(w, "\nPerformance Metrics:")
	fmt.Fprintf(w, "  %-25s : %.2f req/s\n", "Throughput", summary.ThroughputRPS)
	fmt.Fprintf(w, "  %-25s : %.2f%%\n", "Error Rate", summary.ErrorRate)
	fmt.Fprintf(w, "  %-25s : %.2fs\n", "Total Duration", summary.TotalDurationSecs)

	fmt.Fprintln(w, "\nLatency Percentiles:")
	fmt.Fprintf(w, "  %-25s : %dms\n", "Min", summary.MinLatencyMs)
	fmt.Fprintf(w, "  %-25s : %dms\n", "P50 (Median)", summary.P50LatencyMs)
	fmt.Fprintf(w, "  %-25s : %dms\n", "P90", summary.P90LatencyMs)
	fmt.Fprintf(w, "  %-25s : %dms\n", "P95", summary.P95LatencyMs)
	fmt.Fprintf(w, "  %-25s : %dms\n", "P99", summary.P99LatencyMs)
	fmt.Fprintf(w, "  %-25s : %dms\n", "Max", summary.MaxLatencyMs)
	fmt.Fprintf(w, "  %-25s : %.2fms\n", "Mean", summary.MeanLatencyMs)

	fmt.Fprintf(w, "\n%s\n\n", rule)
}

// WriteJSONReport writes the report as pretty-printed JSON, creating parent
// directories as needed.
func WriteJSONReport(path string, report Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := ensureParentDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	return nil
}

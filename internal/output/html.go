package output

import (
	"fmt"
	"html/template"
	"os"
	"time"

	"github.com/fluxload/flux/internal/metrics"
)

// LatencyBucket is one row of the latency distribution table.
type LatencyBucket struct {
	Label string
	Count int
}

// LatencyDistribution buckets recorded latencies into fixed ranges for the
// HTML report histogram.
func LatencyDistribution(results []metrics.Outcome) []LatencyBucket {
	buckets := []LatencyBucket{
		{Label: "0-50ms"},
		{Label: "50-100ms"},
		{Label: "100-200ms"},
		{Label: "200-500ms"},
		{Label: "500-1000ms"},
		// Plain words rather than "1000ms+": html/template escapes "+"
		// to "&#43;" in text nodes.
		{Label: "1000ms and up"},
	}
	for _, r := range results {
		switch ms := r.LatencyMs; {
		case ms < 50:
			buckets[0].Count++
		case ms < 100:
			buckets[1].Count++
		case ms < 200:
			buckets[2].Count++
		case ms < 500:
			buckets[3].Count++
		case ms < 1000:
			buckets[4].Count++
		default:
			buckets[5].Count++
		}
	}
	return buckets
}

type htmlReportData struct {
	GeneratedAt  string
	RunID        string
	Summary      metrics.Summary
	Distribution []LatencyBucket
	MaxBucket    int
}

// WriteHTMLReport renders the standalone HTML report page, creating parent
// directories as needed.
func WriteHTMLReport(path string, report Report) error {
	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"barWidth": func(count, max int) int {
			if max == 0 {
				return 0
			}
			return count * 100 / max
		},
	}).Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("parsing report template: %w", err)
	}

	distribution := LatencyDistribution(report.Results)
	maxBucket := 0
	for _, b := range distribution {
		if b.Count > maxBucket {
			maxBucket = b.Count
		}
	}

	if err := ensureParentDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	defer f.Close()

	data := htmlReportData{
		GeneratedAt:  time.Now().Format(time.RFC3339),
		RunID:        report.RunID,
		Summary:      report.Summary,
		Distribution: distribution,
		MaxBucket:    maxBucket,
	}
	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	return f.Close()
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Flux Load Test Report</title>
<style>
  body { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; margin: 2rem auto; max-width: 960px; color: #1f2933; }
  h1 { border-bottom: 2px solid #3b82f6; padding-bottom: 0.4rem; }
  .meta { color: #6b7280; font-size: 0.9rem; margin-bottom: 2rem; }
  table { border-collapse: collapse; width: 100%; margin-bottom: 2rem; }
  th, td { text-align: left; padding: 0.5rem 0.75rem; border-bottom: 1px solid #e5e7eb; }
  th { background: #f3f4f6; }
  .bar { background: #3b82f6; height: 1rem; border-radius: 2px; }
  .failed { color: #dc2626; }
  .ok { color: #16a34a; }
</style>
</head>
<body>
<h1>Flux Load Test Report</h1>
<p class="meta">Run {{.RunID}} &middot; generated {{.GeneratedAt}}</p>

<h2>Summary</h2>
<table>
  <tr><th>Total Requests</th><td>{{.Summary.TotalRequests}}</td></tr>
  <tr><th>Successful</th><td class="ok">{{.Summary.SuccessfulRequests}}</td></tr>
  <tr><th>Failed</th><td{{if gt .Summary.FailedRequests 0}} class="failed"{{end}}>{{.Summary.FailedRequests}}</td></tr>
  <tr><th>Throughput</th><td>{{printf "%.2f" .Summary.ThroughputRPS}} req/s</td></tr>
  <tr><th>Error Rate</th><td>{{printf "%.2f" .Summary.ErrorRate}}%</td></tr>
  <tr><th>Total Duration</th><td>{{printf "%.2f" .Summary.TotalDurationSecs}}s</td></tr>
</table>

<h2>Latency</h2>
<table>
  <tr><th>Min</th><td>{{.Summary.MinLatencyMs}}ms</td></tr>
  <tr><th>P50</th><td>{{.Summary.P50LatencyMs}}ms</td></tr>
  <tr><th>P90</th><td>{{.Summary.P90LatencyMs}}ms</td></tr>
  <tr><th>P95</th><td>{{.Summary.P95LatencyMs}}ms</td></tr>
  <tr><th>P99</th><td>{{.Summary.P99LatencyMs}}ms</td></tr>
  <tr><th>Max</th><td>{{.Summary.MaxLatencyMs}}ms</td></tr>
  <tr><th>Mean</th><td>{{printf "%.2f" .Summary.MeanLatencyMs}}ms</td></tr>
</table>

<h2>Latency Distribution</h2>
<table>
{{$max := .MaxBucket}}
{{range .Distribution}}
  <tr>
    <th>{{.Label}}</th>
    <td>{{.Count}}</td>
    <td style="width: 50%"><div class="bar" style="width: {{barWidth .Count $max}}%"></div></td>
  </tr>
{{end}}
</table>
</body>
</html>
`

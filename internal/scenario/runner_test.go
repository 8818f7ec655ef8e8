package scenario_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fluxload/flux/internal/config"
	"github.com/fluxload/flux/internal/httpclient"
	"github.com/fluxload/flux/internal/metrics"
	"github.com/fluxload/flux/internal/scenario"
)

type fakeExecutor struct {
	requests  []httpclient.Request
	responses map[string]*httpclient.Response
	failures  map[string]error
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{
		responses: map[string]*httpclient.Response{},
		failures:  map[string]error{},
	}
}

func (f *fakeExecutor) Execute(_ context.Context, req httpclient.Request) (*httpclient.Response, error) {
	f.requests = append(f.requests, req)
	if err, ok := f.failures[req.URL]; ok {
		return nil, err
	}
	if resp, ok := f.responses[req.URL]; ok {
		return resp, nil
	}
	return &httpclient.Response{StatusCode: 200, Body: "{}"}, nil
}

type logRecorder struct {
	outcomes []metrics.Outcome
}

func (l *logRecorder) Record(outcome metrics.Outcome) {
	l.outcomes = append(l.outcomes, outcome)
}

func chainConfig(scenarios ...config.Scenario) *config.Config {
	return &config.Config{
		Target:    "http://api.example.com/",
		Scenarios: scenarios,
	}
}

func TestChainRunsStepsInOrder(t *testing.T) {
	exec := newFakeExecutor()
	rec := &logRecorder{}
	cfg := chainConfig(
		config.Scenario{Name: "first", Method: "GET", URL: "/one"},
		config.Scenario{Name: "second", Method: "GET", URL: "/two"},
	)

	scenario.NewChainRunner(cfg, exec, rec, nil).Run(context.Background())

	if len(exec.requests) != 2 {
		t.Fatalf("requests = %d, want 2", len(exec.requests))
	}
	if exec.requests[0].URL != "http://api.example.com/one" {
		t.Errorf("request 0 URL = %q", exec.requests[0].URL)
	}
	if exec.requests[1].URL != "http://api.example.com/two" {
		t.Errorf("request 1 URL = %q", exec.requests[1].URL)
	}
	if len(rec.outcomes) != 2 || rec.outcomes[0].Scenario != "first" || rec.outcomes[1].Scenario != "second" {
		t.Errorf("outcomes = %+v, want [first second]", rec.outcomes)
	}
}

func TestChainVariableFlow(t *testing.T) {
	exec := newFakeExecutor()
	exec.responses["http://api.example.com/auth/login"] = &httpclient.Response{
		StatusCode: 200,
		Body:       `{"auth": {"token": "abc123"}}`,
	}
	rec := &logRecorder{}
	cfg := chainConfig(
		config.Scenario{
			Name:    "login",
			Method:  "POST",
			URL:     "/auth/login",
			Extract: map[string]string{"token": "$.auth.token"},
		},
		config.Scenario{
			Name:      "profile",
			Method:    "GET",
			URL:       "/me",
			Headers:   map[string]string{"Authorization": "Bearer {{ token }}"},
			Body:      `{"session": "{{ token }}"}`,
			DependsOn: "login",
		},
	)

	scenario.NewChainRunner(cfg, exec, rec, nil).Run(context.Background())

	if len(exec.requests) != 2 {
		t.Fatalf("requests = %d, want 2", len(exec.requests))
	}
	profile := exec.requests[1]
	if profile.Headers["Authorization"] != "Bearer abc123" {
		t.Errorf("Authorization = %q, want Bearer abc123", profile.Headers["Authorization"])
	}
	if profile.Body != `{"session": "abc123"}` {
		t.Errorf("Body = %q", profile.Body)
	}
}

func TestChainDependencyMetEvenWhenStepErrors(t *testing.T) {
	exec := newFakeExecutor()
	exec.failures["http://api.example.com/a"] = errors.New("connection refused")
	rec := &logRecorder{}
	cfg := chainConfig(
		config.Scenario{Name: "a", Method: "GET", URL: "/a"},
		config.Scenario{Name: "b", Method: "GET", URL: "/b", DependsOn: "a"},
	)

	scenario.NewChainRunner(cfg, exec, rec, nil).Run(context.Background())

	// A errored at the transport level but it executed, so B still runs.
	if len(exec.requests) != 2 {
		t.Fatalf("requests = %d, want 2 (dependency satisfied by attempted step)", len(exec.requests))
	}
	if len(rec.outcomes) != 2 {
		t.Fatalf("outcomes = %d, want 2", len(rec.outcomes))
	}
	if rec.outcomes[0].StatusCode != 0 || rec.outcomes[0].Error == "" {
		t.Errorf("outcome a = %+v, want status 0 with error", rec.outcomes[0])
	}
	if rec.outcomes[1].Error != "" {
		t.Errorf("outcome b = %+v, want success", rec.outcomes[1])
	}
}

func TestChainSkipsStepWithUnmetDependency(t *testing.T) {
	exec := newFakeExecutor()
	rec := &logRecorder{}
	// "b" names a dependency that is not part of this chain, so it can never
	// execute; "c" has no dependency and must still be attempted.
	cfg := chainConfig(
		config.Scenario{Name: "b", Method: "GET", URL: "/b", DependsOn: "a"},
		config.Scenario{Name: "c", Method: "GET", URL: "/c"},
	)

	scenario.NewChainRunner(cfg, exec, rec, nil).Run(context.Background())

	if len(exec.requests) != 1 || exec.requests[0].URL != "http://api.example.com/c" {
		t.Fatalf("requests = %+v, want only /c", exec.requests)
	}
	if len(rec.outcomes) != 1 || rec.outcomes[0].Scenario != "c" {
		t.Errorf("outcomes = %+v, want only c (skipped steps yield no outcome)", rec.outcomes)
	}
}

func TestChainDependencyNotSatisfiedAcrossPasses(t *testing.T) {
	exec := newFakeExecutor()
	rec := &logRecorder{}
	cfg := chainConfig(
		config.Scenario{Name: "b", Method: "GET", URL: "/b", DependsOn: "a"},
	)
	runner := scenario.NewChainRunner(cfg, exec, rec, nil)

	// Execution history is per pass; two passes never satisfy "a".
	runner.Run(context.Background())
	runner.Run(context.Background())

	if len(exec.requests) != 0 {
		t.Errorf("requests = %d, want 0", len(exec.requests))
	}
}

func TestChainVariablesNotSharedAcrossPasses(t *testing.T) {
	exec := newFakeExecutor()
	exec.responses["http://api.example.com/login"] = &httpclient.Response{
		StatusCode: 200,
		Body:       `{"token": "first-pass"}`,
	}
	rec := &logRecorder{}
	cfg := chainConfig(
		config.Scenario{Name: "login", Method: "POST", URL: "/login", Extract: map[string]string{"token": "token"}},
		config.Scenario{Name: "use", Method: "GET", URL: "/use", Headers: map[string]string{"X-Token": "{{ token }}"}},
	)
	runner := scenario.NewChainRunner(cfg, exec, rec, nil)

	runner.Run(context.Background())
	exec.responses["http://api.example.com/login"] = &httpclient.Response{
		StatusCode: 200,
		Body:       `not json`,
	}
	runner.Run(context.Background())

	// Second pass gets no token: the store was fresh and extraction failed.
	second := exec.requests[3]
	if second.Headers["X-Token"] != "{{ token }}" {
		t.Errorf("second pass X-Token = %q, want untouched placeholder", second.Headers["X-Token"])
	}
}

func TestChainMultipartSentAsIs(t *testing.T) {
	exec := newFakeExecutor()
	rec := &logRecorder{}
	parts := []config.MultipartPart{
		{Type: config.MultipartField, Name: "note", Value: "{{ token }}"},
	}
	cfg := chainConfig(
		config.Scenario{Name: "upload", Method: "POST", URL: "/upload", Multipart: parts},
	)

	scenario.NewChainRunner(cfg, exec, rec, nil).Run(context.Background())

	if len(exec.requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(exec.requests))
	}
	got := exec.requests[0].Multipart
	if len(got) != 1 || got[0].Value != "{{ token }}" {
		t.Errorf("multipart = %+v, want value left untouched", got)
	}
}

func TestChainAbsoluteURLUnmodified(t *testing.T) {
	exec := newFakeExecutor()
	rec := &logRecorder{}
	cfg := chainConfig(
		config.Scenario{Name: "external", Method: "GET", URL: "https://other.example.com/ping"},
	)

	scenario.NewChainRunner(cfg, exec, rec, nil).Run(context.Background())

	if exec.requests[0].URL != "https://other.example.com/ping" {
		t.Errorf("URL = %q, want absolute URL unmodified", exec.requests[0].URL)
	}
}

func TestResolveURL(t *testing.T) {
	cases := []struct {
		base, url, want string
	}{
		{"http://api.example.com/", "/users", "http://api.example.com/users"},
		{"http://api.example.com", "/users", "http://api.example.com/users"},
		{"http://api.example.com/", "https://cdn.example.com/x", "https://cdn.example.com/x"},
		{"", "/users", "/users"},
		{"", "http://api.example.com/users", "http://api.example.com/users"},
	}
	for _, tc := range cases {
		if got := scenario.ResolveURL(tc.base, tc.url); got != tc.want {
			t.Errorf("ResolveURL(%q, %q) = %q, want %q", tc.base, tc.url, got, tc.want)
		}
	}
}

func TestSimpleRequester(t *testing.T) {
	exec := newFakeExecutor()
	exec.responses["http://example.com/"] = &httpclient.Response{StatusCode: 204}
	rec := &logRecorder{}
	cfg := &config.Config{
		Target:  "http://example.com/",
		Method:  "GET",
		Headers: map[string]string{"Accept": "application/json"},
	}

	scenario.NewSimpleRequester(cfg, exec, rec, nil).Run(context.Background())

	if len(rec.outcomes) != 1 {
		t.Fatalf("outcomes = %d, want 1", len(rec.outcomes))
	}
	o := rec.outcomes[0]
	if o.Scenario != "" {
		t.Errorf("Scenario = %q, want empty in simple mode", o.Scenario)
	}
	if o.StatusCode != 204 {
		t.Errorf("StatusCode = %d, want 204", o.StatusCode)
	}
	if o.Failed() {
		t.Errorf("outcome unexpectedly failed: %+v", o)
	}
}

func TestSimpleRequesterTransportFailure(t *testing.T) {
	exec := newFakeExecutor()
	exec.failures["http://example.com/"] = errors.New("dial tcp: connection refused")
	rec := &logRecorder{}
	cfg := &config.Config{Target: "http://example.com/", Method: "GET"}

	scenario.NewSimpleRequester(cfg, exec, rec, nil).Run(context.Background())

	o := rec.outcomes[0]
	if o.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 on transport failure", o.StatusCode)
	}
	if o.Error == "" {
		t.Errorf("Error empty, want transport error message")
	}
}

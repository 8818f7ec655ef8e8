package config

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects how workers are launched.
type Mode string

const (
	// ModeAsync launches all workers back-to-back with no inter-launch delay.
	ModeAsync Mode = "async"
	// ModeSync staggers worker launches with a small fixed delay and inserts
	// the same delay between iterations. It does not reduce concurrency.
	ModeSync Mode = "sync"
)

// Config is the validated run configuration consumed by the engine.
type Config struct {
	// Target is the base URL. Optional when every scenario carries a full URL.
	Target string

	// Simple-mode request definition, used when Scenarios is empty.
	Method    string
	Headers   map[string]string
	Body      string
	Multipart []MultipartPart

	// Scenarios is the ordered chain of dependent request steps.
	Scenarios []Scenario

	Concurrency int
	Duration    string
	Mode        Mode
	Rate        int
	Timeout     time.Duration

	Output     OutputConfig
	Dashboard  bool
	LogErrors  bool
	ConfigFile string
}

// MultipartPartType tags the two multipart variants.
type MultipartPartType string

const (
	MultipartFile  MultipartPartType = "file"
	MultipartField MultipartPartType = "field"
)

// MultipartPart is one part of a multipart form body: either a file upload
// referencing a filesystem path, or an inline field value.
type MultipartPart struct {
	Type  MultipartPartType
	Name  string
	Path  string
	Value string
}

// Scenario is one named step in a request chain. Scenarios are loaded once,
// immutable, and shared read-only across all workers and iterations.
type Scenario struct {
	Name      string
	Method    string
	URL       string
	Headers   map[string]string
	Body      string
	Multipart []MultipartPart

	// Extract maps variable names to JSON path expressions evaluated against
	// the response body.
	Extract map[string]string

	// DependsOn names an earlier step that must have executed in the same
	// chain pass for this step to run.
	DependsOn string
}

// OutputConfig holds report file destinations.
type OutputConfig struct {
	JSON string
	HTML string
}

// ValidationError aggregates every configuration issue found during Validate.
type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

// Issues returns the individual validation problems.
func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

// SimpleMode reports whether the run repeats a single request instead of a
// scenario chain.
func (c Config) SimpleMode() bool {
	return len(c.Scenarios) == 0
}

// Validate checks the configuration and returns a ValidationError listing
// every problem found.
func (c Config) Validate() error {
	var issues []string

	if len(c.Scenarios) == 0 && strings.TrimSpace(c.Target) == "" {
		issues = append(issues, "either 'target' or 'scenarios' must be specified")
	}

	if c.Mode != ModeAsync && c.Mode != ModeSync {
		issues = append(issues, fmt.Sprintf("mode must be 'async' or 'sync', got %q", c.Mode))
	}

	if c.Concurrency < 1 {
		issues = append(issues, "concurrency must be >= 1")
	}
	if c.Rate < 0 {
		issues = append(issues, "rate must be >= 0")
	}
	if c.Timeout < 0 {
		issues = append(issues, "timeout must be >= 0")
	}

	if _, err := ParseDuration(c.Duration); err != nil {
		issues = append(issues, fmt.Sprintf("duration: %v", err))
	}

	issues = append(issues, validateMultipart(c.Multipart, "")...)

	seen := make(map[string]int, len(c.Scenarios))
	for idx, scenario := range c.Scenarios {
		name := strings.TrimSpace(scenario.Name)
		if name == "" {
			issues = append(issues, fmt.Sprintf("scenario %d: name is required", idx))
			continue
		}
		if _, dup := seen[name]; dup {
			issues = append(issues, fmt.Sprintf("scenario %q: duplicate name", name))
		}
		seen[name] = idx

		issues = append(issues, validateMultipart(scenario.Multipart, name)...)

		if dep := strings.TrimSpace(scenario.DependsOn); dep != "" {
			depIdx, known := seen[dep]
			if !known || depIdx >= idx {
				issues = append(issues, fmt.Sprintf(
					"scenario %q: depends_on %q must name an earlier scenario", name, dep))
			}
		}
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

func validateMultipart(parts []MultipartPart, scenario string) []string {
	var issues []string
	where := ""
	if scenario != "" {
		where = fmt.Sprintf(" in scenario %q", scenario)
	}
	for _, part := range parts {
		switch part.Type {
		case MultipartFile:
			if strings.TrimSpace(part.Path) == "" {
				issues = append(issues, fmt.Sprintf("multipart file part %q requires 'path'%s", part.Name, where))
			}
		case MultipartField:
			if part.Value == "" {
				issues = append(issues, fmt.Sprintf("multipart field part %q requires 'value'%s", part.Name, where))
			}
		default:
			issues = append(issues, fmt.Sprintf("multipart part %q has unknown type %q%s", part.Name, part.Type, where))
		}
	}
	return issues
}

// ParseDuration converts the run duration string to a time.Duration. It
// accepts "30s", "5m", "2h", and bare numbers interpreted as seconds.
func ParseDuration(s string) (time.Duration, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("duration is required")
	}

	unit := time.Second
	digits := trimmed
	switch {
	case strings.HasSuffix(trimmed, "s"):
		digits = strings.TrimSuffix(trimmed, "s")
	case strings.HasSuffix(trimmed, "m"):
		digits = strings.TrimSuffix(trimmed, "m")
		unit = time.Minute
	case strings.HasSuffix(trimmed, "h"):
		digits = strings.TrimSuffix(trimmed, "h")
		unit = time.Hour
	}

	n, err := parseUint(digits)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return time.Duration(n) * unit, nil
}

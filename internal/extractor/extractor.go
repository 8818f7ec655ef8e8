// Package extractor provides JSON value extraction from HTTP response bodies
// for populating scenario variables.
package extractor

import (
	"encoding/json"
	"sort"

	"github.com/fluxload/flux/internal/variables"
)

// Logger interface for warning output.
type Logger interface {
	Warn(format string, args ...interface{})
}

// Extract resolves a path expression against a JSON body and returns the
// matched value. The second return is false when the body is not valid JSON,
// the path resolves to nothing, or the resolved value is JSON null.
// If the path resolves to an array, the first element is taken.
func Extract(body []byte, path string) (Value, bool) {
	if !json.Valid(body) {
		return Value{}, false
	}
	return find(body, path)
}

// ExtractAll applies every extraction rule (variable name to path expression)
// to the response body and writes successful results into the store. Rules
// are applied independently in sorted variable-name order; a failure in one
// rule never prevents the others from applying. Warnings are reported through
// the logger, which may be nil.
func ExtractAll(body []byte, rules map[string]string, store variables.Store, logger Logger) {
	if len(rules) == 0 || store == nil {
		return
	}

	if !json.Valid(body) {
		if logger != nil {
			logger.Warn("response body is not valid JSON, skipping extraction")
		}
		return
	}

	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := rules[name]
		value, ok := find(body, path)
		if !ok {
			if logger != nil {
				logger.Warn("path %q matched nothing for variable %q", path, name)
			}
			continue
		}
		store.Set(name, value.Text())
	}
}

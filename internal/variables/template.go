package variables

import "regexp"

// placeholderPattern matches "{{ name }}" with exactly one space of padding
// on each side of the variable name.
var placeholderPattern = regexp.MustCompile(`\{\{ ([^}\s]+) \}\}`)

// Substitute replaces every "{{ name }}" placeholder in template with the
// stored value for name. Placeholders whose name is not present in the store
// are left verbatim. A nil store returns the template unchanged.
func Substitute(template string, store Store) string {
	if store == nil {
		return template
	}
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		parts := placeholderPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if value, ok := store.Get(parts[1]); ok {
			return value
		}
		return match
	})
}

// SubstituteMap applies Substitute to every value of a string map, returning
// a new map. Keys are copied as-is.
func SubstituteMap(values map[string]string, store Store) map[string]string {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]string, len(values))
	for key, value := range values {
		out[key] = Substitute(value, store)
	}
	return out
}

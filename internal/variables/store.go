// Package variables provides per-pass variable storage and template
// substitution for chained scenario steps.
package variables

// Store defines the interface for variable storage.
type Store interface {
	// Set stores a variable with the given key and value.
	Set(key, value string)

	// Get retrieves a variable by key. Returns (value, true) if found,
	// or ("", false) if the key is not present.
	Get(key string) (string, bool)

	// GetAll returns a copy of all stored variables.
	GetAll() map[string]string

	// Clear removes all stored variables.
	Clear()
}

// MemoryStore is a simple map-based implementation of the Store interface.
// It is scoped to one pass through a scenario chain and never shared across
// goroutines, so it does not require mutex protection.
type MemoryStore struct {
	variables map[string]string
}

// NewStore creates and returns a new MemoryStore instance.
func NewStore() Store {
	return &MemoryStore{
		variables: make(map[string]string),
	}
}

// Set stores a variable with the given key and value.
func (m *MemoryStore) Set(key, value string) {
	m.variables[key] = value
}

// Get retrieves a variable by key. Returns (value, true) if found,
// or ("", false) if the key is not present.
func (m *MemoryStore) Get(key string) (string, bool) {
	value, ok := m.variables[key]
	return value, ok
}

// GetAll returns a copy of all stored variables.
func (m *MemoryStore) GetAll() map[string]string {
	result := make(map[string]string, len(m.variables))
	for key, value := range m.variables {
		result[key] = value
	}
	return result
}

// Clear removes all stored variables.
func (m *MemoryStore) Clear() {
	m.variables = make(map[string]string)
}

package variables_test

import (
	"testing"

	"github.com/fluxload/flux/internal/variables"
)

func TestStoreSetGet(t *testing.T) {
	store := variables.NewStore()

	store.Set("token", "abc123")

	value, ok := store.Get("token")
	if !ok {
		t.Fatalf("Get(token) not found")
	}
	if value != "abc123" {
		t.Errorf("Get(token) = %q, want abc123", value)
	}

	if _, ok := store.Get("missing"); ok {
		t.Errorf("Get(missing) found, want not found")
	}
}

func TestStoreGetAllReturnsCopy(t *testing.T) {
	store := variables.NewStore()
	store.Set("a", "1")
	store.Set("b", "2")

	all := store.GetAll()
	if len(all) != 2 {
		t.Fatalf("GetAll() len = %d, want 2", len(all))
	}

	// Mutating the copy must not affect the store.
	all["a"] = "changed"
	if value, _ := store.Get("a"); value != "1" {
		t.Errorf("store mutated through GetAll copy: a = %q", value)
	}
}

func TestStoreClear(t *testing.T) {
	store := variables.NewStore()
	store.Set("a", "1")
	store.Clear()

	if len(store.GetAll()) != 0 {
		t.Errorf("expected empty store after Clear")
	}
}

func TestSubstitute(t *testing.T) {
	store := variables.NewStore()
	store.Set("token", "abc123")
	store.Set("user", "john")

	got := variables.Substitute("Bearer {{ token }} for {{ user }}", store)
	if got != "Bearer abc123 for john" {
		t.Errorf("Substitute() = %q, want %q", got, "Bearer abc123 for john")
	}
}

func TestSubstituteUnknownPlaceholderLeftVerbatim(t *testing.T) {
	store := variables.NewStore()

	got := variables.Substitute("{{ unknown }}", store)
	if got != "{{ unknown }}" {
		t.Errorf("Substitute() = %q, want placeholder untouched", got)
	}
}

func TestSubstituteRequiresExactPadding(t *testing.T) {
	store := variables.NewStore()
	store.Set("token", "abc")

	// No padding or double padding is not the placeholder syntax.
	cases := []string{"{{token}}", "{{  token  }}", "{ token }"}
	for _, template := range cases {
		if got := variables.Substitute(template, store); got != template {
			t.Errorf("Substitute(%q) = %q, want unchanged", template, got)
		}
	}
}

func TestSubstituteNilStore(t *testing.T) {
	if got := variables.Substitute("{{ a }}", nil); got != "{{ a }}" {
		t.Errorf("Substitute with nil store = %q, want unchanged", got)
	}
}

func TestSubstituteMap(t *testing.T) {
	store := variables.NewStore()
	store.Set("id", "42")

	out := variables.SubstituteMap(map[string]string{
		"Authorization": "Bearer {{ id }}",
		"Accept":        "application/json",
	}, store)

	if out["Authorization"] != "Bearer 42" {
		t.Errorf("Authorization = %q, want Bearer 42", out["Authorization"])
	}
	if out["Accept"] != "application/json" {
		t.Errorf("Accept = %q, want unchanged", out["Accept"])
	}
}

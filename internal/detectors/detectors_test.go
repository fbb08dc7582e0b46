package detectors

import (
	"testing"

	"github.com/nightjar-sec/nightjar/internal/parser"
)

func TestNewRegistryUnknownID(t *testing.T) {
	if _, err := NewRegistry(map[string]bool{"no_such_rule": false}, nil); err == nil {
		t.Fatal("expected error for unknown detector id")
	}
	if _, err := NewRegistry(nil, map[string]float64{"no_such_rule": 1}); err == nil {
		t.Fatal("expected error for unknown detector id in weights")
	}
}

func TestNewRegistryWeightRange(t *testing.T) {
	if _, err := NewRegistry(nil, map[string]float64{"shell_exec": 11}); err == nil {
		t.Fatal("expected error for weight above 10")
	}
	if _, err := NewRegistry(nil, map[string]float64{"shell_exec": -1}); err == nil {
		t.Fatal("expected error for negative weight")
	}
}

func TestRegistryDisable(t *testing.T) {
	r, err := NewRegistry(map[string]bool{"shell_exec": false}, nil)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if r.Len() != len(IDs())-1 {
		t.Fatalf("expected %d detectors, got %d", len(IDs())-1, r.Len())
	}
	for _, d := range r.ForKind(parser.KindCall) {
		if d.ID == "shell_exec" {
			t.Fatal("disabled detector still registered")
		}
	}
}

func TestRegistryWeightOverride(t *testing.T) {
	r, err := NewRegistry(nil, map[string]float64{"code_exec": 2.5})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if w := r.Weight("code_exec"); w != 2.5 {
		t.Fatalf("expected weight 2.5, got %v", w)
	}
	if w := r.Weight("shell_exec"); w != 1 {
		t.Fatalf("expected default weight 1, got %v", w)
	}
}

func TestDefaultRegistryCoversAllKinds(t *testing.T) {
	r := DefaultRegistry()
	if r.Len() != len(IDs()) {
		t.Fatalf("expected %d detectors, got %d", len(IDs()), r.Len())
	}
	if len(r.ForKind(parser.KindCall)) == 0 {
		t.Fatal("no call detectors registered")
	}
	if len(r.ForKind(parser.KindImport)) == 0 {
		t.Fatal("no import detectors registered")
	}
}

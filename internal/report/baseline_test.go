package report

import (
	"path/filepath"
	"testing"

	"github.com/nightjar-sec/nightjar/internal/types"
)

func TestBaselineRoundTrip(t *testing.T) {
	known := types.Finding{Detector: "shell_exec", Path: "a.py", Span: types.Span{Start: 5, End: 20}}
	fresh := types.Finding{Detector: "code_exec", Path: "a.py", Span: types.Span{Start: 40, End: 55}}

	p := filepath.Join(t.TempDir(), "nightjar.baseline.json")
	if err := SaveBaseline(p, []types.Finding{known}); err != nil {
		t.Fatalf("SaveBaseline: %v", err)
	}
	base, err := LoadBaseline(p)
	if err != nil {
		t.Fatalf("LoadBaseline: %v", err)
	}

	out := FilterNewFindings([]types.Finding{known, fresh}, base)
	if len(out) != 1 || out[0].Detector != "code_exec" {
		t.Fatalf("expected only the new finding, got %+v", out)
	}
}

func TestLoadBaselineMissingFile(t *testing.T) {
	base, err := LoadBaseline(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatal("expected an error for a missing baseline")
	}
	if base.Items == nil {
		t.Fatal("baseline items must still be usable")
	}
}

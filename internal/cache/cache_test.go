package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nightjar-sec/nightjar/internal/types"
)

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	// initial load should return empty DB and error
	db, _ := Load(dir)
	if db.Entries == nil {
		t.Fatalf("expected entries map initialized")
	}
	db.Entries["pkg/mod.py"] = Entry{
		Hash:    "deadbeef00000000",
		Status:  types.StatusOK,
		Verdict: types.Verdict{Path: "pkg/mod.py", Label: "benign"},
	}
	if err := Save(dir, db); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".nightjarcache.json")); err != nil {
		t.Fatalf("cache file not written: %v", err)
	}
	db2, err := Load(dir)
	if err != nil {
		t.Fatalf("load after save: %v", err)
	}
	got := db2.Entries["pkg/mod.py"]
	if got.Hash != "deadbeef00000000" || got.Verdict.Label != "benign" {
		t.Fatalf("unexpected entry: %+v", got)
	}
}

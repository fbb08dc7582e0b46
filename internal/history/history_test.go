package history

import (
	"testing"
	"time"

	"github.com/nightjar-sec/nightjar/internal/engine"
	"github.com/nightjar-sec/nightjar/internal/types"
)

func TestAppendAndLoad(t *testing.T) {
	root := t.TempDir()
	l := NewLog(root)

	for i, id := range []string{"run-1", "run-2"} {
		rec := RunRecord{
			Timestamp: time.Now().Add(time.Duration(i) * time.Second),
			RunID:     id,
			Root:      root,
			Units:     3,
		}
		if err := l.Append(rec); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	records, err := l.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].RunID != "run-2" {
		t.Fatalf("expected newest first, got %q", records[0].RunID)
	}
}

func TestNewRunRecord(t *testing.T) {
	res := engine.BatchResult{
		ID: "run-9",
		Units: []engine.UnitResult{
			{Status: types.StatusOK, Verdict: types.Verdict{Label: "benign"}},
			{Status: types.StatusOK, Verdict: types.Verdict{
				Label:    "malicious",
				Findings: []types.Finding{{Detector: "shell_exec"}},
			}},
			{Status: types.StatusParseError},
		},
		Duration: time.Second,
	}
	rec := NewRunRecord("/pkg", res)
	if rec.RunID != "run-9" || rec.Units != 3 || rec.TotalFindings != 1 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Labels["malicious"] != 1 || rec.Statuses["parse_error"] != 1 {
		t.Fatalf("unexpected tallies: %+v", rec)
	}
}

package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nightjar-sec/nightjar/internal/engine"
	"github.com/nightjar-sec/nightjar/internal/types"
)

func sampleBatch() engine.BatchResult {
	return engine.BatchResult{
		ID: "run-1",
		Units: []engine.UnitResult{
			{
				Path:   "pkg/mod.py",
				Status: types.StatusOK,
				Verdict: types.Verdict{
					Path:  "pkg/mod.py",
					Score: 4.1,
					Label: "suspicious",
					Findings: []types.Finding{{
						Detector:   "shell_exec",
						Category:   types.CatDynamicCodeExec,
						Severity:   types.SevHigh,
						Confidence: 0.9,
						Path:       "pkg/mod.py",
						Span:       types.Span{Start: 10, End: 30, Line: 2, Col: 1},
						Evidence:   "os.system",
					}},
				},
			},
			{
				Path:   "pkg/broken.py",
				Status: types.StatusParseError,
				Err:    errors.New("pkg/broken.py:1:5: expected end of statement"),
			},
		},
		Duration: 1200 * time.Millisecond,
	}
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	PrintTable(&buf, sampleBatch(), PrintOptions{NoColor: true, Duration: 1200 * time.Millisecond})
	out := buf.String()
	for _, want := range []string{
		"pkg/mod.py", "suspicious", "shell_exec", "pkg/mod.py:2:1",
		"parse_error", "Findings: 1 (high: 1, medium: 0, low: 0)", "Units analyzed: 2",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestPrintTableNoFindings(t *testing.T) {
	var buf bytes.Buffer
	res := engine.BatchResult{Units: []engine.UnitResult{{
		Path: "ok.py", Status: types.StatusOK,
		Verdict: types.Verdict{Path: "ok.py", Label: "benign"},
	}}}
	PrintTable(&buf, res, PrintOptions{NoColor: true})
	if !strings.Contains(buf.String(), "Findings: 0") {
		t.Fatalf("expected zero-findings footer, got:\n%s", buf.String())
	}
}

func TestShouldFail(t *testing.T) {
	benign := engine.BatchResult{Units: []engine.UnitResult{{
		Status: types.StatusOK, Verdict: types.Verdict{Label: "benign"},
	}}}
	suspicious := engine.BatchResult{Units: []engine.UnitResult{{
		Status: types.StatusOK, Verdict: types.Verdict{Label: "suspicious"},
	}}}
	malicious := engine.BatchResult{Units: []engine.UnitResult{{
		Status: types.StatusTruncated, Verdict: types.Verdict{Label: "malicious"},
	}}}

	if ShouldFail(benign, "suspicious") {
		t.Fatal("benign batch must not fail")
	}
	if ShouldFail(benign, "benign") {
		t.Fatal("benign label never fails the run")
	}
	if !ShouldFail(suspicious, "suspicious") {
		t.Fatal("suspicious batch must fail at the suspicious threshold")
	}
	if ShouldFail(suspicious, "malicious") {
		t.Fatal("suspicious batch must pass at the malicious threshold")
	}
	if !ShouldFail(malicious, "malicious") {
		t.Fatal("malicious truncated unit must still fail")
	}
	if !ShouldFail(malicious, "bogus") {
		t.Fatal("unknown threshold defaults to suspicious")
	}
}

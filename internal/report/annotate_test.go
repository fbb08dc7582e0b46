package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nightjar-sec/nightjar/internal/types"
)

func TestAnnotate(t *testing.T) {
	source := []byte("import os\nos.system(\"id\")\n")
	f := types.Finding{
		Detector: "shell_exec",
		Path:     "pkg/mod.py",
		Span:     types.Span{Start: 10, End: 25, Line: 2, Col: 1},
		Evidence: "os.system",
	}
	var buf bytes.Buffer
	Annotate(&buf, f, source, true)
	out := buf.String()
	if !strings.Contains(out, "pkg/mod.py:2:1 [shell_exec] os.system") {
		t.Fatalf("missing header line:\n%s", out)
	}
	if !strings.Contains(out, "os.system(\"id\")") {
		t.Fatalf("missing source line:\n%s", out)
	}
	if !strings.Contains(out, "^") {
		t.Fatalf("missing caret:\n%s", out)
	}
}

func TestAnnotateLineOutOfRange(t *testing.T) {
	var buf bytes.Buffer
	f := types.Finding{Path: "x.py", Span: types.Span{Line: 99}}
	Annotate(&buf, f, []byte("x = 1\n"), true)
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestExtractLine(t *testing.T) {
	src := []byte("one\ntwo\nthree")
	if got := extractLine(src, 2); got != "two" {
		t.Fatalf("line 2 = %q", got)
	}
	if got := extractLine(src, 3); got != "three" {
		t.Fatalf("unterminated last line = %q", got)
	}
	if got := extractLine(src, 0); got != "" {
		t.Fatalf("line 0 = %q", got)
	}
}

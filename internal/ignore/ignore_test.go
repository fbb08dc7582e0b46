package ignore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIgnoreMatch(t *testing.T) {
	dir := t.TempDir()
	ig := filepath.Join(dir, ".nightjarignore")
	content := "vendor/\n*.pyc\n# comment\n\ntests/conftest.py\n"
	if err := os.WriteFile(ig, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(ig)
	if err != nil {
		t.Fatal(err)
	}
	cases := map[string]bool{
		"vendor/pkg/mod.py":  true,
		"build/cached.pyc":   true,
		"tests/conftest.py":  true,
		"src/app.py":         false,
		"vendored/helper.py": false,
	}
	for p, want := range cases {
		if got := m.Match(p); got != want {
			t.Fatalf("Match(%q)=%v want %v", p, got, want)
		}
	}
}

func TestIgnoreMissingFile(t *testing.T) {
	m, err := Load(filepath.Join(t.TempDir(), ".nightjarignore"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if m.Match("anything.py") {
		t.Fatal("empty matcher must match nothing")
	}
}

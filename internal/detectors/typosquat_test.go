package detectors

import (
	"strings"
	"testing"
)

func TestTyposquatSubstitution(t *testing.T) {
	src := "import requestz\n"
	fs := evalPy(t, TyposquatImport, src)
	if len(fs) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(fs))
	}
	if !strings.Contains(fs[0].Evidence, "near requests") {
		t.Fatalf("unexpected evidence %q", fs[0].Evidence)
	}
}

func TestTyposquatMissingCharacter(t *testing.T) {
	src := "from colorma import init\n"
	fs := evalPy(t, TyposquatImport, src)
	if len(fs) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(fs))
	}
	if !strings.Contains(fs[0].Evidence, "near colorama") {
		t.Fatalf("unexpected evidence %q", fs[0].Evidence)
	}
}

func TestTyposquatExactNameIgnored(t *testing.T) {
	src := "import requests\nimport numpy\n"
	if fs := evalPy(t, TyposquatImport, src); len(fs) != 0 {
		t.Fatalf("exact names are not typosquats, got %+v", fs)
	}
}

func TestTyposquatShortNamesIgnored(t *testing.T) {
	src := "import nump\n"
	if fs := evalPy(t, TyposquatImport, src); len(fs) != 0 {
		t.Fatalf("names under five characters are skipped, got %+v", fs)
	}
}

func TestTyposquatDistantNamesIgnored(t *testing.T) {
	src := "import mypackage\n"
	if fs := evalPy(t, TyposquatImport, src); len(fs) != 0 {
		t.Fatalf("expected no findings, got %+v", fs)
	}
}

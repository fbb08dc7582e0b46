package detectors

import (
	"testing"

	"github.com/nightjar-sec/nightjar/internal/types"
)

func TestObfuscatedCallableGetattrConcat(t *testing.T) {
	src := "import os\ngetattr(os, \"sys\" + \"tem\")(\"id\")\n"
	fs := evalPy(t, ObfuscatedCallable, src)
	if len(fs) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(fs))
	}
	if fs[0].Severity != types.SevHigh || fs[0].Evidence != "os.system" {
		t.Fatalf("unexpected finding: %+v", fs[0])
	}
}

func TestObfuscatedCallableSysModules(t *testing.T) {
	src := "import sys\nsys.modules[\"os\"].system(\"id\")\n"
	fs := evalPy(t, ObfuscatedCallable, src)
	if len(fs) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(fs))
	}
	if fs[0].Evidence != "os.system" {
		t.Fatalf("unexpected evidence %q", fs[0].Evidence)
	}
}

func TestObfuscatedCallableImportChain(t *testing.T) {
	src := "m = __import__(\"sub\" + \"process\")\nm.call(\"id\")\n"
	fs := evalPy(t, ObfuscatedCallable, src)
	if len(fs) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(fs))
	}
	if fs[0].Evidence != "subprocess.call" {
		t.Fatalf("unexpected evidence %q", fs[0].Evidence)
	}
}

func TestObfuscatedCallableUnresolvedGetattr(t *testing.T) {
	src := "import os\nimport random\n" +
		"name = random.choice([\"getcwd\", \"getuid\"])\n" +
		"getattr(os, name)()\n"
	fs := evalPy(t, ObfuscatedCallable, src)
	if len(fs) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(fs))
	}
	if fs[0].Severity != types.SevMed || fs[0].Evidence != "getattr(<dynamic>)" {
		t.Fatalf("unexpected finding: %+v", fs[0])
	}
}

func TestObfuscatedCallablePlainCallsIgnored(t *testing.T) {
	src := "import os\nos.system(\"id\")\ngetattr(os, \"getcwd\")\n"
	if fs := evalPy(t, ObfuscatedCallable, src); len(fs) != 0 {
		t.Fatalf("plain dotted calls are not obfuscation, got %+v", fs)
	}
}

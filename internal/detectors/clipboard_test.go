package detectors

import (
	"testing"

	"github.com/nightjar-sec/nightjar/internal/types"
)

func TestClipboardReadPyperclip(t *testing.T) {
	fs := evalPy(t, ClipboardRead, "import pyperclip\ndata = pyperclip.paste()\n")
	if len(fs) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(fs))
	}
	if fs[0].Evidence != "pyperclip.paste" || fs[0].Severity != types.SevMed {
		t.Fatalf("unexpected finding %+v", fs[0])
	}
}

func TestClipboardReadWin32(t *testing.T) {
	src := "import win32clipboard\n" +
		"win32clipboard.OpenClipboard()\n" +
		"d = win32clipboard.GetClipboardData()\n"
	fs := evalPy(t, ClipboardRead, src)
	if len(fs) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(fs))
	}
	if fs[0].Evidence != "win32clipboard.GetClipboardData" {
		t.Fatalf("unexpected evidence %q", fs[0].Evidence)
	}
}

func TestClipboardReadAliasedImport(t *testing.T) {
	fs := evalPy(t, ClipboardRead, "import pyperclip as pc\nx = pc.paste()\n")
	if len(fs) != 1 || fs[0].Evidence != "pyperclip.paste" {
		t.Fatalf("aliased import not resolved: %+v", fs)
	}
}

func TestClipboardWriteIgnored(t *testing.T) {
	fs := evalPy(t, ClipboardRead, "import pyperclip\npyperclip.copy(\"hello\")\n")
	if len(fs) != 0 {
		t.Fatalf("expected no findings, got %+v", fs)
	}
}

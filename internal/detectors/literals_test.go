package detectors

import (
	"strings"
	"testing"
)

func TestPayloadLiteralBase64Blob(t *testing.T) {
	blob := strings.Repeat("QUJDRA", 24) // 144 chars of base64 alphabet
	src := "payload = \"" + blob + "\"\n"
	fs := evalPy(t, PayloadLiteral, src)
	if len(fs) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(fs))
	}
	if !strings.Contains(fs[0].Evidence, "base64-like") {
		t.Fatalf("unexpected evidence %q", fs[0].Evidence)
	}
}

func TestPayloadLiteralHexBlob(t *testing.T) {
	src := "key = \"" + strings.Repeat("deadbeef", 10) + "\"\n"
	fs := evalPy(t, PayloadLiteral, src)
	if len(fs) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(fs))
	}
	if !strings.Contains(fs[0].Evidence, "hex literal") {
		t.Fatalf("unexpected evidence %q", fs[0].Evidence)
	}
}

func TestPayloadLiteralNumericArray(t *testing.T) {
	elems := strings.TrimSuffix(strings.Repeat("144,", 80), ",")
	src := "buf = [" + elems + "]\n"
	fs := evalPy(t, PayloadLiteral, src)
	if len(fs) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(fs))
	}
	if !strings.Contains(fs[0].Evidence, "80 elements") {
		t.Fatalf("unexpected evidence %q", fs[0].Evidence)
	}
}

func TestPayloadLiteralIgnoresProse(t *testing.T) {
	src := "\"\"\"This module provides a small set of helper functions used by the\n" +
		"command line interface and is not interesting on its own.\"\"\"\n"
	if fs := evalPy(t, PayloadLiteral, src); len(fs) != 0 {
		t.Fatalf("docstrings must pass, got %+v", fs)
	}
}

func TestPayloadLiteralIgnoresShortStrings(t *testing.T) {
	src := "token = \"deadbeef\"\nitems = [1, 2, 3]\n"
	if fs := evalPy(t, PayloadLiteral, src); len(fs) != 0 {
		t.Fatalf("short literals must pass, got %+v", fs)
	}
}

package validate

import "testing"

func TestLengthBetween(t *testing.T) {
	if !LengthBetween("abcd", 1, 4) {
		t.Fatal("expected in range")
	}
	if LengthBetween("abcd", 5, 9) {
		t.Fatal("expected out of range")
	}
}

func TestIsAlphabet(t *testing.T) {
	if !IsAlphabet("abc", "abcdef") {
		t.Fatal("expected alphabet match")
	}
	if IsAlphabet("abz", "abc") {
		t.Fatal("expected alphabet mismatch")
	}
}

func TestIsBase64Std(t *testing.T) {
	if !IsBase64Std("aGVsbG8gd29ybGQ=") {
		t.Fatal("expected base64")
	}
	if !IsBase64Std("aGVs\nbG8=") {
		t.Fatal("line breaks should be tolerated")
	}
	if IsBase64Std("not base64!!") {
		t.Fatal("spaces and bangs are not base64")
	}
	if IsBase64Std("===") {
		t.Fatal("padding alone is not base64")
	}
}

func TestIsHex(t *testing.T) {
	if !IsHex("deadBEEF00") {
		t.Fatal("expected hex")
	}
	if IsHex("deadbeeg") {
		t.Fatal("g is not hex")
	}
	if IsHex("") {
		t.Fatal("empty is not hex")
	}
}

func TestNonPrintableRatio(t *testing.T) {
	if got := NonPrintableRatio("plain text\n"); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if got := NonPrintableRatio("\x00\x01ab"); got != 0.5 {
		t.Fatalf("expected 0.5, got %v", got)
	}
}

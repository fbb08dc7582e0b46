// Package validate holds the character-class heuristics detectors use to
// judge whether a literal looks like an encoded payload rather than prose.
package validate

import "strings"

// LengthBetween reports len(s) in [min, max].
func LengthBetween(s string, min, max int) bool {
	return len(s) >= min && len(s) <= max
}

// IsAlphabet reports whether every byte of s is in allowed.
func IsAlphabet(s, allowed string) bool {
	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(allowed, rune(s[i])) {
			return false
		}
	}
	return true
}

const (
	base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"
	hexAlphabet    = "0123456789abcdefABCDEF"
)

// IsBase64Std reports whether s is standard-alphabet base64 data, allowing
// trailing padding and embedded line breaks.
func IsBase64Std(s string) bool {
	s = strings.ReplaceAll(strings.ReplaceAll(s, "\n", ""), "\r", "")
	s = strings.TrimRight(s, "=")
	if s == "" {
		return false
	}
	return IsAlphabet(s, base64Alphabet)
}

// IsHex reports whether s consists solely of hex digits.
func IsHex(s string) bool {
	return s != "" && IsAlphabet(s, hexAlphabet)
}

// NonPrintableRatio returns the fraction of bytes outside the printable
// ASCII range, not counting ordinary whitespace.
func NonPrintableRatio(s string) float64 {
	if len(s) == 0 {
		return 0
	}
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 0x20 || c > 0x7e) && c != '\n' && c != '\t' && c != '\r' {
			n++
		}
	}
	return float64(n) / float64(len(s))
}

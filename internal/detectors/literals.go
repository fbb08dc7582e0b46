package detectors

import (
	"fmt"

	"github.com/nightjar-sec/nightjar/internal/parser"
	"github.com/nightjar-sec/nightjar/internal/types"
	"github.com/nightjar-sec/nightjar/internal/validate"
)

const (
	minBase64Len  = 120
	minHexLen     = 64
	minBinaryLen  = 40
	minArrayElems = 64
)

// PayloadLiteral flags embedded payload blobs: long base64 or hex strings,
// string literals dominated by non-printable bytes, and large numeric array
// literals (shellcode written as a byte list). Docstrings and ordinary prose
// fail the charset checks and pass through.
var PayloadLiteral = Detector{
	ID:       "payload_literal",
	Category: types.CatObfuscatedLiteral,
	Weight:   1,
	Kinds:    []parser.Kind{parser.KindStr, parser.KindList},
	Evaluate: func(n *parser.Node, ctx *Context) []types.Finding {
		if n.Kind == parser.KindList {
			if len(n.Children) < minArrayElems {
				return nil
			}
			for _, e := range n.Children {
				if e.Kind != parser.KindNum {
					return nil
				}
			}
			return []types.Finding{
				ctx.Finding("payload_literal", types.CatObfuscatedLiteral, types.SevMed, 0.6, n,
					fmt.Sprintf("numeric array literal, %d elements", len(n.Children))),
			}
		}
		if n.Flags&parser.FlagFString != 0 {
			return nil
		}
		s := n.Text
		switch {
		case len(s) >= minBase64Len && validate.IsBase64Std(s):
			return []types.Finding{
				ctx.Finding("payload_literal", types.CatObfuscatedLiteral, types.SevMed, 0.7, n,
					fmt.Sprintf("base64-like literal, %d chars: %s", len(s), clip(s, 40))),
			}
		case len(s) >= minHexLen && validate.IsHex(s):
			return []types.Finding{
				ctx.Finding("payload_literal", types.CatObfuscatedLiteral, types.SevMed, 0.7, n,
					fmt.Sprintf("hex literal, %d chars: %s", len(s), clip(s, 40))),
			}
		case len(s) >= minBinaryLen && validate.NonPrintableRatio(s) > 0.3:
			return []types.Finding{
				ctx.Finding("payload_literal", types.CatObfuscatedLiteral, types.SevMed, 0.65, n,
					fmt.Sprintf("binary string literal, %d bytes", len(s))),
			}
		}
		return nil
	},
}

func clip(s string, max int) string {
	if len(s) > max {
		return s[:max] + "…"
	}
	return s
}

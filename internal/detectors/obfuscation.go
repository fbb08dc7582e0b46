package detectors

import (
	"github.com/nightjar-sec/nightjar/internal/parser"
	"github.com/nightjar-sec/nightjar/internal/types"
)

// ObfuscatedCallable flags sensitive APIs reached through indirection:
// getattr chains, __import__, sys.modules indexing, concatenated or decoded
// attribute names. A call that resolves to a dangerous target through such
// an idiom is worse than the same call written plainly, because the author
// paid to hide it. Indirection that cannot be resolved at all is still
// reported, at lower confidence.
var ObfuscatedCallable = Detector{
	ID:       "obfuscated_callable",
	Category: types.CatObfuscatedLiteral,
	Weight:   1,
	Kinds:    []parser.Kind{parser.KindCall},
	Evaluate: func(n *parser.Node, ctx *Context) []types.Finding {
		if v, ok := ctx.Res.Callable(n); ok {
			if v.Dynamic && isSensitiveAPI(v.Path) {
				return []types.Finding{
					ctx.Finding("obfuscated_callable", types.CatObfuscatedLiteral, types.SevHigh, 0.85, n, v.Target()),
				}
			}
			// a bare getattr/__import__ resolves to itself; fall through so
			// a non-constant name argument is still examined
			if t := v.Target(); t != "getattr" && t != "__import__" {
				return nil
			}
		}
		// unresolvable indirection: getattr/__import__ fed a non-constant name
		c := n.Callee()
		if c == nil || c.Kind != parser.KindName {
			return nil
		}
		var dyn *parser.Node
		switch c.Text {
		case "getattr":
			if args := n.Args(); len(args) >= 2 {
				dyn = args[1]
			}
		case "__import__":
			if args := n.Args(); len(args) >= 1 {
				dyn = args[0]
			}
		default:
			return nil
		}
		if dyn == nil {
			return nil
		}
		if _, _, ok := ctx.Res.FoldString(dyn); ok {
			return nil
		}
		return []types.Finding{
			ctx.Finding("obfuscated_callable", types.CatObfuscatedLiteral, types.SevMed, 0.6, n, c.Text+"(<dynamic>)"),
		}
	},
}

package detectors

import (
	"strings"

	"github.com/nightjar-sec/nightjar/internal/parser"
	"github.com/nightjar-sec/nightjar/internal/resolver"
	"github.com/nightjar-sec/nightjar/internal/types"
)

// argOrigins unions the provenance of every argument of a call.
func argOrigins(n *parser.Node, ctx *Context) resolver.Origin {
	var out resolver.Origin
	for _, c := range n.Children[1:] {
		out |= ctx.Res.Origins(c)
	}
	return out
}

// ShellExec flags process/shell launches. Severity rises when the command
// passed through a decoder first (base64, zlib, rot13, hex) or embeds a
// curl/wget download pipeline.
var ShellExec = Detector{
	ID:       "shell_exec",
	Category: types.CatDynamicCodeExec,
	Weight:   1,
	Kinds:    []parser.Kind{parser.KindCall},
	Evaluate: func(n *parser.Node, ctx *Context) []types.Finding {
		v, ok := ctx.Res.Callable(n)
		if !ok || !isShellCommand(v.Path) {
			return nil
		}
		sev, conf := types.SevMed, 0.7
		if argOrigins(n, ctx).Any(resolver.OriginEncoded) {
			sev, conf = types.SevHigh, 0.9
		}
		out := []types.Finding{
			ctx.Finding("shell_exec", types.CatDynamicCodeExec, sev, conf, n, v.Target()),
		}
		for _, arg := range n.Args() {
			if cmd := foldedText(arg, ctx); strings.Contains(cmd, "curl") || strings.Contains(cmd, "wget") {
				out = append(out,
					ctx.Finding("shell_exec", types.CatDynamicCodeExec, types.SevHigh, 0.9, n, v.Target()+" <- "+firstLine(cmd)))
				break
			}
		}
		return out
	},
}

// CodeExec flags evaluate-arbitrary-code calls: exec, eval, builtins.exec.
var CodeExec = Detector{
	ID:       "code_exec",
	Category: types.CatDynamicCodeExec,
	Weight:   1,
	Kinds:    []parser.Kind{parser.KindCall},
	Evaluate: func(n *parser.Node, ctx *Context) []types.Finding {
		v, ok := ctx.Res.Callable(n)
		if !ok || !isCodeExec(v.Path) {
			return nil
		}
		sev, conf := types.SevMed, 0.7
		if argOrigins(n, ctx).Any(resolver.OriginEncoded) {
			sev, conf = types.SevHigh, 0.95
		}
		return []types.Finding{
			ctx.Finding("code_exec", types.CatDynamicCodeExec, sev, conf, n, v.Target()),
		}
	},
}

// foldedText folds an argument to a string, descending into list/tuple
// elements, and returns the first foldable text found.
func foldedText(arg *parser.Node, ctx *Context) string {
	if s, _, ok := ctx.Res.FoldString(arg); ok {
		return s
	}
	if arg.Kind == parser.KindList || arg.Kind == parser.KindTuple {
		var parts []string
		for _, e := range arg.Children {
			if s, _, ok := ctx.Res.FoldString(e); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	}
	return ""
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 80 {
		s = s[:80] + "…"
	}
	return s
}

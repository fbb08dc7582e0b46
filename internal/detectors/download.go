package detectors

import (
	"strings"

	"github.com/nightjar-sec/nightjar/internal/parser"
	"github.com/nightjar-sec/nightjar/internal/resolver"
	"github.com/nightjar-sec/nightjar/internal/types"
)

// DownloadExec matches the dropper signature: a remote fetch writing bytes
// to a local path, followed later in the same unit by a launch of that path.
// Traversal is in document order, so recording writes as we see them and
// matching launches against the recorded set enforces the ordering:
// execute-before-write never fires.
var DownloadExec = Detector{
	ID:       "download_exec",
	Category: types.CatDownloadAndExecute,
	Weight:   1,
	Kinds:    []parser.Kind{parser.KindCall},
	Evaluate: func(n *parser.Node, ctx *Context) []types.Finding {
		written := ctx.State("download_exec")
		v, vok := ctx.Res.Callable(n)

		// urlretrieve(url, path) fetches and writes in one call
		if vok {
			switch v.Target() {
			case "urllib.request.urlretrieve", "urllib.urlretrieve":
				if args := n.Args(); len(args) >= 2 {
					if p, _, ok := ctx.Res.FoldString(args[1]); ok && p != "" {
						written[p] = "urlretrieve"
					}
				}
				return nil
			}
		}

		// f.write(data) where f came from open(path, "wb") and data carries
		// network provenance
		if c := n.Callee(); c != nil && c.Kind == parser.KindAttribute && c.Text == "write" {
			if oc := openCall(c.Child(0), ctx); oc != nil {
				if args := n.Args(); len(args) == 1 && writableMode(oc, ctx) {
					if ctx.Res.Origins(args[0]).Any(resolver.OriginNetwork) {
						if p, _, ok := ctx.Res.FoldString(oc.Args()[0]); ok && p != "" {
							written[p] = "write"
						}
					}
				}
			}
			return nil
		}

		// launch of a previously written path
		if !vok || len(written) == 0 {
			return nil
		}
		if !isShellCommand(v.Path) && v.Target() != "os.startfile" {
			return nil
		}
		for _, arg := range n.Args() {
			text := foldedText(arg, ctx)
			if text == "" {
				continue
			}
			for p := range written {
				if strings.Contains(text, p) {
					return []types.Finding{
						ctx.Finding("download_exec", types.CatDownloadAndExecute, types.SevHigh, 0.95, n,
							v.Target()+" <- "+firstLine(text)),
					}
				}
			}
		}
		return nil
	},
}

// openCall looks through a single-assignment alias and returns the open()
// call the expression came from, or nil.
func openCall(n *parser.Node, ctx *Context) *parser.Node {
	if n != nil && n.Kind == parser.KindName {
		n = ctx.Res.BoundValue(n)
	}
	if n == nil || n.Kind != parser.KindCall || len(n.Args()) == 0 {
		return nil
	}
	if v, ok := ctx.Res.Callable(n); ok && v.Target() == "open" {
		return n
	}
	return nil
}

// writableMode reports whether the open() call uses a write/append/create
// mode. A missing mode argument is read-only and does not qualify.
func writableMode(oc *parser.Node, ctx *Context) bool {
	var mode *parser.Node
	if args := oc.Args(); len(args) >= 2 {
		mode = args[1]
	}
	if m := oc.Keyword("mode"); m != nil {
		mode = m
	}
	if mode == nil {
		return false
	}
	s, _, ok := ctx.Res.FoldString(mode)
	return ok && strings.ContainsAny(s, "wax")
}

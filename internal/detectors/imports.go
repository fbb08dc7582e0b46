package detectors

import (
	"strings"

	"github.com/nightjar-sec/nightjar/internal/parser"
	"github.com/nightjar-sec/nightjar/internal/types"
)

// watchedModules are imports that legitimate packages rarely need but
// malware leans on. Importing one is a weak signal on its own.
var watchedModules = map[string]bool{
	"ctypes":    true,
	"pickle":    true,
	"marshal":   true,
	"pty":       true,
	"telnetlib": true,
	"winreg":    true,
	"_winreg":   true,
	"keyboard":  true,
	"pynput":    true,
}

// SuspiciousImport flags imports of modules common in malicious packages
// and direct calls to __import__.
var SuspiciousImport = Detector{
	ID:       "suspicious_import",
	Category: types.CatOther,
	Weight:   1,
	Kinds:    []parser.Kind{parser.KindImport, parser.KindImportFrom, parser.KindCall},
	Evaluate: func(n *parser.Node, ctx *Context) []types.Finding {
		switch n.Kind {
		case parser.KindImport:
			var out []types.Finding
			for _, item := range n.Children {
				root := strings.SplitN(item.Text, ".", 2)[0]
				if watchedModules[root] {
					out = append(out,
						ctx.Finding("suspicious_import", types.CatOther, types.SevLow, 0.5, item, "import "+item.Text))
				}
			}
			return out
		case parser.KindImportFrom:
			root := strings.SplitN(strings.TrimLeft(n.Text, "."), ".", 2)[0]
			if watchedModules[root] {
				return []types.Finding{
					ctx.Finding("suspicious_import", types.CatOther, types.SevLow, 0.5, n, "from "+n.Text+" import"),
				}
			}
		case parser.KindCall:
			if c := n.Callee(); c != nil && c.Kind == parser.KindName && c.Text == "__import__" {
				return []types.Finding{
					ctx.Finding("suspicious_import", types.CatOther, types.SevMed, 0.7, n, "__import__"),
				}
			}
		}
		return nil
	},
}

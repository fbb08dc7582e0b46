package detectors

import (
	"github.com/nightjar-sec/nightjar/internal/parser"
	"github.com/nightjar-sec/nightjar/internal/types"
)

// ClipboardRead flags clipboard reads. Clipboard contents routinely hold
// passwords and wallet addresses; a package reading them is harvesting, and
// the classifier amplifies the category when outbound network activity
// shows up in the same unit.
var ClipboardRead = Detector{
	ID:       "clipboard_read",
	Category: types.CatFingerprinting,
	Weight:   1,
	Kinds:    []parser.Kind{parser.KindCall},
	Evaluate: func(n *parser.Node, ctx *Context) []types.Finding {
		v, ok := ctx.Res.Callable(n)
		if !ok {
			return nil
		}
		switch v.Target() {
		case "pyperclip.paste", "win32clipboard.GetClipboardData", "pandas.read_clipboard":
			return []types.Finding{
				ctx.Finding("clipboard_read", types.CatFingerprinting, types.SevMed, 0.85, n, v.Target()),
			}
		}
		return nil
	},
}

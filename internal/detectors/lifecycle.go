package detectors

import (
	"path/filepath"

	"github.com/nightjar-sec/nightjar/internal/parser"
	"github.com/nightjar-sec/nightjar/internal/types"
)

// InstallHook flags code that runs at package install time. setup.py
// executes on `pip install`, so a shell launch or network call at its module
// level runs on every victim machine before the package is ever imported.
var InstallHook = Detector{
	ID:       "install_hook",
	Category: types.CatDynamicCodeExec,
	Weight:   1,
	Kinds:    []parser.Kind{parser.KindCall},
	Evaluate: func(n *parser.Node, ctx *Context) []types.Finding {
		if filepath.Base(ctx.Path) != "setup.py" {
			return nil
		}
		v, ok := ctx.Res.Callable(n)
		if !ok {
			return nil
		}
		target := v.Target()
		if isShellCommand(v.Path) || isCodeExec(v.Path) || isOutboundNetwork(v.Path) || isDownloadRequest(v.Path) {
			return []types.Finding{
				ctx.Finding("install_hook", types.CatDynamicCodeExec, types.SevHigh, 0.9, n,
					target+" in setup.py"),
			}
		}
		// custom install command classes hook the install lifecycle
		if target == "setup" || target == "setuptools.setup" || target == "distutils.core.setup" {
			if n.Keyword("cmdclass") != nil {
				return []types.Finding{
					ctx.Finding("install_hook", types.CatDynamicCodeExec, types.SevMed, 0.7, n,
						"setup(cmdclass=...)"),
				}
			}
		}
		return nil
	},
}

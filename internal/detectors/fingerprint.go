package detectors

import (
	"strings"

	"github.com/nightjar-sec/nightjar/internal/parser"
	"github.com/nightjar-sec/nightjar/internal/types"
)

var sensitiveEnvNames = []string{
	"AWS_SECRET", "AWS_ACCESS", "GITHUB_TOKEN", "NPM_TOKEN", "PYPI_TOKEN",
	"API_KEY", "APIKEY", "SECRET", "PASSWORD", "PRIVATE_KEY", "SSH_AUTH",
}

// Fingerprint flags host/OS/network recon calls. Severity stays low on its
// own; the classifier amplifies the category when it co-occurs with outbound
// network activity in the same unit.
var Fingerprint = Detector{
	ID:       "fingerprint",
	Category: types.CatFingerprinting,
	Weight:   1,
	Kinds:    []parser.Kind{parser.KindCall},
	Evaluate: func(n *parser.Node, ctx *Context) []types.Finding {
		v, ok := ctx.Res.Callable(n)
		if !ok {
			return nil
		}
		target := v.Target()
		if isFingerprintCall(v.Path) {
			sev := types.SevLow
			if target == "os.environ.copy" {
				sev = types.SevMed // full environment grab
			}
			return []types.Finding{
				ctx.Finding("fingerprint", types.CatFingerprinting, sev, 0.6, n, target),
			}
		}
		// dict(os.environ) / str(os.environ): whole-environment capture
		if target == "dict" || target == "str" {
			if args := n.Args(); len(args) == 1 {
				if av := ctx.Res.Resolve(args[0]); av.Target() == "os.environ" {
					return []types.Finding{
						ctx.Finding("fingerprint", types.CatFingerprinting, types.SevMed, 0.7, n, target+"(os.environ)"),
					}
				}
			}
		}
		// os.getenv("AWS_SECRET_ACCESS_KEY") and similar
		if target == "os.getenv" || target == "os.environ.get" {
			if args := n.Args(); len(args) >= 1 {
				if name, _, ok := ctx.Res.FoldString(args[0]); ok {
					upper := strings.ToUpper(name)
					for _, marker := range sensitiveEnvNames {
						if strings.Contains(upper, marker) {
							return []types.Finding{
								ctx.Finding("fingerprint", types.CatFingerprinting, types.SevMed, 0.75, n, target+"("+name+")"),
							}
						}
					}
				}
			}
		}
		return nil
	},
}

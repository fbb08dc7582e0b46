package detectors

import (
	"strings"

	"github.com/nightjar-sec/nightjar/internal/parser"
	"github.com/nightjar-sec/nightjar/internal/types"
)

// startupPaths are file path fragments whose modification survives reboot
// or re-login.
var startupPaths = []string{
	".bashrc", ".bash_profile", ".zshrc", ".profile",
	"/etc/rc.local", "/etc/cron", "autostart", "Start Menu\\Programs\\Startup",
	"LaunchAgents", "systemd/user",
}

// Persistence flags attempts to survive process exit: Windows Run-key
// registry writes, crontab manipulation, and writes to shell startup files.
var Persistence = Detector{
	ID:       "persistence",
	Category: types.CatPersistence,
	Weight:   1,
	Kinds:    []parser.Kind{parser.KindCall},
	Evaluate: func(n *parser.Node, ctx *Context) []types.Finding {
		v, ok := ctx.Res.Callable(n)
		if !ok {
			return nil
		}
		target := v.Target()

		switch target {
		case "winreg.SetValueEx", "_winreg.SetValueEx", "winreg.CreateKey", "_winreg.CreateKey", "winreg.CreateKeyEx":
			sev, conf := types.SevMed, 0.7
			for _, arg := range n.Args() {
				if s, _, ok := ctx.Res.FoldString(arg); ok &&
					strings.Contains(strings.ToLower(s), `currentversion\run`) {
					sev, conf = types.SevHigh, 0.9
					break
				}
			}
			return []types.Finding{
				ctx.Finding("persistence", types.CatPersistence, sev, conf, n, target),
			}
		}

		// crontab via a shell launch
		if isShellCommand(v.Path) {
			for _, arg := range n.Args() {
				if cmd := foldedText(arg, ctx); strings.Contains(cmd, "crontab") {
					return []types.Finding{
						ctx.Finding("persistence", types.CatPersistence, types.SevHigh, 0.85, n,
							target+" <- "+firstLine(cmd)),
					}
				}
			}
			return nil
		}

		// write-mode open of a startup file
		if target == "open" {
			args := n.Args()
			if len(args) == 0 || !writableMode(n, ctx) {
				return nil
			}
			p, _, ok := ctx.Res.FoldString(args[0])
			if !ok {
				return nil
			}
			for _, frag := range startupPaths {
				if strings.Contains(p, frag) {
					return []types.Finding{
						ctx.Finding("persistence", types.CatPersistence, types.SevHigh, 0.85, n, "open("+p+")"),
					}
				}
			}
		}
		return nil
	},
}

package detectors

import (
	"github.com/nightjar-sec/nightjar/internal/parser"
	"github.com/nightjar-sec/nightjar/internal/types"
)

// ProcessInjection flags calls into process/remote-memory primitives:
// OpenProcess, VirtualAllocEx, WriteProcessMemory, CreateRemoteThread and
// friends, and DLL loading through ctypes. Targets reached through resolved
// indirection chains match the same as direct dotted calls.
var ProcessInjection = Detector{
	ID:       "process_injection",
	Category: types.CatProcessInjection,
	Weight:   1,
	Kinds:    []parser.Kind{parser.KindCall},
	Evaluate: func(n *parser.Node, ctx *Context) []types.Finding {
		v, ok := ctx.Res.Callable(n)
		if !ok || !isProcessInjection(v.Path) {
			return nil
		}
		conf := 0.85
		if remoteProcessAPIs[v.Attr] {
			conf = 0.95
		}
		return []types.Finding{
			ctx.Finding("process_injection", types.CatProcessInjection, types.SevHigh, conf, n, v.Target()),
		}
	},
}

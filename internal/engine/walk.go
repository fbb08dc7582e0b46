package engine

import (
	"github.com/nightjar-sec/nightjar/internal/detectors"
	"github.com/nightjar-sec/nightjar/internal/parser"
	"github.com/nightjar-sec/nightjar/internal/resolver"
	"github.com/nightjar-sec/nightjar/internal/types"
)

// traverse visits the tree in pre-order document order, evaluating every
// registered detector interested in each node's kind. An explicit stack
// keeps deeply nested inputs from exhausting the goroutine stack; the node
// budget keeps them from running forever. Findings come back in visit
// order, so identical trees always yield identical finding sequences.
func traverse(tree *parser.Tree, res *resolver.Resolver, reg *detectors.Registry, budget int) ([]types.Finding, bool) {
	ctx := detectors.NewContext(tree.Path, res)
	var findings []types.Finding

	stack := []*parser.Node{tree.Root}
	for len(stack) > 0 {
		if budget--; budget < 0 {
			return findings, true
		}
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, d := range reg.ForKind(n.Kind) {
			findings = append(findings, d.Evaluate(n, ctx)...)
		}

		for i := len(n.Children) - 1; i >= 0; i-- {
			if n.Children[i] != nil {
				stack = append(stack, n.Children[i])
			}
		}
	}
	return findings, false
}

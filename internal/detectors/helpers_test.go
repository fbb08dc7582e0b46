package detectors

import (
	"testing"

	"github.com/nightjar-sec/nightjar/internal/parser"
	"github.com/nightjar-sec/nightjar/internal/resolver"
	"github.com/nightjar-sec/nightjar/internal/types"
)

// evalSource parses src, evaluates d over every node it declared interest
// in, in document order, and returns the findings.
func evalSource(t *testing.T, d Detector, path, src string) []types.Finding {
	t.Helper()
	tree, err := parser.Parse(path, []byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	res := resolver.Index(tree)
	ctx := NewContext(path, res)
	wanted := map[parser.Kind]bool{}
	for _, k := range d.Kinds {
		wanted[k] = true
	}
	var out []types.Finding
	var walk func(n *parser.Node)
	walk = func(n *parser.Node) {
		if wanted[n.Kind] {
			out = append(out, d.Evaluate(n, ctx)...)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(tree.Root)
	return out
}

func evalPy(t *testing.T, d Detector, src string) []types.Finding {
	t.Helper()
	return evalSource(t, d, "pkg/mod.py", src)
}

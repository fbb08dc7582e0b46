// Package detectors holds the behavior-signature rules evaluated against
// every AST node during traversal. Detectors are pure predicates: each
// declares the node kinds it cares about and produces findings from a
// (node, resolver context) pair. Detectors never read each other's output,
// so any evaluation order gives the same result.
package detectors

import (
	"fmt"

	"github.com/nightjar-sec/nightjar/internal/parser"
	"github.com/nightjar-sec/nightjar/internal/resolver"
	"github.com/nightjar-sec/nightjar/internal/types"
)

// Context carries per-unit state into detector evaluation: the unit path,
// the symbolic resolver built for the unit's tree, and scratch state private
// to each detector (used for order-sensitive signatures like
// download-then-execute).
type Context struct {
	Path  string
	Res   *resolver.Resolver
	state map[string]map[string]string
}

// NewContext builds a fresh evaluation context for one unit.
func NewContext(path string, res *resolver.Resolver) *Context {
	return &Context{Path: path, Res: res, state: map[string]map[string]string{}}
}

// State returns the scratch map owned by the named detector. Detectors must
// only touch their own state; cross-detector reads would break independence.
func (c *Context) State(detectorID string) map[string]string {
	m, ok := c.state[detectorID]
	if !ok {
		m = map[string]string{}
		c.state[detectorID] = m
	}
	return m
}

// Finding constructs a finding located at n.
func (c *Context) Finding(id string, cat types.Category, sev types.Severity, conf float64, n *parser.Node, evidence string) types.Finding {
	return types.Finding{
		Detector:   id,
		Category:   cat,
		Severity:   sev,
		Confidence: conf,
		Path:       c.Path,
		Span:       n.Span,
		Evidence:   evidence,
	}
}

// Detector is one behavior signature: an id, the category it reports, the
// node kinds it wants to see, and a pure evaluation function.
type Detector struct {
	ID       string
	Category types.Category
	Weight   float64
	Kinds    []parser.Kind
	Evaluate func(n *parser.Node, ctx *Context) []types.Finding
}

var all = []Detector{
	ProcessInjection,
	ShellExec,
	CodeExec,
	NetworkExfil,
	WebhookExfil,
	Fingerprint,
	ClipboardRead,
	DownloadExec,
	ObfuscatedCallable,
	PayloadLiteral,
	SuspiciousImport,
	TyposquatImport,
	Persistence,
	InstallHook,
}

// All returns a copy of the built-in detector set in registration order.
func All() []Detector {
	out := make([]Detector, len(all))
	copy(out, all)
	return out
}

// IDs lists the built-in detector IDs in registration order.
func IDs() []string {
	ids := make([]string, len(all))
	for i, d := range all {
		ids[i] = d.ID
	}
	return ids
}

// Registry is the immutable, ordered detector set shared by all workers.
// It is safe for unsynchronized concurrent reads and never mutated after
// construction.
type Registry struct {
	detectors []Detector
	byKind    map[parser.Kind][]int
}

// NewRegistry builds a registry from the built-in set, applying per-detector
// enablement and weight overrides. Unknown detector IDs and out-of-range
// weights are configuration errors: coverage must never silently degrade.
func NewRegistry(enabled map[string]bool, weights map[string]float64) (*Registry, error) {
	known := map[string]bool{}
	for _, d := range all {
		known[d.ID] = true
	}
	for id := range enabled {
		if !known[id] {
			return nil, fmt.Errorf("unknown detector id %q", id)
		}
	}
	for id, w := range weights {
		if !known[id] {
			return nil, fmt.Errorf("unknown detector id %q", id)
		}
		if w < 0 || w > 10 {
			return nil, fmt.Errorf("detector %q: weight %v out of range [0,10]", id, w)
		}
	}
	r := &Registry{byKind: map[parser.Kind][]int{}}
	for _, d := range all {
		if on, ok := enabled[d.ID]; ok && !on {
			continue
		}
		if w, ok := weights[d.ID]; ok {
			d.Weight = w
		}
		idx := len(r.detectors)
		r.detectors = append(r.detectors, d)
		for _, k := range d.Kinds {
			r.byKind[k] = append(r.byKind[k], idx)
		}
	}
	return r, nil
}

// DefaultRegistry returns the full built-in set with default weights.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(nil, nil)
	if err != nil {
		panic(err) // built-in set is always valid
	}
	return r
}

// ForKind returns the detectors that declared interest in k, in
// registration order.
func (r *Registry) ForKind(k parser.Kind) []Detector {
	idxs := r.byKind[k]
	if len(idxs) == 0 {
		return nil
	}
	out := make([]Detector, len(idxs))
	for i, idx := range idxs {
		out[i] = r.detectors[idx]
	}
	return out
}

// Len reports the number of enabled detectors.
func (r *Registry) Len() int { return len(r.detectors) }

// Weight returns the severity weight for a detector id; 1 when unknown.
func (r *Registry) Weight(id string) float64 {
	for _, d := range r.detectors {
		if d.ID == id {
			return d.Weight
		}
	}
	return 1
}

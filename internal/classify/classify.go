// Package classify aggregates per-unit findings into a verdict: per-category
// scores, an overall score, and a classification label. Given identical
// findings and policy it always produces an identical verdict.
package classify

import (
	"fmt"
	"sort"

	"github.com/nightjar-sec/nightjar/internal/types"
)

// Band maps a label to the minimum overall score that earns it.
type Band struct {
	Label string  `yaml:"label"`
	Min   float64 `yaml:"min"`
}

// Amplifier boosts the overall score when two categories co-occur in one
// unit. Droppers routinely hide their target API, so download activity plus
// obfuscated literals is worse than either alone.
type Amplifier struct {
	A      types.Category `yaml:"a"`
	B      types.Category `yaml:"b"`
	Factor float64        `yaml:"factor"`
}

// Policy holds the tunable classification constants. Weights and amplifier
// factors are policy, not fixed behavior: they are meant to be calibrated
// against a labeled corpus and loaded from configuration.
type Policy struct {
	// CategoryCap bounds each category's score so one noisy detector cannot
	// dominate the verdict.
	CategoryCap float64
	// Bands are threshold bands ordered by ascending Min. A score exactly on
	// a boundary takes the more severe label.
	Bands      []Band
	Amplifiers []Amplifier
}

// DefaultPolicy returns the built-in classification constants.
func DefaultPolicy() Policy {
	return Policy{
		CategoryCap: 10,
		Bands: []Band{
			{Label: "benign", Min: 0},
			{Label: "suspicious", Min: 3},
			{Label: "malicious", Min: 8},
		},
		Amplifiers: []Amplifier{
			{A: types.CatDownloadAndExecute, B: types.CatObfuscatedLiteral, Factor: 1.5},
			{A: types.CatFingerprinting, B: types.CatNetworkExfiltration, Factor: 1.5},
		},
	}
}

// Validate reports whether the policy is usable. Bands must be non-empty,
// start at zero, and be strictly ascending; amplifier categories must be
// known and factors non-negative.
func (p Policy) Validate() error {
	if p.CategoryCap <= 0 {
		return fmt.Errorf("category cap must be positive, got %v", p.CategoryCap)
	}
	if len(p.Bands) == 0 {
		return fmt.Errorf("at least one threshold band is required")
	}
	if p.Bands[0].Min != 0 {
		return fmt.Errorf("first threshold band must start at 0, got %v", p.Bands[0].Min)
	}
	for i, b := range p.Bands {
		if b.Label == "" {
			return fmt.Errorf("threshold band %d has an empty label", i)
		}
		if i > 0 && b.Min <= p.Bands[i-1].Min {
			return fmt.Errorf("threshold bands must be strictly ascending: %q (%v) after %q (%v)",
				b.Label, b.Min, p.Bands[i-1].Label, p.Bands[i-1].Min)
		}
	}
	for _, a := range p.Amplifiers {
		if !a.A.Valid() || !a.B.Valid() {
			return fmt.Errorf("amplifier references unknown category %q/%q", a.A, a.B)
		}
		if a.Factor < 0 {
			return fmt.Errorf("amplifier %s×%s has negative factor %v", a.A, a.B, a.Factor)
		}
	}
	return nil
}

// Label resolves an overall score to its band label. Boundary values take
// the more severe label.
func (p Policy) Label(score float64) string {
	label := p.Bands[0].Label
	for _, b := range p.Bands {
		if score >= b.Min {
			label = b.Label
		}
	}
	return label
}

type dedupKey struct {
	span types.Span
	cat  types.Category
}

// Classify builds the verdict for one unit. weight maps a detector id to its
// configured severity weight (the registry's Weight method fits). Findings
// sharing span and category collapse to one, keeping the maximum severity.
func Classify(path string, findings []types.Finding, weight func(id string) float64, pol Policy) types.Verdict {
	deduped := dedup(findings)

	perCat := map[types.Category]float64{}
	for _, f := range deduped {
		perCat[f.Category] += f.Severity.Score() * f.Confidence * weight(f.Detector)
	}
	for c, s := range perCat {
		if s > pol.CategoryCap {
			perCat[c] = pol.CategoryCap
		}
	}

	var score float64
	for _, c := range types.Categories() {
		score += perCat[c]
	}
	for _, a := range pol.Amplifiers {
		sa, sb := perCat[a.A], perCat[a.B]
		if sa > 0 && sb > 0 {
			score += a.Factor * min(sa, sb)
		}
	}

	return types.Verdict{
		Path:       path,
		Categories: perCat,
		Score:      score,
		Label:      pol.Label(score),
		Findings:   deduped,
	}
}

// dedup collapses findings with identical span and category, keeping the
// maximum severity (then confidence) and preserving first-seen order.
func dedup(findings []types.Finding) []types.Finding {
	out := make([]types.Finding, 0, len(findings))
	index := map[dedupKey]int{}
	for _, f := range findings {
		k := dedupKey{span: f.Span, cat: f.Category}
		if i, seen := index[k]; seen {
			if better(f, out[i]) {
				out[i] = f
			}
			continue
		}
		index[k] = len(out)
		out = append(out, f)
	}
	return out
}

func better(a, b types.Finding) bool {
	if a.Severity.Score() != b.Severity.Score() {
		return a.Severity.Score() > b.Severity.Score()
	}
	return a.Confidence > b.Confidence
}

// SortFindings orders findings by position, then category, for stable
// rendering of merged batches.
func SortFindings(fs []types.Finding) {
	sort.SliceStable(fs, func(i, j int) bool {
		if fs[i].Path != fs[j].Path {
			return fs[i].Path < fs[j].Path
		}
		if fs[i].Span.Start != fs[j].Span.Start {
			return fs[i].Span.Start < fs[j].Span.Start
		}
		return fs[i].Category < fs[j].Category
	})
}

package core

import (
	"context"

	"github.com/nightjar-sec/nightjar/internal/classify"
	"github.com/nightjar-sec/nightjar/internal/detectors"
	"github.com/nightjar-sec/nightjar/internal/engine"
	"github.com/nightjar-sec/nightjar/internal/types"
)

// Re-export selected internal types as a stable public API surface.
// These are type aliases so external consumers can depend on a stable path.
type (
	Finding     = types.Finding
	Verdict     = types.Verdict
	Unit        = engine.Unit
	UnitResult  = engine.UnitResult
	BatchResult = engine.BatchResult
)

// Options configures an audit of an extracted package tree.
type Options struct {
	Root         string
	IncludeGlobs string
	ExcludeGlobs string
	MaxBytes     int64
	Threads      int
	NodeBudget   int
}

// Audit loads units from the tree at opts.Root and analyzes them with the
// default detector set and classification policy.
func Audit(ctx context.Context, opts Options) (BatchResult, error) {
	units, err := engine.LoadUnits(engine.LoadConfig{
		Root:         opts.Root,
		IncludeGlobs: opts.IncludeGlobs,
		ExcludeGlobs: opts.ExcludeGlobs,
		MaxBytes:     opts.MaxBytes,
	})
	if err != nil {
		return BatchResult{}, err
	}
	return AuditUnits(ctx, units, opts), nil
}

// AuditUnits analyzes pre-materialized units, for callers that fetch and
// extract package archives themselves.
func AuditUnits(ctx context.Context, units []Unit, opts Options) BatchResult {
	return engine.AnalyzeBatch(ctx, units,
		detectors.DefaultRegistry(), classify.DefaultPolicy(),
		engine.Limits{NodeBudget: opts.NodeBudget}, opts.Threads)
}

// NewUnit builds a unit from in-memory source.
func NewUnit(path string, src []byte) Unit {
	return engine.NewUnit(path, src)
}

// DetectorIDs returns the built-in detector IDs.
func DetectorIDs() []string { return detectors.IDs() }

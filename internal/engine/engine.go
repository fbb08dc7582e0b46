package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	xxhash "github.com/cespare/xxhash/v2"
	uuid "github.com/google/uuid"

	"github.com/nightjar-sec/nightjar/internal/classify"
	"github.com/nightjar-sec/nightjar/internal/detectors"
	"github.com/nightjar-sec/nightjar/internal/parser"
	"github.com/nightjar-sec/nightjar/internal/resolver"
	"github.com/nightjar-sec/nightjar/internal/types"
)

// ErrBudgetExceeded marks a unit whose traversal or resolution hit its
// budget. The unit's verdict is still valid; its findings are the partial
// set collected before the cutoff.
var ErrBudgetExceeded = errors.New("analysis budget exceeded")

// Unit is one materialized source file to analyze. Bytes are already in
// memory; the engine never fetches anything itself.
type Unit struct {
	Path   string
	Source []byte
	Hash   string
}

// NewUnit builds a unit with its content hash.
func NewUnit(path string, src []byte) Unit {
	return Unit{Path: path, Source: src, Hash: fastHash(src)}
}

// Limits bounds per-unit analysis so pathological inputs terminate early
// instead of hanging the batch.
type Limits struct {
	// NodeBudget caps the number of AST nodes visited per unit. Zero means
	// the default.
	NodeBudget int
}

const defaultNodeBudget = 100_000

func (l Limits) nodeBudget() int {
	if l.NodeBudget > 0 {
		return l.NodeBudget
	}
	return defaultNodeBudget
}

// UnitResult is the analysis outcome for one unit.
type UnitResult struct {
	Path    string
	Status  types.UnitStatus
	Verdict types.Verdict
	Err     error
}

// BatchResult collects per-unit results for one run.
type BatchResult struct {
	ID       string
	Units    []UnitResult
	Duration time.Duration
}

// Findings returns every finding across the batch in unit order.
func (b BatchResult) Findings() []types.Finding {
	var out []types.Finding
	for _, u := range b.Units {
		out = append(out, u.Verdict.Findings...)
	}
	return out
}

// Analyze runs the full pipeline on one unit: parse, index scopes, traverse
// with the registry, classify. It touches no shared mutable state, so any
// number of calls may run concurrently against the same registry.
func Analyze(unit Unit, reg *detectors.Registry, pol classify.Policy, lim Limits) (res UnitResult) {
	// A bug in a detector or the resolver costs one unit, not the process.
	defer func() {
		if rec := recover(); rec != nil {
			res = UnitResult{
				Path:   unit.Path,
				Status: types.StatusError,
				Err:    fmt.Errorf("internal error analyzing %s: %v", unit.Path, rec),
			}
		}
	}()
	tree, err := parser.Parse(unit.Path, unit.Source)
	if err != nil {
		return UnitResult{Path: unit.Path, Status: types.StatusParseError, Err: err}
	}
	scopes := resolver.Index(tree)
	findings, truncated := traverse(tree, scopes, reg, lim.nodeBudget())

	for _, f := range findings {
		if f.Span.Start < 0 || f.Span.End > len(unit.Source) || f.Span.Start > f.Span.End {
			return UnitResult{
				Path:   unit.Path,
				Status: types.StatusError,
				Err: fmt.Errorf("detector %q produced span [%d,%d) outside unit %q (%d bytes)",
					f.Detector, f.Span.Start, f.Span.End, unit.Path, len(unit.Source)),
			}
		}
	}

	verdict := classify.Classify(unit.Path, findings, reg.Weight, pol)
	if truncated || scopes.Truncated() {
		verdict.Truncated = true
		return UnitResult{Path: unit.Path, Status: types.StatusTruncated, Verdict: verdict, Err: ErrBudgetExceeded}
	}
	return UnitResult{Path: unit.Path, Status: types.StatusOK, Verdict: verdict}
}

// AnalyzeBatch fans units out across workers. Results keep input order. One
// unit's failure never aborts the batch; cancellation is cooperative at unit
// granularity, and units not yet dispatched when the context is canceled are
// reported with an error status.
func AnalyzeBatch(ctx context.Context, units []Unit, reg *detectors.Registry, pol classify.Policy, lim Limits, threads int) BatchResult {
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}
	if threads > len(units) && len(units) > 0 {
		threads = len(units)
	}

	started := time.Now()
	results := make([]UnitResult, len(units))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < threads; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = Analyze(units[i], reg, pol, lim)
			}
		}()
	}

dispatch:
	for i := range units {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	for i := range results {
		if results[i].Status == "" {
			results[i] = UnitResult{Path: units[i].Path, Status: types.StatusError, Err: ctx.Err()}
		}
	}
	return BatchResult{ID: uuid.NewString(), Units: results, Duration: time.Since(started)}
}

func fastHash(b []byte) string {
	if len(b) == 0 {
		return "0000000000000000"
	}
	sum := xxhash.Sum64(b)
	var buf [16]byte
	const hexdigits = "0123456789abcdef"
	for i := 15; i >= 0; i-- {
		buf[i] = hexdigits[sum&0xF]
		sum >>= 4
	}
	return string(buf[:])
}

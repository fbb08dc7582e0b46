package nightjar

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nightjar-sec/nightjar/internal/cache"
	"github.com/nightjar-sec/nightjar/internal/config"
	"github.com/nightjar-sec/nightjar/internal/detectors"
	"github.com/nightjar-sec/nightjar/internal/engine"
	"github.com/nightjar-sec/nightjar/internal/history"
	"github.com/nightjar-sec/nightjar/internal/log"
	"github.com/nightjar-sec/nightjar/internal/report"
	"github.com/nightjar-sec/nightjar/internal/types"
)

var (
	flagPath       string
	flagInclude    string
	flagExclude    string
	flagMaxBytes   int64
	flagEnable     string
	flagDisable    string
	flagConfig     string
	flagNodeBudget int
	flagAnnotate   bool
	flagNoCache    bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit an extracted package tree",
		RunE:  runAudit,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagPath, "path", "p", ".", "root of the extracted package tree")
	cmd.Flags().StringVar(&flagInclude, "include", "", "comma-separated include globs (default **/*.py)")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "comma-separated exclude globs")
	cmd.Flags().Int64Var(&flagMaxBytes, "max-bytes", 0, "skip files larger than this")
	cmd.Flags().StringVar(&flagEnable, "enable", "", "only run these detectors (comma-separated IDs)")
	cmd.Flags().StringVar(&flagDisable, "disable", "", "disable these detectors (comma-separated IDs)")
	cmd.Flags().StringVar(&flagConfig, "config", "", "path to a config file (default: .nightjar.yml in the audited root)")
	cmd.Flags().IntVar(&flagNodeBudget, "node-budget", 0, "max AST nodes visited per unit (0 = default)")
	cmd.Flags().BoolVar(&flagAnnotate, "annotate", false, "print highlighted source lines for findings")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "disable the incremental verdict cache")
}

func runAudit(cmd *cobra.Command, _ []string) error {
	abs, _ := filepath.Abs(flagPath)
	logger := log.Initialize(flagVerbose)
	defer logger.Sync()

	var cfg config.FileConfig
	if flagConfig != "" {
		c, err := config.LoadFile(flagConfig)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
	} else if c, err := config.LoadLocal(abs); err == nil {
		cfg = c
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	reg, err := buildRegistry(cfg, flagEnable, flagDisable)
	if err != nil {
		return err
	}
	pol, err := cfg.Policy()
	if err != nil {
		return err
	}

	units, err := engine.LoadUnits(engine.LoadConfig{
		Root:         abs,
		IncludeGlobs: pickString(flagInclude, cfg.Include),
		ExcludeGlobs: pickString(flagExclude, cfg.Exclude),
		MaxBytes:     pickInt64(flagMaxBytes, cfg.MaxBytes),
	})
	if err != nil {
		return fmt.Errorf("load units: %w", err)
	}
	logger.Debugw("units loaded", "root", abs, "count", len(units), "detectors", reg.Len())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var db cache.DB
	fresh := units
	cached := map[string]engine.UnitResult{}
	if !flagNoCache {
		db, _ = cache.Load(abs)
		fresh = nil
		for _, u := range units {
			if e, ok := db.Entries[u.Path]; ok && e.Hash == u.Hash {
				cached[u.Path] = engine.UnitResult{Path: u.Path, Status: e.Status, Verdict: e.Verdict}
				continue
			}
			fresh = append(fresh, u)
		}
		logger.Debugw("cache", "hits", len(cached), "fresh", len(fresh))
	}

	lim := engine.Limits{NodeBudget: pickInt(flagNodeBudget, cfg.NodeBudget)}
	res := engine.AnalyzeBatch(ctx, fresh, reg, pol, lim, pickInt(flagThreads, cfg.Threads))
	logger.Debugw("batch done", "id", res.ID, "duration", res.Duration)

	if !flagNoCache {
		res.Units = mergeCached(units, res.Units, cached, &db)
		_ = cache.Save(abs, db)
	}

	hist := history.NewLog(abs)
	if err := hist.Append(history.NewRunRecord(abs, res)); err != nil {
		logger.Debugw("history append failed", "err", err)
	}

	if minConf := pickFloat(flagMinConfidence, cfg.MinConfidence); minConf > 0 {
		filterConfidence(&res, minConf)
	}
	if base, err := report.LoadBaseline(filepath.Join(abs, "nightjar.baseline.json")); err == nil {
		for i := range res.Units {
			res.Units[i].Verdict.Findings = report.FilterNewFindings(res.Units[i].Verdict.Findings, base)
		}
	}

	switch {
	case flagSARIF:
		if err := report.WriteSARIF(os.Stdout, res, version); err != nil {
			return fmt.Errorf("sarif error: %w", err)
		}
	case flagJSON:
		if err := report.WriteJSON(os.Stdout, res); err != nil {
			return err
		}
	default:
		report.PrintTable(os.Stdout, res, report.PrintOptions{NoColor: flagNoColor, Duration: res.Duration})
		if flagAnnotate {
			sources := map[string][]byte{}
			for _, u := range units {
				sources[u.Path] = u.Source
			}
			fmt.Fprintln(os.Stdout)
			for _, u := range res.Units {
				for _, f := range u.Verdict.Findings {
					report.Annotate(os.Stdout, f, sources[f.Path], flagNoColor)
				}
			}
		}
	}

	if report.ShouldFail(res, flagFailOn) {
		os.Exit(1)
	}
	return nil
}

// buildRegistry merges config-file detector settings with the CLI
// enable/disable lists. An --enable list turns every unlisted detector off.
func buildRegistry(cfg config.FileConfig, enable, disable string) (*detectors.Registry, error) {
	enabled := map[string]bool{}
	weights := map[string]float64{}
	for id, dc := range cfg.Detectors {
		if dc.Enabled != nil {
			enabled[id] = *dc.Enabled
		}
		if dc.Weight != nil {
			weights[id] = *dc.Weight
		}
	}
	if enable != "" {
		keep := map[string]bool{}
		for _, id := range strings.Split(enable, ",") {
			keep[strings.TrimSpace(id)] = true
		}
		for _, id := range detectors.IDs() {
			enabled[id] = keep[id]
		}
		for id := range keep {
			enabled[id] = true
		}
	}
	if disable != "" {
		for _, id := range strings.Split(disable, ",") {
			enabled[strings.TrimSpace(id)] = false
		}
	}
	reg, err := detectors.NewRegistry(enabled, weights)
	if err != nil {
		return nil, &config.ValidationError{Field: "detectors", Msg: err.Error()}
	}
	return reg, nil
}

// mergeCached interleaves cached verdicts with freshly analyzed results in
// input-unit order, and records clean fresh results back into the cache.
func mergeCached(units []engine.Unit, analyzed []engine.UnitResult, cached map[string]engine.UnitResult, db *cache.DB) []engine.UnitResult {
	if db.Entries == nil {
		db.Entries = map[string]cache.Entry{}
	}
	hashes := map[string]string{}
	for _, u := range units {
		hashes[u.Path] = u.Hash
	}
	byPath := map[string]engine.UnitResult{}
	for _, r := range analyzed {
		byPath[r.Path] = r
		if r.Status == types.StatusOK || r.Status == types.StatusTruncated {
			db.Entries[r.Path] = cache.Entry{Hash: hashes[r.Path], Status: r.Status, Verdict: r.Verdict}
		}
	}
	out := make([]engine.UnitResult, 0, len(units))
	for _, u := range units {
		if r, ok := cached[u.Path]; ok {
			out = append(out, r)
			continue
		}
		if r, ok := byPath[u.Path]; ok {
			out = append(out, r)
		}
	}
	return out
}

// filterConfidence drops displayed findings below the threshold. Verdict
// scores were computed from the full set and are left untouched.
func filterConfidence(res *engine.BatchResult, min float64) {
	for i := range res.Units {
		var kept []types.Finding
		for _, f := range res.Units[i].Verdict.Findings {
			if f.Confidence >= min {
				kept = append(kept, f)
			}
		}
		res.Units[i].Verdict.Findings = kept
	}
}

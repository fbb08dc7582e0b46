// Package report renders batch results as a terminal table, JSON, or SARIF,
// and annotates findings with their source lines.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/nightjar-sec/nightjar/internal/classify"
	"github.com/nightjar-sec/nightjar/internal/engine"
	"github.com/nightjar-sec/nightjar/internal/types"
)

type PrintOptions struct {
	NoColor  bool
	Duration time.Duration
}

// PrintTable renders per-unit verdicts and their findings.
func PrintTable(w io.Writer, res engine.BatchResult, opts PrintOptions) {
	verdicts := tablewriter.NewWriter(w)
	verdicts.Header("UNIT", "LABEL", "SCORE", "FINDINGS", "STATUS")
	for _, u := range res.Units {
		status := string(u.Status)
		if u.Status == types.StatusParseError || u.Status == types.StatusError {
			verdicts.Append([]string{u.Path, "-", "-", "-", status})
			continue
		}
		label := u.Verdict.Label
		if !opts.NoColor {
			label = colorLabel(label)
		}
		verdicts.Append([]string{
			u.Path,
			label,
			fmt.Sprintf("%.1f", u.Verdict.Score),
			fmt.Sprintf("%d", len(u.Verdict.Findings)),
			status,
		})
	}
	verdicts.Render()

	findings := res.Findings()
	if len(findings) > 0 {
		classify.SortFindings(findings)
		fmt.Fprintln(w)
		ft := tablewriter.NewWriter(w)
		ft.Header("SEVERITY", "DETECTOR", "CATEGORY", "LOCATION", "EVIDENCE")
		for _, f := range findings {
			sev := string(f.Severity)
			if !opts.NoColor {
				sev = colorSeverity(f.Severity)
			}
			ft.Append([]string{
				sev,
				f.Detector,
				string(f.Category),
				fmt.Sprintf("%s:%d:%d", f.Path, f.Span.Line, f.Span.Col),
				f.Evidence,
			})
		}
		ft.Render()
	}

	high, med, low := 0, 0, 0
	for _, f := range findings {
		switch f.Severity {
		case types.SevHigh:
			high++
		case types.SevMed:
			med++
		default:
			low++
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Findings: %d (high: %d, medium: %d, low: %d)\n", len(findings), high, med, low)
	fmt.Fprintf(w, "Units analyzed: %d\n", len(res.Units))
	if opts.Duration > 0 {
		fmt.Fprintf(w, "Duration: %.2fs\n", opts.Duration.Seconds())
	}
}

func colorSeverity(s types.Severity) string {
	switch s {
	case types.SevHigh:
		return "\x1b[31mhigh\x1b[0m" // red
	case types.SevMed:
		return "\x1b[33mmedium\x1b[0m" // yellow
	default:
		return "\x1b[36mlow\x1b[0m" // cyan
	}
}

func colorLabel(label string) string {
	switch label {
	case "malicious":
		return "\x1b[31m" + label + "\x1b[0m"
	case "suspicious":
		return "\x1b[33m" + label + "\x1b[0m"
	default:
		return "\x1b[32m" + label + "\x1b[0m"
	}
}

// ShouldFail reports whether the batch contains a verdict at or above the
// fail-on label, for CI exit codes.
func ShouldFail(res engine.BatchResult, failOn string) bool {
	rank := map[string]int{"benign": 0, "suspicious": 1, "malicious": 2}
	th, ok := rank[failOn]
	if !ok {
		th = 1
	}
	for _, u := range res.Units {
		if u.Status == types.StatusOK || u.Status == types.StatusTruncated {
			if rank[u.Verdict.Label] >= th && u.Verdict.Label != "benign" {
				return true
			}
		}
	}
	return false
}

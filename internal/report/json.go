package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/nightjar-sec/nightjar/internal/engine"
	"github.com/nightjar-sec/nightjar/internal/types"
)

type jsonReport struct {
	ID          string      `json:"id"`
	GeneratedAt time.Time   `json:"generated_at"`
	DurationMS  int64       `json:"duration_ms"`
	Units       []jsonUnit  `json:"units"`
	Summary     jsonSummary `json:"summary"`
}

type jsonUnit struct {
	Path    string           `json:"path"`
	Status  types.UnitStatus `json:"status"`
	Error   string           `json:"error,omitempty"`
	Verdict *types.Verdict   `json:"verdict,omitempty"`
}

type jsonSummary struct {
	Units    int            `json:"units"`
	Findings int            `json:"findings"`
	Labels   map[string]int `json:"labels"`
}

// WriteJSON writes the batch result as an indented JSON document.
func WriteJSON(w io.Writer, res engine.BatchResult) error {
	doc := jsonReport{
		ID:          res.ID,
		GeneratedAt: time.Now().UTC(),
		DurationMS:  res.Duration.Milliseconds(),
		Summary:     jsonSummary{Units: len(res.Units), Labels: map[string]int{}},
	}
	for _, u := range res.Units {
		ju := jsonUnit{Path: u.Path, Status: u.Status}
		if u.Err != nil {
			ju.Error = u.Err.Error()
		}
		if u.Status == types.StatusOK || u.Status == types.StatusTruncated {
			v := u.Verdict
			ju.Verdict = &v
			doc.Summary.Findings += len(v.Findings)
			doc.Summary.Labels[v.Label]++
		}
		doc.Units = append(doc.Units, ju)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

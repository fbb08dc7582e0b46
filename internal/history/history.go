// Package history keeps an append-only JSONL record of audit runs, so
// repeated audits of the same package tree can be compared over time.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nightjar-sec/nightjar/internal/engine"
	"github.com/nightjar-sec/nightjar/internal/types"
)

// RunRecord summarizes one audit run.
type RunRecord struct {
	Timestamp     time.Time      `json:"timestamp"`
	RunID         string         `json:"run_id"`
	Root          string         `json:"root"`
	Units         int            `json:"units"`
	TotalFindings int            `json:"total_findings"`
	Labels        map[string]int `json:"labels"`
	Statuses      map[string]int `json:"statuses"`
	Duration      string         `json:"duration"`
}

type Log struct {
	logPath string
}

func NewLog(root string) *Log {
	return &Log{logPath: filepath.Join(root, ".nightjar_history.jsonl")}
}

// Append writes one record to the end of the log.
func (l *Log) Append(record RunRecord) error {
	f, err := os.OpenFile(l.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open history log: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(record); err != nil {
		return fmt.Errorf("write history record: %w", err)
	}
	return nil
}

// Load returns recorded runs, newest first. Malformed lines are skipped.
func (l *Log) Load() ([]RunRecord, error) {
	f, err := os.Open(l.logPath)
	if err != nil {
		return nil, fmt.Errorf("open history log: %w", err)
	}
	defer f.Close()

	var records []RunRecord
	dec := json.NewDecoder(f)
	for dec.More() {
		var r RunRecord
		if err := dec.Decode(&r); err != nil {
			continue
		}
		records = append(records, r)
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// NewRunRecord summarizes a batch result for the log.
func NewRunRecord(root string, res engine.BatchResult) RunRecord {
	rec := RunRecord{
		Timestamp: time.Now(),
		RunID:     res.ID,
		Root:      root,
		Units:     len(res.Units),
		Labels:    map[string]int{},
		Statuses:  map[string]int{},
		Duration:  res.Duration.String(),
	}
	for _, u := range res.Units {
		rec.Statuses[string(u.Status)]++
		if u.Status == types.StatusOK || u.Status == types.StatusTruncated {
			rec.Labels[u.Verdict.Label]++
			rec.TotalFindings += len(u.Verdict.Findings)
		}
	}
	return rec
}

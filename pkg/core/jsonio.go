package core

import (
	"encoding/json"
	"io"
)

// MarshalVerdicts writes the batch's verdicts as indented JSON.
func MarshalVerdicts(w io.Writer, res BatchResult) error {
	verdicts := make([]Verdict, 0, len(res.Units))
	for _, u := range res.Units {
		if u.Err == nil || u.Verdict.Path != "" {
			verdicts = append(verdicts, u.Verdict)
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(verdicts)
}

package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/nightjar-sec/nightjar/internal/types"
)

func TestWriteSARIF(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSARIF(&buf, sampleBatch(), "0.1.0"); err != nil {
		t.Fatalf("WriteSARIF: %v", err)
	}
	var doc struct {
		Version string `json:"version"`
		Schema  string `json:"$schema"`
		Runs    []struct {
			Tool struct {
				Driver struct {
					Name    string `json:"name"`
					Version string `json:"version"`
				} `json:"driver"`
			} `json:"tool"`
			Results []struct {
				RuleID    string `json:"ruleId"`
				Level     string `json:"level"`
				Locations []struct {
					PhysicalLocation struct {
						ArtifactLocation struct {
							URI string `json:"uri"`
						} `json:"artifactLocation"`
						Region struct {
							StartLine int `json:"startLine"`
						} `json:"region"`
					} `json:"physicalLocation"`
				} `json:"locations"`
			} `json:"results"`
		} `json:"runs"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if doc.Version != "2.1.0" || !strings.Contains(doc.Schema, "sarif-2.1.0") {
		t.Fatalf("bad version/schema: %s %s", doc.Version, doc.Schema)
	}
	if len(doc.Runs) != 1 || doc.Runs[0].Tool.Driver.Name != "nightjar" {
		t.Fatalf("bad tool block: %+v", doc.Runs)
	}
	results := doc.Runs[0].Results
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.RuleID != "shell_exec" || r.Level != "error" {
		t.Fatalf("unexpected result: %+v", r)
	}
	loc := r.Locations[0].PhysicalLocation
	if loc.ArtifactLocation.URI != "pkg/mod.py" || loc.Region.StartLine != 2 {
		t.Fatalf("unexpected location: %+v", loc)
	}
}

func TestSevToLevel(t *testing.T) {
	cases := map[types.Severity]string{
		types.SevHigh: "error",
		types.SevMed:  "warning",
		types.SevLow:  "note",
	}
	for sev, want := range cases {
		if got := sevToLevel(sev); got != want {
			t.Fatalf("sevToLevel(%s) = %s, want %s", sev, got, want)
		}
	}
}

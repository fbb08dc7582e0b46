package types

// Severity is a coarse-grained risk level for a finding.
type Severity string

const (
	SevLow  Severity = "low"
	SevMed  Severity = "medium"
	SevHigh Severity = "high"
)

// Score maps a severity to its numeric contribution used by the classifier.
func (s Severity) Score() float64 {
	switch s {
	case SevHigh:
		return 4
	case SevMed:
		return 2.5
	default:
		return 1
	}
}

// Category is the behavior class a detector reports. The set is closed so
// aggregation stays deterministic across runs and configurations.
type Category string

const (
	CatProcessInjection    Category = "process_injection"
	CatNetworkExfiltration Category = "network_exfiltration"
	CatFingerprinting      Category = "fingerprinting"
	CatDownloadAndExecute  Category = "download_and_execute"
	CatObfuscatedLiteral   Category = "obfuscated_literal_construction"
	CatDynamicCodeExec     Category = "dynamic_code_execution"
	CatPersistence         Category = "persistence_or_escalation"
	CatOther               Category = "other"
)

// Categories lists every category in a fixed order. Aggregation iterates this
// slice rather than a map so repeated runs produce identical output.
func Categories() []Category {
	return []Category{
		CatProcessInjection,
		CatNetworkExfiltration,
		CatFingerprinting,
		CatDownloadAndExecute,
		CatObfuscatedLiteral,
		CatDynamicCodeExec,
		CatPersistence,
		CatOther,
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, k := range Categories() {
		if c == k {
			return true
		}
	}
	return false
}

// Span locates a finding inside a source unit. Start and End are byte offsets
// into the unit's text; Line and Col are 1-based and derived from Start.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
	Line  int `json:"line"`
	Col   int `json:"col"`
}

// Finding describes one piece of located evidence of a suspicious behavior:
// the detector that fired, its category and severity, where in the unit it
// fired, and a short evidence string (usually the resolved call target).
type Finding struct {
	Detector   string   `json:"detector"`
	Category   Category `json:"category"`
	Severity   Severity `json:"severity"`
	Confidence float64  `json:"confidence"`
	Path       string   `json:"path"`
	Span       Span     `json:"span"`
	Evidence   string   `json:"evidence"`
}

// Verdict is the aggregated per-unit risk classification.
type Verdict struct {
	Path       string               `json:"path"`
	Categories map[Category]float64 `json:"categories"`
	Score      float64              `json:"score"`
	Label      string               `json:"label"`
	Findings   []Finding            `json:"findings"`
	Truncated  bool                 `json:"truncated,omitempty"`
}

// UnitStatus reports the analysis outcome for one source unit in a batch.
type UnitStatus string

const (
	StatusOK         UnitStatus = "ok"
	StatusParseError UnitStatus = "parse_error"
	StatusTruncated  UnitStatus = "truncated"
	StatusError      UnitStatus = "error"
)

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/nightjar-sec/nightjar/internal/classify"
	"github.com/nightjar-sec/nightjar/internal/detectors"
)

// DetectorConfig overrides one detector's enablement and severity weight.
type DetectorConfig struct {
	Enabled *bool    `yaml:"enabled"`
	Weight  *float64 `yaml:"weight"`
}

// FileConfig is the on-disk YAML configuration shape for nightjar.
type FileConfig struct {
	Include       *string                   `yaml:"include"`
	Exclude       *string                   `yaml:"exclude"`
	MaxBytes      *int64                    `yaml:"max_bytes"`
	Threads       *int                      `yaml:"threads"`
	MinConfidence *float64                  `yaml:"min_confidence"`
	NodeBudget    *int                      `yaml:"node_budget"`
	Detectors     map[string]DetectorConfig `yaml:"detectors"`
	CategoryCap   *float64                  `yaml:"category_cap"`
	Thresholds    []classify.Band           `yaml:"thresholds"`
	Amplifiers    []classify.Amplifier      `yaml:"amplifiers"`
}

// ValidationError is a fatal configuration problem. Analysis never starts
// with a config that would silently degrade detector coverage.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Msg)
}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadLocal searches for a config file in the given root. It supports
// .nightjar.yml/.yaml and nightjar.yml/.yaml.
func LoadLocal(root string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range []string{".nightjar.yml", ".nightjar.yaml", "nightjar.yml", "nightjar.yaml"} {
		p := filepath.Join(root, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, errors.New("no local config")
}

// Registry builds the detector registry described by the config. Unknown
// detector ids and out-of-range weights are fatal.
func (fc FileConfig) Registry() (*detectors.Registry, error) {
	enabled := map[string]bool{}
	weights := map[string]float64{}
	for id, dc := range fc.Detectors {
		if dc.Enabled != nil {
			enabled[id] = *dc.Enabled
		}
		if dc.Weight != nil {
			weights[id] = *dc.Weight
		}
	}
	reg, err := detectors.NewRegistry(enabled, weights)
	if err != nil {
		return nil, &ValidationError{Field: "detectors", Msg: err.Error()}
	}
	return reg, nil
}

// Policy builds the classification policy, falling back to defaults for
// anything the config leaves unset.
func (fc FileConfig) Policy() (classify.Policy, error) {
	pol := classify.DefaultPolicy()
	if fc.CategoryCap != nil {
		pol.CategoryCap = *fc.CategoryCap
	}
	if len(fc.Thresholds) > 0 {
		pol.Bands = fc.Thresholds
	}
	if len(fc.Amplifiers) > 0 {
		pol.Amplifiers = fc.Amplifiers
	}
	if err := pol.Validate(); err != nil {
		return pol, &ValidationError{Field: "thresholds", Msg: err.Error()}
	}
	return pol, nil
}

// Validate checks the whole config at startup; any error is fatal.
func (fc FileConfig) Validate() error {
	if _, err := fc.Registry(); err != nil {
		return err
	}
	if _, err := fc.Policy(); err != nil {
		return err
	}
	if fc.MinConfidence != nil && (*fc.MinConfidence < 0 || *fc.MinConfidence > 1) {
		return &ValidationError{Field: "min_confidence", Msg: fmt.Sprintf("must be in [0,1], got %v", *fc.MinConfidence)}
	}
	if fc.MaxBytes != nil && *fc.MaxBytes < 0 {
		return &ValidationError{Field: "max_bytes", Msg: "must be non-negative"}
	}
	if fc.NodeBudget != nil && *fc.NodeBudget < 0 {
		return &ValidationError{Field: "node_budget", Msg: "must be non-negative"}
	}
	return nil
}

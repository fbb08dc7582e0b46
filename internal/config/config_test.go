package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return p
}

func TestLoadFile_Basic(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "nightjar.yaml", `
threads: 4
max_bytes: 123
min_confidence: 0.5
detectors:
  shell_exec:
    weight: 2.5
  typosquat_import:
    enabled: false
`)
	cfg, err := LoadFile(p)
	require.NoError(t, err)
	require.NotNil(t, cfg.Threads)
	assert.Equal(t, 4, *cfg.Threads)
	require.NotNil(t, cfg.MaxBytes)
	assert.Equal(t, int64(123), *cfg.MaxBytes)
	require.Contains(t, cfg.Detectors, "shell_exec")
	assert.Equal(t, 2.5, *cfg.Detectors["shell_exec"].Weight)
	assert.False(t, *cfg.Detectors["typosquat_import"].Enabled)
	require.NoError(t, cfg.Validate())
}

func TestLoadLocal_PrefersDotfile(t *testing.T) {
	dir := t.TempDir()
	writeTemp(t, dir, "nightjar.yml", "threads: 1\n")
	writeTemp(t, dir, ".nightjar.yml", "threads: 2\n")
	cfg, err := LoadLocal(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg.Threads)
	assert.Equal(t, 2, *cfg.Threads)
}

func TestRegistry_UnknownDetectorFatal(t *testing.T) {
	cfg := FileConfig{Detectors: map[string]DetectorConfig{
		"no_such_detector": {Weight: f64(1)},
	}}
	_, err := cfg.Registry()
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "detectors", verr.Field)
}

func TestRegistry_WeightOutOfRange(t *testing.T) {
	cfg := FileConfig{Detectors: map[string]DetectorConfig{
		"shell_exec": {Weight: f64(11)},
	}}
	_, err := cfg.Registry()
	require.Error(t, err)
}

func TestRegistry_DisableShrinksSet(t *testing.T) {
	full, err := FileConfig{}.Registry()
	require.NoError(t, err)
	off := false
	smaller, err := FileConfig{Detectors: map[string]DetectorConfig{
		"typosquat_import": {Enabled: &off},
	}}.Registry()
	require.NoError(t, err)
	assert.Equal(t, full.Len()-1, smaller.Len())
}

func TestPolicy_NonMonotonicBandsFatal(t *testing.T) {
	cfg, err := LoadFile(writeTemp(t, t.TempDir(), "nightjar.yml", `
thresholds:
  - {label: benign, min: 0}
  - {label: malicious, min: 8}
  - {label: suspicious, min: 3}
`))
	require.NoError(t, err)
	_, err = cfg.Policy()
	require.Error(t, err)
	assert.Error(t, cfg.Validate())
}

func TestValidate_MinConfidenceRange(t *testing.T) {
	bad := 1.5
	cfg := FileConfig{MinConfidence: &bad}
	require.Error(t, cfg.Validate())
}

func f64(v float64) *float64 { return &v }

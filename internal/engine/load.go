package engine

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"

	"github.com/nightjar-sec/nightjar/internal/ignore"
)

// LoadConfig controls how units are materialized from an extracted package
// tree.
type LoadConfig struct {
	Root         string
	IncludeGlobs string // comma-separated, default "**/*.py"
	ExcludeGlobs string // comma-separated
	MaxBytes     int64  // per-file cap, 0 means default
}

const defaultMaxBytes = 4 << 20

// LoadUnits walks an extracted package tree and materializes eligible files
// as units. Oversized and binary files are skipped, as are exact duplicates
// by content hash (vendored copies are common and would double-count every
// finding).
func LoadUnits(cfg LoadConfig) ([]Unit, error) {
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	includes := parseGlobs(cfg.IncludeGlobs)
	if len(includes) == 0 {
		includes = []string{"**/*.py"}
	}
	excludes := parseGlobs(cfg.ExcludeGlobs)
	ign, err := ignore.Load(filepath.Join(cfg.Root, ".nightjarignore"))
	if err != nil {
		return nil, err
	}

	var units []Unit
	seen := map[string]bool{}
	err = filepath.WalkDir(cfg.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if name := d.Name(); name == ".git" || name == "__pycache__" || name == "node_modules" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, _ := filepath.Rel(cfg.Root, p)
		rel = filepath.ToSlash(rel)
		if !matchAny(rel, includes) {
			return nil
		}
		if matchAny(rel, excludes) {
			return nil
		}
		if ign.Match(rel) {
			return nil
		}
		info, _ := d.Info()
		if info != nil && info.Size() > maxBytes {
			return nil
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return nil
		}
		if looksBinary(b) {
			return nil
		}
		u := NewUnit(rel, b)
		if seen[u.Hash] {
			return nil
		}
		seen[u.Hash] = true
		units = append(units, u)
		return nil
	})
	return units, err
}

func parseGlobs(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, g := range strings.Split(s, ",") {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}

func matchAny(rel string, globs []string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(g, filepath.Base(rel)); ok {
			return true
		}
	}
	return false
}

func looksBinary(b []byte) bool {
	const sniff = 800
	n := len(b)
	if n > sniff {
		n = sniff
	}
	for i := 0; i < n; i++ {
		if b[i] == 0 {
			return true
		}
	}
	return false
}

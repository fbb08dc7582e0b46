// Package cache persists per-unit verdicts keyed by content hash, so
// repeated audits of a mostly unchanged tree only re-analyze what changed.
package cache

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/nightjar-sec/nightjar/internal/types"
)

// Entry is the cached outcome for one unit. Only clean analyses are cached;
// error statuses are always recomputed.
type Entry struct {
	Hash    string           `json:"hash"`
	Status  types.UnitStatus `json:"status"`
	Verdict types.Verdict    `json:"verdict"`
}

type DB struct {
	Entries map[string]Entry `json:"entries"`
}

func defaultPath(root string) string {
	return filepath.Join(root, ".nightjarcache.json")
}

func Load(root string) (DB, error) {
	var db DB
	f, err := os.ReadFile(defaultPath(root))
	if err != nil {
		return DB{Entries: map[string]Entry{}}, err
	}
	if err := json.Unmarshal(f, &db); err != nil {
		return DB{Entries: map[string]Entry{}}, err
	}
	if db.Entries == nil {
		db.Entries = map[string]Entry{}
	}
	return db, nil
}

func Save(root string, db DB) error {
	if db.Entries == nil {
		return errors.New("empty cache")
	}
	b, _ := json.MarshalIndent(db, "", "  ")
	return os.WriteFile(defaultPath(root), b, 0o644)
}

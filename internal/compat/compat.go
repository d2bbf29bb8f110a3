// Package compat is the read-only compatibility database: a bundled dataset
// mapping feature IDs to per-environment minimum versions. The dataset is
// parsed once and never mutates, so lookups need no locking.
package compat

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

//go:embed data/compat.json
var bundled []byte

// SupportKind is the per-environment support state.
type SupportKind uint8

const (
	SupportUnknown SupportKind = iota
	SupportVersion
	SupportUnsupported
)

// Support is one environment's support for one feature.
type Support struct {
	Kind    SupportKind
	Version string // set only when Kind == SupportVersion
}

// String renders the report form: a version number, "unsupported", or
// "unknown".
func (s Support) String() string {
	switch s.Kind {
	case SupportVersion:
		return s.Version
	case SupportUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Entry is the compatibility row for one feature.
type Entry struct {
	FeatureID string
	MDNURL    string
	Support   map[string]Support
}

// Database is an immutable feature-ID-keyed compatibility dataset.
type Database struct {
	version string
	entries map[string]Entry
	envs    []string
}

// rawDataset mirrors the JSON layout of the bundled file.
type rawDataset struct {
	Version  string `json:"version"`
	Features map[string]struct {
		MDNURL  string            `json:"mdn_url,omitempty"`
		Support map[string]string `json:"support"`
	} `json:"features"`
}

// NewDatabase parses a dataset from raw JSON. Support values are version
// strings or the literal "unsupported"; environments absent from a feature
// are Unknown.
func NewDatabase(raw []byte) (*Database, error) {
	var ds rawDataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("parse compatibility dataset: %w", err)
	}

	db := &Database{
		version: ds.Version,
		entries: make(map[string]Entry, len(ds.Features)),
	}
	envSet := make(map[string]bool)
	for id, f := range ds.Features {
		entry := Entry{
			FeatureID: id,
			MDNURL:    f.MDNURL,
			Support:   make(map[string]Support, len(f.Support)),
		}
		for env, val := range f.Support {
			envSet[env] = true
			if val == "unsupported" {
				entry.Support[env] = Support{Kind: SupportUnsupported}
			} else {
				entry.Support[env] = Support{Kind: SupportVersion, Version: val}
			}
		}
		db.entries[id] = entry
	}
	for env := range envSet {
		db.envs = append(db.envs, env)
	}
	sort.Strings(db.envs)
	return db, nil
}

var (
	defaultOnce sync.Once
	defaultDB   *Database
	defaultErr  error
)

// Default returns the process-wide database loaded from the bundled
// dataset. The first call parses; later calls are lock-free reads.
func Default() (*Database, error) {
	defaultOnce.Do(func() {
		defaultDB, defaultErr = NewDatabase(bundled)
	})
	return defaultDB, defaultErr
}

// Lookup returns the entry for a feature ID. A missing feature is a data
// state, not an error: callers render it as Unknown.
func (db *Database) Lookup(featureID string) (Entry, bool) {
	e, ok := db.entries[featureID]
	return e, ok
}

// Version is the dataset's own version string.
func (db *Database) Version() string {
	return db.version
}

// Environments returns the sorted union of environment names across all
// entries.
func (db *Database) Environments() []string {
	out := make([]string, len(db.envs))
	copy(out, db.envs)
	return out
}

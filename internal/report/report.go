// Package report merges detected feature occurrences with compatibility
// data into the serializable analysis report.
package report

import (
	"sort"

	"github.com/jward/jscompat/internal/compat"
	"github.com/jward/jscompat/internal/feature"
)

// MaxExampleLocations caps how many example locations a feature row
// carries, keeping report size independent of input size.
const MaxExampleLocations = 5

// Location is one example occurrence position.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Row is one deduplicated feature in a report.
type Row struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Category      string            `json:"category"`
	Count         int               `json:"count"`
	Locations     []Location        `json:"occurrences"`
	MDNURL        string            `json:"mdn_url,omitempty"`
	Compatibility map[string]string `json:"compatibility"`
}

// Report is the analysis result for one source unit.
type Report struct {
	Source         string            `json:"source"`
	DatasetVersion string            `json:"dataset_version,omitempty"`
	Features       []Row             `json:"features"`
	Summary        map[string]string `json:"summary"`
}

// Build aggregates occurrences into a report. Occurrences for the same
// feature collapse into one row carrying the total count and at most
// MaxExampleLocations example positions; rows are ordered lexicographically
// by feature ID. envs defaults to every environment the database knows.
//
// A feature absent from the database is not an error: its compatibility
// row is all "unknown".
func Build(sourceRef string, occs []feature.Occurrence, reg *feature.Registry, db *compat.Database, envs []string) *Report {
	if len(envs) == 0 {
		envs = db.Environments()
	}

	rows := make(map[string]*Row)
	for _, occ := range occs {
		row, ok := rows[occ.FeatureID]
		if !ok {
			row = &Row{ID: occ.FeatureID}
			if rule, ok := reg.Lookup(occ.FeatureID); ok {
				row.Name = rule.Name
				row.Category = string(rule.Category)
			}
			rows[occ.FeatureID] = row
		}
		row.Count++
		if len(row.Locations) < MaxExampleLocations {
			row.Locations = append(row.Locations, Location{Line: occ.StartLine, Column: occ.StartColumn})
		}
	}

	rep := &Report{
		Source:         sourceRef,
		DatasetVersion: db.Version(),
		Features:       make([]Row, 0, len(rows)),
		Summary:        make(map[string]string, len(envs)),
	}

	ids := make([]string, 0, len(rows))
	for id := range rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		row := rows[id]
		entry, found := db.Lookup(id)
		if found {
			row.MDNURL = entry.MDNURL
		}
		row.Compatibility = make(map[string]string, len(envs))
		for _, env := range envs {
			if !found {
				row.Compatibility[env] = compat.Support{}.String()
				continue
			}
			row.Compatibility[env] = entry.Support[env].String()
		}
		rep.Features = append(rep.Features, *row)
	}

	for _, env := range envs {
		rep.Summary[env] = summarizeEnv(rep.Features, env)
	}
	return rep
}

// summarizeEnv computes one environment's summary cell: the most demanding
// minimum version across all features; Unsupported if any feature is
// unsupported there; Unknown when nothing is known.
func summarizeEnv(rows []Row, env string) string {
	minVersion := ""
	known := false
	for _, row := range rows {
		switch v := row.Compatibility[env]; v {
		case "unsupported":
			return "unsupported"
		case "unknown":
			// contributes nothing
		default:
			minVersion = compat.MaxVersion(minVersion, v)
			known = true
		}
	}
	if !known {
		return "unknown"
	}
	return minVersion
}

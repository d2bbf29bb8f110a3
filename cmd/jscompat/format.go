package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jward/jscompat"
)

// batchEntry is one element of the JSON batch output: either a report or
// an error, never both.
type batchEntry struct {
	Source string                   `json:"source"`
	Error  string                   `json:"error,omitempty"`
	Report *jscompat.AnalysisReport `json:"report,omitempty"`
}

func renderJSON(w io.Writer, results []jscompat.BatchResult) error {
	entries := make([]batchEntry, 0, len(results))
	for _, r := range results {
		e := batchEntry{Source: r.Ref}
		if r.Err != nil {
			e.Error = r.Err.Error()
		} else {
			e.Report = r.Report
		}
		entries = append(entries, e)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

func renderText(w io.Writer, results []jscompat.BatchResult) error {
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if r.Err != nil {
			fmt.Fprintf(w, "%s: error: %s\n", r.Ref, r.Err)
			continue
		}
		if err := renderReport(w, r.Report); err != nil {
			return err
		}
	}
	return nil
}

func renderReport(w io.Writer, rep *jscompat.AnalysisReport) error {
	fmt.Fprintf(w, "%s\n", rep.Source)
	if len(rep.Features) == 0 {
		fmt.Fprintln(w, "  no tracked features detected")
		return nil
	}

	envs := summaryEnvs(rep)

	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	header := append([]string{"FEATURE", "CATEGORY", "COUNT", "LINES"}, upper(envs)...)
	fmt.Fprintf(tw, "  %s\n", strings.Join(header, "\t"))
	for _, row := range rep.Features {
		cols := []string{row.ID, row.Category, fmt.Sprint(row.Count), lines(row)}
		for _, env := range envs {
			cols = append(cols, row.Compatibility[env])
		}
		fmt.Fprintf(tw, "  %s\n", strings.Join(cols, "\t"))
	}
	// Summary row: minimum environment versions for the whole file.
	cols := []string{"minimum", "", "", ""}
	for _, env := range envs {
		cols = append(cols, rep.Summary[env])
	}
	fmt.Fprintf(tw, "  %s\n", strings.Join(cols, "\t"))
	return tw.Flush()
}

// summaryEnvs returns the report's environments in stable order.
func summaryEnvs(rep *jscompat.AnalysisReport) []string {
	envs := make([]string, 0, len(rep.Summary))
	for env := range rep.Summary {
		envs = append(envs, env)
	}
	sort.Strings(envs)
	return envs
}

func upper(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToUpper(s)
	}
	return out
}

// lines formats a row's example locations as "12,40,103".
func lines(row jscompat.FeatureRow) string {
	parts := make([]string, 0, len(row.Locations))
	for _, loc := range row.Locations {
		parts = append(parts, fmt.Sprint(loc.Line))
	}
	return strings.Join(parts, ",")
}

func printSummary(w io.Writer, results []jscompat.BatchResult, elapsed time.Duration) {
	ok, failed, withFeatures, total := 0, 0, 0, 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			continue
		}
		ok++
		if len(r.Report.Features) > 0 {
			withFeatures++
		}
		for _, row := range r.Report.Features {
			total += row.Count
		}
	}
	fmt.Fprintf(w, "analyzed %d input(s) in %s: %d with tracked features, %d feature use(s)",
		ok, elapsed.Round(time.Millisecond), withFeatures, total)
	if failed > 0 {
		fmt.Fprintf(w, ", %d failed", failed)
	}
	fmt.Fprintln(w)
}

// Package report renders the outcome of a validation run into a
// human-readable text document and returns the structured summary for
// programmatic gating (CI reads the counts, humans read the file).
//
// Rendering is deterministic: tables, types and row keys are emitted in sort
// order so two runs over the same data produce byte-identical reports.
package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"semcheck/internal/ledger"
)

// Trace is one normalization diagnostic: a column whose canonical form
// differs from its raw value. Traces are informational; they never affect
// checksum computation.
type Trace struct {
	Table      string
	RowKey     string
	Column     int
	Declared   string
	Raw        string
	Normalized string
	Canonical  string
}

// Accumulator gathers classification tallies and normalization traces during
// a run. The caller owns its lifetime and flushes it into the report at the
// end; it is safe for concurrent use by per-table workers.
type Accumulator struct {
	mu     sync.Mutex
	tally  map[string]map[string]int // table -> declared type -> count
	traces []Trace
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{tally: map[string]map[string]int{}}
}

// CountType records one occurrence of a complex declared type in a table.
func (a *Accumulator) CountType(table, declared string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	m, ok := a.tally[table]
	if !ok {
		m = map[string]int{}
		a.tally[table] = m
	}
	m[declared]++
}

// AddTrace appends one normalization trace.
func (a *Accumulator) AddTrace(t Trace) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.traces = append(a.traces, t)
}

// Summary aggregates the run across tables.
type Summary struct {
	Tables      int
	RowsChecked int
	Mismatches  int
	Errors      int
	SuccessRate float64
	Passed      bool
}

// Write renders the full report: header, complex-type tally, per-table
// results with errors, traces and per-row checksum pairs, then the overall
// summary with a pass/fail banner. The structured Summary is returned for
// programmatic consumption.
func Write(w io.Writer, results []ledger.Result, doc ledger.Document, acc *Accumulator) (Summary, error) {
	var sum Summary
	sum.Tables = len(results)

	line := func(format string, args ...any) error {
		_, err := fmt.Fprintf(w, format+"\n", args...)
		return err
	}

	if err := line("MIGRATION CHECKSUM VALIDATION REPORT"); err != nil {
		return sum, err
	}
	if err := line("%s", strings.Repeat("=", 60)); err != nil {
		return sum, err
	}

	// Complex type occurrence tally.
	if err := line("\nComplex type occurrences:"); err != nil {
		return sum, err
	}
	acc.mu.Lock()
	tables := make([]string, 0, len(acc.tally))
	for t := range acc.tally {
		tables = append(tables, t)
	}
	sort.Strings(tables)
	for _, t := range tables {
		types := make([]string, 0, len(acc.tally[t]))
		for d := range acc.tally[t] {
			types = append(types, d)
		}
		sort.Strings(types)
		for _, d := range types {
			if err := line("  %-30s %-30s %d", t, d, acc.tally[t][d]); err != nil {
				acc.mu.Unlock()
				return sum, err
			}
		}
	}
	traces := make([]Trace, len(acc.traces))
	copy(traces, acc.traces)
	acc.mu.Unlock()

	sort.Slice(traces, func(i, j int) bool {
		a, b := traces[i], traces[j]
		if a.Table != b.Table {
			return a.Table < b.Table
		}
		if a.RowKey != b.RowKey {
			return a.RowKey < b.RowKey
		}
		return a.Column < b.Column
	})

	// Per-table results.
	sorted := make([]ledger.Result, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Table < sorted[j].Table })

	rowErrors := 0
	for _, res := range sorted {
		sum.RowsChecked += res.RowsChecked
		sum.Mismatches += res.Mismatches
		sum.Errors += len(res.Errors)
		rowErrors += res.RowErrors

		if err := line("\nTable %s: rows_checked=%d mismatches=%d errors=%d",
			res.Table, res.RowsChecked, res.Mismatches, len(res.Errors)); err != nil {
			return sum, err
		}
		for _, e := range res.Errors {
			if err := line("  ERROR %s", e); err != nil {
				return sum, err
			}
		}
		for _, tr := range traces {
			if tr.Table != res.Table {
				continue
			}
			if err := line("  TRACE row=%s col=%d type=%s raw=%q normalized=%q canonical=%q",
				tr.RowKey, tr.Column, tr.Declared, tr.Raw, tr.Normalized, tr.Canonical); err != nil {
				return sum, err
			}
		}
		if entries, ok := doc[res.Table]; ok {
			keys := make([]string, 0, len(entries))
			for k := range entries {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				e := entries[k]
				marker := "MATCH"
				switch {
				case e.Export == "" || e.Import == "":
					marker = "MISSING"
				case e.Export != e.Import:
					marker = "MISMATCH"
				}
				if err := line("  ROW %-20s export=%s import=%s [%s]",
					k, orDash(e.Export), orDash(e.Import), marker); err != nil {
					return sum, err
				}
			}
		}
	}

	// Overall summary. The success rate is a row-level measure: table-level
	// errors fail the run but do not skew the rate of the rows that were
	// actually checked.
	matched := sum.RowsChecked - rowErrors
	if matched < 0 {
		matched = 0
	}
	if sum.RowsChecked > 0 {
		sum.SuccessRate = float64(matched) / float64(sum.RowsChecked) * 100
	}
	sum.Passed = sum.Errors == 0 && sum.Mismatches == 0

	banner := "FAILED"
	if sum.Passed {
		banner = "PASSED"
	}
	if err := line("\n%s", strings.Repeat("=", 60)); err != nil {
		return sum, err
	}
	if err := line("Summary: tables=%d rows_checked=%d mismatches=%d errors=%d success_rate=%.2f%%",
		sum.Tables, sum.RowsChecked, sum.Mismatches, sum.Errors, sum.SuccessRate); err != nil {
		return sum, err
	}
	if err := line("VALIDATION %s", banner); err != nil {
		return sum, err
	}
	return sum, nil
}

// WriteFile renders the report to path. Failure to create or write the file
// is fatal for the run: a partial report is worse than none.
func WriteFile(path string, results []ledger.Result, doc ledger.Document, acc *Accumulator) (Summary, error) {
	f, err := os.Create(path)
	if err != nil {
		return Summary{}, fmt.Errorf("report: create %s: %w", path, err)
	}
	sum, werr := Write(f, results, doc, acc)
	if cerr := f.Close(); werr == nil && cerr != nil {
		werr = fmt.Errorf("report: close %s: %w", path, cerr)
	}
	return sum, werr
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

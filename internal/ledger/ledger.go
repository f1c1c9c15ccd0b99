// Package ledger keeps the export- and import-phase checksums for every row
// observed during a migration validation run and compares the two phases.
//
// The in-memory ledger is safe for concurrent writers as long as no two
// goroutines write the same (table, row key, phase) triple, which holds when
// each row key is unique within a phase. Persistence is pluggable: a
// pretty-printed JSON document on disk or a SQLite database.
package ledger

import (
	"fmt"
	"sort"
	"sync"
)

// Phase marks which side of the migration a checksum was observed on.
type Phase string

const (
	Export Phase = "export"
	Import Phase = "import"
)

// Entry holds the pair of digests for one row key.
type Entry struct {
	Export string `json:"export,omitempty"`
	Import string `json:"import,omitempty"`
}

// Document is the serializable ledger shape: table -> row key -> digests.
type Document map[string]map[string]Entry

// Result is the outcome of comparing one table's phases.
type Result struct {
	Table       string
	RowsChecked int
	Mismatches  int
	// RowErrors counts the checked rows that failed: digest mismatches plus
	// missing counterparts. Table-level problems (no checksums recorded at
	// all) appear in Errors but not here.
	RowErrors int
	// Errors lists the problems in row-key sort order: missing counterparts,
	// digest mismatches, and table-level failures.
	Errors []string
}

// Ledger is the in-memory checksum store.
type Ledger struct {
	mu     sync.Mutex
	tables map[string]map[string]*Entry
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{tables: map[string]map[string]*Entry{}}
}

// Store inserts or overwrites the digest for (table, rowKey, phase). The last
// write for a given triple wins.
func (l *Ledger) Store(table, rowKey, digest string, phase Phase) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rows, ok := l.tables[table]
	if !ok {
		rows = map[string]*Entry{}
		l.tables[table] = rows
	}
	e, ok := rows[rowKey]
	if !ok {
		e = &Entry{}
		rows[rowKey] = e
	}
	if phase == Import {
		e.Import = digest
	} else {
		e.Export = digest
	}
}

// Tables returns the table names present in the ledger, sorted.
func (l *Ledger) Tables() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, 0, len(l.tables))
	for t := range l.tables {
		names = append(names, t)
	}
	sort.Strings(names)
	return names
}

// Compare walks every row key known to the table (the union across both
// phases, in sort order) and reports a missing export digest, a missing
// import digest, or a mismatch between the two. A table entirely absent from
// the ledger is a table-level error with zero rows checked, never a silent
// empty result.
func (l *Ledger) Compare(table string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	res := Result{Table: table}
	rows, ok := l.tables[table]
	if !ok {
		res.Errors = append(res.Errors,
			fmt.Sprintf("table %s: no checksums recorded in ledger", table))
		return res
	}

	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		e := rows[k]
		res.RowsChecked++
		switch {
		case e.Export == "":
			res.RowErrors++
			res.Errors = append(res.Errors,
				fmt.Sprintf("row %s: missing export checksum", k))
		case e.Import == "":
			res.RowErrors++
			res.Errors = append(res.Errors,
				fmt.Sprintf("row %s: missing import checksum", k))
		case e.Export != e.Import:
			res.Mismatches++
			res.RowErrors++
			res.Errors = append(res.Errors,
				fmt.Sprintf("row %s: checksum mismatch export=%s import=%s", k, e.Export, e.Import))
		}
	}
	return res
}

// Entry returns a copy of the digests stored for (table, rowKey).
func (l *Ledger) Entry(table, rowKey string) (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if rows, ok := l.tables[table]; ok {
		if e, ok := rows[rowKey]; ok {
			return *e, true
		}
	}
	return Entry{}, false
}

// Snapshot copies the ledger into a serializable Document with deterministic
// content (maps serialize with sorted keys downstream).
func (l *Ledger) Snapshot() Document {
	l.mu.Lock()
	defer l.mu.Unlock()
	doc := make(Document, len(l.tables))
	for t, rows := range l.tables {
		out := make(map[string]Entry, len(rows))
		for k, e := range rows {
			out[k] = *e
		}
		doc[t] = out
	}
	return doc
}

// Restore replaces the ledger content with doc.
func (l *Ledger) Restore(doc Document) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tables = make(map[string]map[string]*Entry, len(doc))
	for t, rows := range doc {
		in := make(map[string]*Entry, len(rows))
		for k, e := range rows {
			cp := e
			in[k] = &cp
		}
		l.tables[t] = in
	}
}

// Package runner wires the validation pipeline together: classification,
// native-value conversion, normalization, serialization, hashing, the
// checksum ledger and the final report.
//
// Per row the pipeline is pure, synchronous computation; the only blocking
// operation is the live re-query of the target system, which sits behind the
// source.Source interface so the whole engine runs in tests on precomputed
// rows.
package runner

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"semcheck/internal/checksum"
	"semcheck/internal/config"
	"semcheck/internal/ledger"
	"semcheck/internal/metrics"
	"semcheck/internal/report"
	"semcheck/internal/sample"
	"semcheck/internal/source"
	"semcheck/internal/typeclass"
)

// importWorkers caps concurrent per-table fetches against the target.
const importWorkers = 4

// Runner executes a validation run. Construct with New, optionally feed
// export-side rows through RecordExport (or start from a persisted ledger),
// then call Run.
type Runner struct {
	cfg     config.Run
	hasher  checksum.Hasher
	sampler sample.Strategy

	// Ledger and Acc are owned by the Runner but exported for callers that
	// embed the engine into a larger migration tool.
	Ledger *ledger.Ledger
	Acc    *report.Accumulator

	// OpenSource opens the live target connection. Tests replace it with a
	// stub that serves precomputed TableData.
	OpenSource func(ctx context.Context) (source.Source, error)
}

// New builds a Runner from a validated config.
func New(cfg config.Run) (*Runner, error) {
	h, err := checksum.NewHasher(cfg.Hash)
	if err != nil {
		return nil, err
	}
	return &Runner{
		cfg:     cfg,
		hasher:  h,
		sampler: sample.ForConfig(cfg.Sampling.Percent, cfg.Sampling.Count, cfg.Sampling.Seed),
		Ledger:  ledger.New(),
		Acc:     report.NewAccumulator(),
		OpenSource: func(ctx context.Context) (source.Source, error) {
			return source.New(ctx, source.Config{Kind: cfg.Target.Kind, DSN: cfg.Target.DSN})
		},
	}, nil
}

// RecordExport checksums export-side rows for one table and stores them under
// the export phase. The sampling strategy decides which rows participate.
func (r *Runner) RecordExport(table config.Table, data *source.TableData) {
	r.checksumRows(table, data, ledger.Export, r.sampler.Pick(len(data.Rows)))
}

// RecordImport checksums freshly queried import-side rows. When sampling is
// partial, only rows whose key already carries an export digest are hashed,
// so both phases cover the same sample.
func (r *Runner) RecordImport(table config.Table, data *source.TableData) {
	_, full := r.sampler.(sample.All)
	idx := make([]int, 0, len(data.Rows))
	for i := range data.Rows {
		if full {
			idx = append(idx, i)
			continue
		}
		key := r.rowKey(data, i)
		if e, ok := r.Ledger.Entry(table.Name, key); ok && e.Export != "" {
			idx = append(idx, i)
		}
	}
	r.checksumRows(table, data, ledger.Import, idx)
}

// checksumRows runs the column pipeline for the selected rows and stores the
// digests. Normalization traces are kept for every altered value, matching or
// not, because silently-normalized passes are what need debugging later.
func (r *Runner) checksumRows(table config.Table, data *source.TableData, phase ledger.Phase, idx []int) {
	declared := table.SourceTypesFor(data.Columns)

	for _, i := range idx {
		row := data.Rows[i]
		key := r.rowKey(data, i)
		digest, traces := checksum.RowTrace(row, declared, r.hasher)
		r.Ledger.Store(table.Name, key, digest, phase)

		if phase != ledger.Export {
			continue
		}
		// Tally and traces are recorded once, on the export pass.
		for col, tr := range traces {
			if declared[col] != "" && typeclass.IsComplex(declared[col]) {
				r.Acc.CountType(table.Name, declared[col])
			}
			if tr.Changed {
				r.Acc.AddTrace(report.Trace{
					Table:      table.Name,
					RowKey:     key,
					Column:     col,
					Declared:   describeColumn(table, data, col),
					Raw:        tr.Raw,
					Normalized: tr.Normalized,
					Canonical:  tr.Canonical,
				})
			}
		}
	}
}

// rowKey derives the stable per-row identifier: primary-key values in
// declared key order joined with "|", else the first column's value, else the
// ordinal position.
func (r *Runner) rowKey(data *source.TableData, rowIdx int) string {
	row := data.Rows[rowIdx]

	if len(data.KeyColumns) > 0 {
		pos := map[string]int{}
		for i, c := range data.Columns {
			pos[c] = i
		}
		key := ""
		ok := true
		for i, kc := range data.KeyColumns {
			ci, found := pos[kc]
			if !found || ci >= len(row) {
				ok = false
				break
			}
			if i > 0 {
				key += "|"
			}
			key += checksum.Canonical(row[ci], "")
		}
		if ok && key != "" {
			return key
		}
	}

	if len(row) > 0 {
		if v := checksum.Canonical(row[0], ""); v != "" && v != "NULL" {
			return v
		}
	}
	return "row-" + strconv.Itoa(rowIdx)
}

// Run executes the import phase against the live target, compares both
// phases, writes the report and persists the ledger. Table-level problems
// accumulate into the report; only I/O failures (ledger or report file) abort
// the run.
func (r *Runner) Run(ctx context.Context) (report.Summary, error) {
	store, err := ledger.NewStore(r.cfg.Ledger.Kind, r.cfg.Ledger.Path)
	if err != nil {
		return report.Summary{}, err
	}
	defer store.Close()

	// Prior export digests (recorded by the exporting pipeline) seed the
	// ledger; anything recorded through RecordExport in-process merges in.
	doc, err := store.Load(ctx)
	if err != nil {
		return report.Summary{}, err
	}
	r.mergeDocument(doc)

	start := time.Now()
	err = r.fetchImports(ctx)
	metrics.RecordStep(r.cfg.Job, "import_fetch", err, time.Since(start))
	if err != nil {
		// Source-level failure (cannot even connect): every table will
		// surface missing-import errors; the run still reports.
		log.Printf("runner: import fetch: %v", err)
	}

	results := make([]ledger.Result, 0, len(r.cfg.Tables))
	for _, t := range r.cfg.Tables {
		res := r.Ledger.Compare(t.Name)
		metrics.RecordRows(t.Name, "checked", int64(res.RowsChecked))
		metrics.RecordRows(t.Name, "mismatched", int64(res.Mismatches))
		results = append(results, res)
	}

	snapshot := r.Ledger.Snapshot()
	if err := store.Save(ctx, snapshot); err != nil {
		return report.Summary{}, err
	}

	reportStart := time.Now()
	sum, err := report.WriteFile(r.cfg.ReportPath, results, snapshot, r.Acc)
	metrics.RecordStep(r.cfg.Job, "report", err, time.Since(reportStart))
	if err != nil {
		return sum, err
	}
	log.Printf("runner: job=%s tables=%d rows_checked=%d mismatches=%d errors=%d passed=%t",
		r.cfg.Job, sum.Tables, sum.RowsChecked, sum.Mismatches, sum.Errors, sum.Passed)
	return sum, nil
}

// fetchImports queries every configured table from the live target and
// records import-phase checksums. Per-table failures are logged and skipped;
// the resulting missing-import errors surface in the comparison instead of
// aborting the run.
func (r *Runner) fetchImports(ctx context.Context) error {
	src, err := r.OpenSource(ctx)
	if err != nil {
		return fmt.Errorf("open target source: %w", err)
	}
	defer src.Close()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(importWorkers)

	for _, t := range r.cfg.Tables {
		t := t
		g.Go(func() error {
			start := time.Now()
			data, err := src.FetchTable(ctx, r.cfg.Target.Schema, t.Name)
			if err != nil {
				log.Printf("runner: fetch %s.%s: %v", r.cfg.Target.Schema, t.Name, err)
				return nil
			}
			r.RecordImport(t, data)
			log.Printf("runner: table=%s imported_rows=%d elapsed=%s",
				t.Name, len(data.Rows), time.Since(start).Truncate(time.Millisecond))
			return nil
		})
	}
	return g.Wait()
}

// mergeDocument folds a persisted document into the live ledger without
// clobbering digests already recorded in-process.
func (r *Runner) mergeDocument(doc ledger.Document) {
	for table, rows := range doc {
		for key, e := range rows {
			cur, _ := r.Ledger.Entry(table, key)
			if e.Export != "" && cur.Export == "" {
				r.Ledger.Store(table, key, e.Export, ledger.Export)
			}
			if e.Import != "" && cur.Import == "" {
				r.Ledger.Store(table, key, e.Import, ledger.Import)
			}
		}
	}
}

// describeColumn renders a human-readable column description for traces,
// including the target-side mapped type when the collaborator provided one.
func describeColumn(table config.Table, data *source.TableData, col int) string {
	if col >= len(data.Columns) {
		return ""
	}
	name := data.Columns[col]
	declared := table.SourceTypes[name]
	if mapped, ok := table.MappedTypes[name]; ok && mapped != "" {
		return fmt.Sprintf("%s (%s -> %s)", name, declared, mapped)
	}
	if declared == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, declared)
}

// Package config defines the canonical, JSON-serializable configuration model
// for a validation run. It is intentionally small, explicit, and dependency-
// free so that run definitions can be loaded from disk and passed through the
// program without additional glue code.
//
// Example (trimmed):
//
//	{
//	  "job": "hr_migration",
//	  "enabled": true,
//	  "hash": "sha256",
//	  "report_path": "out/validation_report.txt",
//	  "ledger": { "kind": "file", "path": "out/checksums.json" },
//	  "target": { "kind": "postgres", "dsn": "postgresql://...", "schema": "public" },
//	  "sampling": { "percent": 100 },
//	  "tables": [
//	    { "name": "employees",
//	      "source_types": { "address": "ADDRESS_TYPE", "tags": "TAGS_ARRAY" } }
//	  ]
//	}
package config

// Run describes one full validation run. It is the top-level object decoded
// from a run file.
type Run struct {
	// Job names the run for metrics labeling and report headers.
	Job string `json:"job"`

	// Enabled gates the whole validation pass; migrations can carry the
	// config permanently and flip this on per environment.
	Enabled bool `json:"enabled"`

	// Hash selects the digest algorithm: "sha256" (default), "sha512" or
	// "xxh3".
	Hash string `json:"hash"`

	// ReportPath is where the plain-text validation report is written.
	ReportPath string `json:"report_path"`

	Ledger   Ledger   `json:"ledger"`
	Target   Target   `json:"target"`
	Sampling Sampling `json:"sampling"`

	// Tables lists the tables to validate, with their source-side declared
	// column types (supplied by the schema-introspection collaborator).
	Tables []Table `json:"tables"`
}

// Ledger configures checksum persistence.
type Ledger struct {
	// Kind selects the persistence backend: "file" (default) or "sqlite".
	Kind string `json:"kind"`

	// Path is the document path for "file" or the DSN for "sqlite".
	Path string `json:"path"`
}

// Target identifies the live import-side database to re-checksum from.
type Target struct {
	// Kind selects the query source backend: "postgres", "mysql", "mssql".
	Kind string `json:"kind"`

	// DSN is the backend connection string.
	DSN string `json:"dsn"`

	// Schema is the target schema the migrated tables live in.
	Schema string `json:"schema"`
}

// Sampling governs which rows are checksummed when full validation is too
// costly. A positive Count wins over Percent; leaving both unset samples
// every row.
type Sampling struct {
	// Percent keeps roughly this percentage of rows (0 or 100 = all).
	Percent float64 `json:"percent"`

	// Count keeps at most this many rows at a fixed interval.
	Count int `json:"count"`

	// Seed makes percentage sampling reproducible across runs.
	Seed int64 `json:"seed"`
}

// Table describes one table under validation.
type Table struct {
	// Name is the bare table name; the target schema comes from Target.
	Name string `json:"name"`

	// SourceTypes maps column name to the declared source-side type used
	// for complex-type classification. Columns absent from the map are
	// treated as simple scalars.
	SourceTypes map[string]string `json:"source_types"`

	// MappedTypes optionally maps column name to the target-side type, used
	// only for human-readable descriptions in traces.
	MappedTypes map[string]string `json:"mapped_types,omitempty"`
}

// SourceTypesFor returns the declared source types aligned to columns order;
// columns without an entry get the empty string (classified simple).
func (t Table) SourceTypesFor(columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = t.SourceTypes[c]
	}
	return out
}

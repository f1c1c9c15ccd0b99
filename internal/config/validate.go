// This file adds a lightweight linter/validator for Run values. It performs
// static checks over a decoded Run and returns a list of issues (errors and
// warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Run.
//
// Path is a dotted path into the config (e.g. "target.kind", "tables[1].name").
// Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// ValidateRun performs static validation / linting of a Run. It does not
// mutate the config; callers decide whether warnings are fatal.
func ValidateRun(r Run) []Issue {
	var issues []Issue

	if strings.TrimSpace(r.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}

	switch strings.ToLower(strings.TrimSpace(r.Hash)) {
	case "", "sha256", "sha512", "xxh3":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "hash",
			Message:  fmt.Sprintf("unknown hash algorithm %q; use sha256, sha512 or xxh3", r.Hash),
		})
	}

	if strings.TrimSpace(r.ReportPath) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "report_path",
			Message:  "report_path must not be empty",
		})
	}

	issues = append(issues, validateLedger(r.Ledger)...)
	issues = append(issues, validateTarget(r.Target)...)
	issues = append(issues, validateSampling(r.Sampling)...)
	issues = append(issues, validateTables(r.Tables)...)

	return issues
}

func validateLedger(l Ledger) []Issue {
	var issues []Issue

	known := map[string]struct{}{"": {}, "file": {}, "sqlite": {}}
	if _, ok := known[strings.ToLower(l.Kind)]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "ledger.kind",
			Message:  fmt.Sprintf("unknown ledger kind %q; use file or sqlite", l.Kind),
		})
	}
	if strings.TrimSpace(l.Path) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "ledger.path",
			Message:  "ledger.path must not be empty",
		})
	}
	return issues
}

func validateTarget(t Target) []Issue {
	var issues []Issue

	if strings.TrimSpace(t.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "target.kind",
			Message:  "target.kind must not be empty",
		})
		return issues
	}

	// Known target kinds. Unknown kinds are warnings (forward compatibility:
	// a backend may be registered by an out-of-tree wiring package).
	known := map[string]struct{}{
		"postgres": {},
		"mysql":    {},
		"mssql":    {},
	}
	if _, ok := known[t.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "target.kind",
			Message:  fmt.Sprintf("unknown target kind %q; ensure a matching backend is registered", t.Kind),
		})
	}

	if strings.TrimSpace(t.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "target.dsn",
			Message:  "target.dsn must not be empty",
		})
	}
	if strings.TrimSpace(t.Schema) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "target.schema",
			Message:  "target.schema must not be empty",
		})
	}
	return issues
}

func validateSampling(s Sampling) []Issue {
	var issues []Issue

	if s.Percent < 0 || s.Percent > 100 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "sampling.percent",
			Message:  fmt.Sprintf("percent=%v; must be within [0,100]", s.Percent),
		})
	}
	if s.Count < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "sampling.count",
			Message:  "count must not be negative",
		})
	}
	if s.Count > 0 && s.Percent > 0 && s.Percent < 100 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "sampling",
			Message:  "both count and percent are set; count takes precedence",
		})
	}
	return issues
}

func validateTables(tables []Table) []Issue {
	var issues []Issue

	if len(tables) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "tables",
			Message:  "at least one table is required",
		})
		return issues
	}

	seen := map[string]struct{}{}
	for i, t := range tables {
		path := fmt.Sprintf("tables[%d]", i)
		name := strings.TrimSpace(t.Name)
		if name == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".name",
				Message:  "table name must not be empty",
			})
			continue
		}
		if _, dup := seen[name]; dup {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".name",
				Message:  fmt.Sprintf("duplicate table %q", name),
			})
		}
		seen[name] = struct{}{}

		if len(t.SourceTypes) == 0 {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path + ".source_types",
				Message:  fmt.Sprintf("table %q has no declared source types; every column will be treated as a simple scalar", name),
			})
		}
	}
	return issues
}

// Package source abstracts the live connection used to re-read migrated rows
// from the target system. The core pipeline depends only on the Source
// interface, so tests run on precomputed rows with no database at all.
//
// Concrete backends register themselves at init time, mirroring the
// database/sql driver pattern: importing semcheck/internal/source/all (even
// blank) makes every built-in backend available to New.
package source

import (
	"context"
	"fmt"
	"sync"
)

// TableData is one table's worth of freshly queried target-side data.
type TableData struct {
	// Columns in select order.
	Columns []string
	// StorageTypes are the target-side column types, parallel to Columns.
	// They are informational (trace output), not used for classification.
	StorageTypes []string
	// KeyColumns are the primary-key column names in declared key order;
	// empty when the table has no primary key.
	KeyColumns []string
	// Rows holds the tuples, each parallel to Columns.
	Rows [][]any
}

// Source reads tables from a target schema. FetchTable blocks on live I/O;
// everything downstream of it is pure computation.
type Source interface {
	FetchTable(ctx context.Context, schema, table string) (*TableData, error)
	Close() error
}

// Config selects and parameterizes a backend.
type Config struct {
	Kind string // "postgres", "mysql", "mssql"
	DSN  string
}

// Factory opens a Source for a Config.
type Factory func(ctx context.Context, cfg Config) (Source, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for a backend kind. It is
// called from backend packages' init functions.
func Register(kind string, fn Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = fn
}

// New opens a Source for cfg.Kind. Backends must have been registered, which
// normally happens by importing semcheck/internal/source/all.
func New(ctx context.Context, cfg Config) (Source, error) {
	mu.RLock()
	fn, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("source: no backend registered for kind %q", cfg.Kind)
	}
	return fn(ctx, cfg)
}

package ledger

import (
	"context"
	"fmt"
	"strings"
)

// Store persists a ledger Document. Implementations must round-trip: a Load
// immediately after a Save reproduces an equivalent document.
type Store interface {
	Load(ctx context.Context) (Document, error)
	Save(ctx context.Context, doc Document) error
	Close() error
}

// NewStore opens a persistence backend by kind. "file" (default) writes a
// pretty-printed JSON document at path; "sqlite" keeps the ledger in a SQLite
// database whose DSN is path.
func NewStore(kind, path string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "file":
		return NewFileStore(path), nil
	case "sqlite":
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("ledger: unknown store kind %q", kind)
	}
}

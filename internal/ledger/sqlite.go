package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// SQLite driver; replace with your preferred driver if desired.
	_ "modernc.org/sqlite" // alternative: github.com/mattn/go-sqlite3
)

// SQLiteStore persists the ledger in a single SQLite table. Useful when the
// ledger grows past what a flat JSON file handles comfortably or when several
// runs share one artifact.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `CREATE TABLE IF NOT EXISTS checksums (
	table_name TEXT NOT NULL,
	row_key    TEXT NOT NULL,
	export     TEXT NOT NULL DEFAULT '',
	import     TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (table_name, row_key)
)`

// NewSQLiteStore opens (creating if needed) the ledger database at dsn, e.g.
// "file:ledger.db?cache=shared" or a plain path.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("ledger: sqlite DSN must not be empty")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("ledger: sqlite open: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ledger: sqlite ping: %w", err)
	}
	if _, err := db.ExecContext(pingCtx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ledger: sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Load reads every checksum row into a Document.
func (s *SQLiteStore) Load(ctx context.Context) (Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT table_name, row_key, export, import FROM checksums`)
	if err != nil {
		return nil, fmt.Errorf("ledger: sqlite select: %w", err)
	}
	defer rows.Close()

	doc := Document{}
	for rows.Next() {
		var table, key, exp, imp string
		if err := rows.Scan(&table, &key, &exp, &imp); err != nil {
			return nil, fmt.Errorf("ledger: sqlite scan: %w", err)
		}
		m, ok := doc[table]
		if !ok {
			m = map[string]Entry{}
			doc[table] = m
		}
		m[key] = Entry{Export: exp, Import: imp}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger: sqlite rows: %w", err)
	}
	return doc, nil
}

// Save replaces the stored ledger with doc inside one transaction.
func (s *SQLiteStore) Save(ctx context.Context, doc Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ledger: sqlite begin: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM checksums`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("ledger: sqlite clear: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO checksums (table_name, row_key, export, import) VALUES (?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("ledger: sqlite prepare: %w", err)
	}
	defer stmt.Close()

	for table, entries := range doc {
		for key, e := range entries {
			if _, err := stmt.ExecContext(ctx, table, key, e.Export, e.Import); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("ledger: sqlite insert %s/%s: %w", table, key, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ledger: sqlite commit: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

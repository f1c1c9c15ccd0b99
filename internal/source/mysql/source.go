// Package mysql implements the target-side query source over database/sql
// for migrations whose target is MySQL/MariaDB.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"semcheck/internal/source"
)

func init() {
	source.Register("mysql", func(ctx context.Context, cfg source.Config) (source.Source, error) {
		return New(ctx, cfg.DSN)
	})
}

// Source queries a MySQL target.
type Source struct {
	db *sql.DB
}

// New opens and pings the target database.
func New(ctx context.Context, dsn string) (*Source, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql: open: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql: ping: %w", err)
	}
	return &Source{db: db}, nil
}

func (s *Source) Close() error { return s.db.Close() }

// FetchTable reads column metadata, primary-key order, and all rows. Values
// are scanned as nullable text; nil surfaces as a NULL row value.
func (s *Source) FetchTable(ctx context.Context, schema, table string) (*source.TableData, error) {
	data := &source.TableData{}

	cols, err := s.db.QueryContext(ctx, `
		SELECT COLUMN_NAME, DATA_TYPE
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION`, schema, table)
	if err != nil {
		return nil, fmt.Errorf("mysql: columns %s.%s: %w", schema, table, err)
	}
	for cols.Next() {
		var name, typ string
		if err := cols.Scan(&name, &typ); err != nil {
			cols.Close()
			return nil, fmt.Errorf("mysql: scan column: %w", err)
		}
		data.Columns = append(data.Columns, name)
		data.StorageTypes = append(data.StorageTypes, typ)
	}
	cols.Close()
	if err := cols.Err(); err != nil {
		return nil, fmt.Errorf("mysql: columns: %w", err)
	}
	if len(data.Columns) == 0 {
		return nil, fmt.Errorf("mysql: table %s.%s has no columns (does it exist?)", schema, table)
	}

	keys, err := s.db.QueryContext(ctx, `
		SELECT COLUMN_NAME
		FROM information_schema.KEY_COLUMN_USAGE
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ? AND CONSTRAINT_NAME = 'PRIMARY'
		ORDER BY ORDINAL_POSITION`, schema, table)
	if err != nil {
		return nil, fmt.Errorf("mysql: primary key %s.%s: %w", schema, table, err)
	}
	for keys.Next() {
		var name string
		if err := keys.Scan(&name); err != nil {
			keys.Close()
			return nil, fmt.Errorf("mysql: scan key column: %w", err)
		}
		data.KeyColumns = append(data.KeyColumns, name)
	}
	keys.Close()
	if err := keys.Err(); err != nil {
		return nil, fmt.Errorf("mysql: primary key: %w", err)
	}

	q := fmt.Sprintf("SELECT %s FROM %s.%s",
		joinIdents(data.Columns), ident(schema), ident(table))
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("mysql: select %s.%s: %w", schema, table, err)
	}
	defer rows.Close()

	for rows.Next() {
		scan := make([]sql.NullString, len(data.Columns))
		ptrs := make([]any, len(scan))
		for i := range scan {
			ptrs[i] = &scan[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("mysql: scan row: %w", err)
		}
		row := make([]any, len(scan))
		for i, v := range scan {
			if v.Valid {
				row[i] = v.String
			}
		}
		data.Rows = append(data.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mysql: rows: %w", err)
	}
	return data, nil
}

func ident(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }

func joinIdents(cols []string) string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = ident(c)
	}
	return strings.Join(out, ", ")
}

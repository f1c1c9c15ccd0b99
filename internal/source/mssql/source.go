// Package mssql implements the target-side query source over database/sql
// for migrations whose target is SQL Server.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/microsoft/go-mssqldb"

	"semcheck/internal/source"
)

func init() {
	source.Register("mssql", func(ctx context.Context, cfg source.Config) (source.Source, error) {
		return New(ctx, cfg.DSN)
	})
}

// Source queries a SQL Server target.
type Source struct {
	db *sql.DB
}

// New opens and pings the target database.
func New(ctx context.Context, dsn string) (*Source, error) {
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("mssql: open: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mssql: ping: %w", err)
	}
	return &Source{db: db}, nil
}

func (s *Source) Close() error { return s.db.Close() }

// FetchTable reads column metadata, primary-key order, and all rows as
// nullable text.
func (s *Source) FetchTable(ctx context.Context, schema, table string) (*source.TableData, error) {
	data := &source.TableData{}

	cols, err := s.db.QueryContext(ctx, `
		SELECT COLUMN_NAME, DATA_TYPE
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = @p1 AND TABLE_NAME = @p2
		ORDER BY ORDINAL_POSITION`, schema, table)
	if err != nil {
		return nil, fmt.Errorf("mssql: columns %s.%s: %w", schema, table, err)
	}
	for cols.Next() {
		var name, typ string
		if err := cols.Scan(&name, &typ); err != nil {
			cols.Close()
			return nil, fmt.Errorf("mssql: scan column: %w", err)
		}
		data.Columns = append(data.Columns, name)
		data.StorageTypes = append(data.StorageTypes, typ)
	}
	cols.Close()
	if err := cols.Err(); err != nil {
		return nil, fmt.Errorf("mssql: columns: %w", err)
	}
	if len(data.Columns) == 0 {
		return nil, fmt.Errorf("mssql: table %s.%s has no columns (does it exist?)", schema, table)
	}

	keys, err := s.db.QueryContext(ctx, `
		SELECT kcu.COLUMN_NAME
		FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
		JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
		  ON kcu.CONSTRAINT_NAME = tc.CONSTRAINT_NAME
		 AND kcu.TABLE_SCHEMA = tc.TABLE_SCHEMA
		 AND kcu.TABLE_NAME = tc.TABLE_NAME
		WHERE tc.CONSTRAINT_TYPE = 'PRIMARY KEY'
		  AND tc.TABLE_SCHEMA = @p1 AND tc.TABLE_NAME = @p2
		ORDER BY kcu.ORDINAL_POSITION`, schema, table)
	if err != nil {
		return nil, fmt.Errorf("mssql: primary key %s.%s: %w", schema, table, err)
	}
	for keys.Next() {
		var name string
		if err := keys.Scan(&name); err != nil {
			keys.Close()
			return nil, fmt.Errorf("mssql: scan key column: %w", err)
		}
		data.KeyColumns = append(data.KeyColumns, name)
	}
	keys.Close()
	if err := keys.Err(); err != nil {
		return nil, fmt.Errorf("mssql: primary key: %w", err)
	}

	q := fmt.Sprintf("SELECT %s FROM %s.%s",
		joinIdents(data.Columns), ident(schema), ident(table))
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("mssql: select %s.%s: %w", schema, table, err)
	}
	defer rows.Close()

	for rows.Next() {
		scan := make([]sql.NullString, len(data.Columns))
		ptrs := make([]any, len(scan))
		for i := range scan {
			ptrs[i] = &scan[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("mssql: scan row: %w", err)
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
		return nil, fmt.Errorf("mssql: rows: %w", err)
	}
	return data, nil
}

func ident(id string) string { return "[" + strings.ReplaceAll(id, "]", "]]") + "]" }

func joinIdents(cols []string) string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = ident(c)
	}
	return strings.Join(out, ", ")
}

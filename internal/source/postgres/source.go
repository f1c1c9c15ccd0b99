// Package postgres implements the target-side query source using pgx v5.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"semcheck/internal/source"
)

func init() {
	source.Register("postgres", func(ctx context.Context, cfg source.Config) (source.Source, error) {
		return New(ctx, cfg.DSN)
	})
}

// Source queries a Postgres target through a pgx pool.
type Source struct {
	pool *pgxpool.Pool
}

// New connects to the target database.
func New(ctx context.Context, dsn string) (*Source, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: pgxpool: %w", err)
	}
	return &Source{pool: pool}, nil
}

func (s *Source) Close() error {
	s.pool.Close()
	return nil
}

// FetchTable reads column metadata, the primary-key column order, and every
// row of schema.table. Column values come back in pgx's native Go types;
// composite and array columns surface as their text literals, which is
// exactly what the normalization pipeline expects.
func (s *Source) FetchTable(ctx context.Context, schema, table string) (*source.TableData, error) {
	data := &source.TableData{}

	cols, err := s.pool.Query(ctx, `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`, schema, table)
	if err != nil {
		return nil, fmt.Errorf("postgres: columns %s.%s: %w", schema, table, err)
	}
	for cols.Next() {
		var name, typ string
		if err := cols.Scan(&name, &typ); err != nil {
			cols.Close()
			return nil, fmt.Errorf("postgres: scan column: %w", err)
		}
		data.Columns = append(data.Columns, name)
		data.StorageTypes = append(data.StorageTypes, typ)
	}
	cols.Close()
	if err := cols.Err(); err != nil {
		return nil, fmt.Errorf("postgres: columns: %w", err)
	}
	if len(data.Columns) == 0 {
		return nil, fmt.Errorf("postgres: table %s.%s has no columns (does it exist?)", schema, table)
	}

	keys, err := s.pool.Query(ctx, `
		SELECT a.attname
		FROM pg_index i
		JOIN pg_attribute a ON a.attrelid = i.indrelid AND a.attnum = ANY(i.indkey)
		WHERE i.indrelid = ($1 || '.' || $2)::regclass AND i.indisprimary
		ORDER BY array_position(i.indkey, a.attnum)`, schema, table)
	if err != nil {
		return nil, fmt.Errorf("postgres: primary key %s.%s: %w", schema, table, err)
	}
	for keys.Next() {
		var name string
		if err := keys.Scan(&name); err != nil {
			keys.Close()
			return nil, fmt.Errorf("postgres: scan key column: %w", err)
		}
		data.KeyColumns = append(data.KeyColumns, name)
	}
	keys.Close()
	if err := keys.Err(); err != nil {
		return nil, fmt.Errorf("postgres: primary key: %w", err)
	}

	// Cast every column to text so the pipeline sees the same literal
	// grammar psql prints; pgx would otherwise decode composites into
	// driver-specific structs.
	sel := make([]string, len(data.Columns))
	for i, c := range data.Columns {
		sel[i] = pgIdent(c) + "::text"
	}
	q := fmt.Sprintf("SELECT %s FROM %s.%s",
		strings.Join(sel, ", "), pgIdent(schema), pgIdent(table))
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("postgres: select %s.%s: %w", schema, table, err)
	}
	defer rows.Close()

	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("postgres: row values: %w", err)
		}
		row := make([]any, len(vals))
		copy(row, vals)
		data.Rows = append(data.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows: %w", err)
	}
	return data, nil
}

// pgIdent safely quotes a single identifier segment for Postgres.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

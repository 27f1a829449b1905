// Package duckdb serves partition counts and schemas from a DuckDB database,
// typically a local copy of lake tables. Catalog database names map to DuckDB
// schemas.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/alexanderjulianmartinez/partwatch/internal/source"
	"github.com/alexanderjulianmartinez/partwatch/pkg/types"
)

type Source struct {
	db *sql.DB
}

// Open opens path, or an in-memory database when path is empty.
func Open(path string) (*Source, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	return New(db), nil
}

func New(db *sql.DB) *Source {
	return &Source{db: db}
}

func (s *Source) Close() error {
	return s.db.Close()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (s *Source) Count(ctx context.Context, p source.Partition) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s.%s WHERE %s = ?",
		quoteIdent(p.Database), quoteIdent(p.Table), quoteIdent(p.KeyOrDefault()))

	var count int64
	if err := s.db.QueryRowContext(ctx, query, p.Value).Scan(&count); err != nil {
		return 0, &source.QueryError{Partition: p, Err: err}
	}
	return count, nil
}

// Columns accepts the same two-part names as Count: database is either a
// schema or an attached catalog whose table lives in its main schema. When
// both match, the schema wins and only its columns are returned.
func (s *Source) Columns(ctx context.Context, database, table string) (types.ColumnSet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT table_catalog, table_schema, column_name
		FROM information_schema.columns
		WHERE table_name = ?
		  AND (table_schema = ? OR (table_catalog = ? AND table_schema = 'main'))
		ORDER BY CASE WHEN table_schema = ? THEN 0 ELSE 1 END, table_catalog, table_schema, ordinal_position
	`, table, database, database, database)
	if err != nil {
		return nil, &source.CatalogLookupError{Database: database, Table: table, Err: err}
	}
	defer rows.Close()

	cols := types.ColumnSet{}
	var first string
	for rows.Next() {
		var catalog, schema, name string
		if err := rows.Scan(&catalog, &schema, &name); err != nil {
			return nil, &source.CatalogLookupError{Database: database, Table: table, Err: err}
		}
		owner := catalog + "." + schema
		if first == "" {
			first = owner
		}
		if owner != first {
			break
		}
		cols.Add(name)
	}
	if err := rows.Err(); err != nil {
		return nil, &source.CatalogLookupError{Database: database, Table: table, Err: err}
	}
	if cols.Len() == 0 {
		return nil, &source.CatalogLookupError{Database: database, Table: table, Err: source.ErrTableNotFound}
	}
	return cols, nil
}

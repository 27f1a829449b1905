package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/alexanderjulianmartinez/partwatch/internal/source"
	"github.com/alexanderjulianmartinez/partwatch/pkg/types"
)

const defaultTimeout = 5 * time.Second

// Inspector counts partitions and reads column names from a MySQL schema.
// The catalog database name is the MySQL schema (TABLE_SCHEMA).
type Inspector struct {
	db      *sql.DB
	timeout time.Duration
}

func NewInspector(dsn string, timeout time.Duration) (*Inspector, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	i := New(db, timeout)
	ctx, cancel := context.WithTimeout(context.Background(), i.timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql ping failed: %w", err)
	}
	return i, nil
}

// New wraps an open connection.
func New(db *sql.DB, timeout time.Duration) *Inspector {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Inspector{db: db, timeout: timeout}
}

func (i *Inspector) Close() error {
	return i.db.Close()
}

func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (i *Inspector) Count(ctx context.Context, p source.Partition) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s.%s WHERE %s = ?",
		quoteIdent(p.Database), quoteIdent(p.Table), quoteIdent(p.KeyOrDefault()))

	var count int64
	if err := i.db.QueryRowContext(ctx, query, p.Value).Scan(&count); err != nil {
		return 0, &source.QueryError{Partition: p, Err: err}
	}
	return count, nil
}

func (i *Inspector) Columns(ctx context.Context, database, table string) (types.ColumnSet, error) {
	cols, err := i.fetchColumns(ctx, database, table)
	if err != nil {
		return nil, &source.CatalogLookupError{Database: database, Table: table, Err: err}
	}
	return cols, nil
}

func (i *Inspector) fetchColumns(ctx context.Context, database, table string) (types.ColumnSet, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	rows, err := i.db.QueryContext(ctx, `
		SELECT COLUMN_NAME
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION
	`, database, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := types.ColumnSet{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols.Add(name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// INFORMATION_SCHEMA returns no rows for a missing table.
	if cols.Len() == 0 {
		return nil, source.ErrTableNotFound
	}
	return cols, nil
}

package duckdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderjulianmartinez/partwatch/internal/source"
)

func setupSource(t *testing.T) *Source {
	t.Helper()

	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	stmts := []string{
		`CREATE SCHEMA y`,
		`CREATE TABLE y.x (id INTEGER, value INTEGER, name VARCHAR, anomesdia VARCHAR)`,
		`INSERT INTO y.x VALUES (1, 10, 'a', '20230601'), (2, 20, 'b', '20230601'), (3, 0, 'c', '20230602')`,
	}
	for _, stmt := range stmts {
		_, err := s.db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	return s
}

func TestSource_Count(t *testing.T) {
	s := setupSource(t)
	ctx := context.Background()

	n, err := s.Count(ctx, source.Partition{Database: "y", Table: "x", Value: "20230601"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = s.Count(ctx, source.Partition{Database: "y", Table: "x", Value: "19990101"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestSource_CountMissingTable(t *testing.T) {
	s := setupSource(t)

	_, err := s.Count(context.Background(), source.Partition{Database: "y", Table: "nope", Value: "1"})

	var qerr *source.QueryError
	assert.ErrorAs(t, err, &qerr)
}

func TestSource_Columns(t *testing.T) {
	s := setupSource(t)

	cols, err := s.Columns(context.Background(), "y", "x")

	require.NoError(t, err)
	assert.Equal(t, []string{"anomesdia", "id", "name", "value"}, cols.Sorted())
}

func TestSource_ColumnsMissingTable(t *testing.T) {
	s := setupSource(t)

	_, err := s.Columns(context.Background(), "y", "nope")

	assert.ErrorIs(t, err, source.ErrTableNotFound)
	var lerr *source.CatalogLookupError
	assert.ErrorAs(t, err, &lerr)
}

func TestSource_CatalogQualifiedTable(t *testing.T) {
	s := setupSource(t)
	ctx := context.Background()

	_, err := s.db.Exec(`CREATE TABLE main.orders (order_id INTEGER, amount INTEGER, anomesdia VARCHAR)`)
	require.NoError(t, err)
	_, err = s.db.Exec(`INSERT INTO main.orders VALUES (1, 5, '20230601')`)
	require.NoError(t, err)

	// An in-memory database is attached as catalog "memory".
	n, err := s.Count(ctx, source.Partition{Database: "memory", Table: "orders", Value: "20230601"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	cols, err := s.Columns(ctx, "memory", "orders")
	require.NoError(t, err)
	assert.Equal(t, []string{"amount", "anomesdia", "order_id"}, cols.Sorted())
}

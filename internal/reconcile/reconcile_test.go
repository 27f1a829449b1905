package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/alexanderjulianmartinez/partwatch/internal/source"
	"github.com/alexanderjulianmartinez/partwatch/pkg/types"
)

type fakeCatalog struct {
	cols types.ColumnSet
	err  error
}

func (f *fakeCatalog) Columns(_ context.Context, database, table string) (types.ColumnSet, error) {
	if f.err != nil {
		return nil, &source.CatalogLookupError{Database: database, Table: table, Err: f.err}
	}
	return f.cols, nil
}

func TestReconcile(t *testing.T) {
	extracted := types.NewColumnSet("value", "0", "id", "1", "1000")
	schema := types.NewColumnSet("id", "value", "name")

	valid := Reconcile(extracted, schema)

	assert.Equal(t, []string{"id", "value"}, valid.Sorted())
	for c := range valid {
		assert.True(t, extracted.Has(c))
		assert.True(t, schema.Has(c))
	}
}

func TestReconcile_EmptySchema(t *testing.T) {
	extracted := types.NewColumnSet("id", "value")
	assert.Equal(t, 0, Reconcile(extracted, types.ColumnSet{}).Len())
	assert.Equal(t, 0, Reconcile(extracted, nil).Len())
}

func TestLookup_Fetched(t *testing.T) {
	cat := &fakeCatalog{cols: types.NewColumnSet("id", "value")}

	got := Lookup(context.Background(), cat, "y", "x", nil)

	assert.True(t, got.OK())
	assert.Equal(t, LookupFetched, got.Status)
	assert.NoError(t, got.Err)
	assert.Equal(t, []string{"id", "value"}, got.Columns.Sorted())
}

func TestLookup_FailureIsLoggedAndDegraded(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	cat := &fakeCatalog{err: source.ErrTableNotFound}

	got := Lookup(context.Background(), cat, "y", "x", zap.New(core))

	assert.False(t, got.OK())
	assert.Equal(t, LookupFailed, got.Status)
	assert.ErrorIs(t, got.Err, source.ErrTableNotFound)
	require.NotNil(t, got.Columns)
	assert.Equal(t, 0, got.Columns.Len())

	entries := logs.FilterMessage("schema lookup failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "x", entries[0].ContextMap()["table"])
}

func TestFetched_NilColumns(t *testing.T) {
	got := Fetched(nil)
	assert.True(t, got.OK())
	assert.NotNil(t, got.Columns)
}

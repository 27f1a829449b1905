package inspect

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/alexanderjulianmartinez/partwatch/internal/reconcile"
	"github.com/alexanderjulianmartinez/partwatch/internal/rules"
	"github.com/alexanderjulianmartinez/partwatch/internal/source"
	"github.com/alexanderjulianmartinez/partwatch/pkg/types"
)

type fakeCounter struct {
	count int64
	err   error
	calls int
}

func (f *fakeCounter) Count(_ context.Context, p source.Partition) (int64, error) {
	f.calls++
	if f.err != nil {
		return 0, &source.QueryError{Partition: p, Err: f.err}
	}
	return f.count, nil
}

type fakeCatalog struct {
	cols  types.ColumnSet
	err   error
	calls int
}

func (f *fakeCatalog) Columns(_ context.Context, database, table string) (types.ColumnSet, error) {
	f.calls++
	if f.err != nil {
		return nil, &source.CatalogLookupError{Database: database, Table: table, Err: f.err}
	}
	return f.cols, nil
}

var (
	partition = source.Partition{Database: "y", Table: "x", Value: "20230601"}
	ruleSet   = &rules.RuleSet{Rules: []rules.Rule{
		{Name: "NonNullCheck", Expression: "id IS NOT NULL"},
		{Name: "RangeCheck", Expression: "value > 0 AND id BETWEEN 1 AND 1000"},
	}}
)

func TestInspect_CountOnlyBelowThreshold(t *testing.T) {
	counter := &fakeCounter{count: 50}
	catalog := &fakeCatalog{cols: types.NewColumnSet("id")}

	res, err := New(counter, catalog).Inspect(context.Background(), partition, ruleSet)

	require.NoError(t, err)
	assert.Equal(t, ModeCountOnly, res.Mode)
	assert.Equal(t, int64(50), res.RowCount)
	assert.Equal(t, DefaultThreshold, res.Threshold)
	assert.Nil(t, res.Valid)
	assert.Equal(t, 0, catalog.calls, "count-only path must not touch the catalog")
	assert.NotEmpty(t, res.RunID)
}

func TestInspect_CountOnlyWithoutRules(t *testing.T) {
	catalog := &fakeCatalog{cols: types.NewColumnSet("id")}

	res, err := New(&fakeCounter{count: 10}, catalog, WithThreshold(4)).Inspect(context.Background(), partition, nil)

	require.NoError(t, err)
	assert.Equal(t, ModeCountOnly, res.Mode)
	assert.Equal(t, 0, catalog.calls)
}

func TestInspect_Reconcile(t *testing.T) {
	catalog := &fakeCatalog{cols: types.NewColumnSet("id", "value", "name")}

	res, err := New(&fakeCounter{count: 10}, catalog, WithThreshold(4)).Inspect(context.Background(), partition, ruleSet)

	require.NoError(t, err)
	assert.Equal(t, ModeReconcile, res.Mode)
	assert.Equal(t, int64(4), res.Threshold)
	assert.Equal(t, []string{"0", "1", "1000", "id", "value"}, res.Extracted.Sorted())
	assert.Equal(t, reconcile.LookupFetched, res.Schema.Status)
	assert.Equal(t, []string{"id", "value"}, res.Valid.Sorted())
}

func TestInspect_CountFailureIsFatal(t *testing.T) {
	catalog := &fakeCatalog{}
	cause := errors.New("athena unavailable")

	res, err := New(&fakeCounter{err: cause}, catalog).Inspect(context.Background(), partition, ruleSet)

	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, cause)
	var qerr *source.QueryError
	assert.ErrorAs(t, err, &qerr)
	assert.Equal(t, 0, catalog.calls)
}

func TestInspect_SchemaFailureDegrades(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	catalog := &fakeCatalog{err: source.ErrAccessDenied}

	res, err := New(&fakeCounter{count: 10}, catalog, WithThreshold(4), WithLogger(zap.New(core))).
		Inspect(context.Background(), partition, ruleSet)

	require.NoError(t, err)
	assert.Equal(t, ModeReconcile, res.Mode)
	assert.Equal(t, reconcile.LookupFailed, res.Schema.Status)
	assert.ErrorIs(t, res.Schema.Err, source.ErrAccessDenied)
	assert.Equal(t, 0, res.Valid.Len())

	assert.Equal(t, 1, logs.FilterMessage("schema lookup failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("no valid columns: schema unavailable").Len())
	assert.Equal(t, 0, logs.FilterMessage("no rule columns matched schema").Len())
}

func TestInspect_NoMatchIsLoggedSeparately(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	catalog := &fakeCatalog{cols: types.NewColumnSet("other")}

	res, err := New(&fakeCounter{count: 10}, catalog, WithThreshold(4), WithLogger(zap.New(core))).
		Inspect(context.Background(), partition, ruleSet)

	require.NoError(t, err)
	assert.Equal(t, reconcile.LookupFetched, res.Schema.Status)
	assert.Equal(t, 0, res.Valid.Len())
	assert.Equal(t, 1, logs.FilterMessage("no rule columns matched schema").Len())
	assert.Equal(t, 0, logs.FilterMessage("schema lookup failed").Len())
}

func TestInspect_FailOnSchemaError(t *testing.T) {
	catalog := &fakeCatalog{err: source.ErrTableNotFound}

	res, err := New(&fakeCounter{count: 10}, catalog, WithThreshold(4), WithFailOnSchemaError(true)).
		Inspect(context.Background(), partition, ruleSet)

	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, source.ErrTableNotFound)
}

func TestWithThreshold_NonPositiveKeepsDefault(t *testing.T) {
	assert.Equal(t, DefaultThreshold, New(nil, nil, WithThreshold(0)).Threshold())
	assert.Equal(t, DefaultThreshold, New(nil, nil, WithThreshold(-5)).Threshold())
	assert.Equal(t, int64(7), New(nil, nil, WithThreshold(7)).Threshold())
}

func TestInspect_CountOnlyLogsTotal(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	_, err := New(&fakeCounter{count: 50}, &fakeCatalog{}, WithLogger(zap.New(core))).
		Inspect(context.Background(), partition, ruleSet)

	require.NoError(t, err)
	entries := logs.FilterMessage("total items in partition").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(50), entries[0].ContextMap()["row_count"])
	assert.Equal(t, true, entries[0].ContextMap()["rules_supplied"])
}

func TestInspect_SchemaLogFieldsNotRepeated(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	catalog := &fakeCatalog{err: source.ErrTableNotFound}

	_, err := New(&fakeCounter{count: 10}, catalog, WithThreshold(4), WithLogger(zap.New(core))).
		Inspect(context.Background(), partition, ruleSet)
	require.NoError(t, err)

	entries := logs.FilterMessage("schema lookup failed").All()
	require.Len(t, entries, 1)
	keys := map[string]int{}
	for _, f := range entries[0].Context {
		keys[f.Key]++
	}
	assert.Equal(t, 1, keys["database"])
	assert.Equal(t, 1, keys["table"])
}

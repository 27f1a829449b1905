// Package reconcile intersects rule-referenced columns with a table schema.
package reconcile

import (
	"context"

	"go.uber.org/zap"

	"github.com/alexanderjulianmartinez/partwatch/internal/source"
	"github.com/alexanderjulianmartinez/partwatch/pkg/types"
)

type LookupStatus string

const (
	LookupFetched LookupStatus = "fetched"
	LookupFailed  LookupStatus = "lookup_failed"
)

// SchemaLookup is the outcome of one schema fetch. A failed lookup has no
// columns and carries the cause, so it can be told apart from a schema that
// simply shares no columns with the rules.
type SchemaLookup struct {
	Status  LookupStatus
	Columns types.ColumnSet
	Err     error
}

func Fetched(cols types.ColumnSet) SchemaLookup {
	if cols == nil {
		cols = types.ColumnSet{}
	}
	return SchemaLookup{Status: LookupFetched, Columns: cols}
}

func Failed(err error) SchemaLookup {
	return SchemaLookup{Status: LookupFailed, Columns: types.ColumnSet{}, Err: err}
}

func (l SchemaLookup) OK() bool {
	return l.Status == LookupFetched
}

// Reconcile returns the extracted names that are real schema columns.
func Reconcile(extracted, schema types.ColumnSet) types.ColumnSet {
	return extracted.Intersect(schema)
}

// Lookup fetches the schema of database.table. Catalog failures are logged
// and folded into a Failed lookup instead of being returned.
func Lookup(ctx context.Context, catalog source.SchemaCatalog, database, table string, log *zap.Logger) SchemaLookup {
	if log == nil {
		log = zap.NewNop()
	}

	cols, err := catalog.Columns(ctx, database, table)
	if err != nil {
		log.Error("schema lookup failed",
			zap.String("database", database),
			zap.String("table", table),
			zap.Error(err))
		return Failed(err)
	}

	log.Debug("schema fetched",
		zap.String("database", database),
		zap.String("table", table),
		zap.Strings("columns", cols.Sorted()))
	return Fetched(cols)
}

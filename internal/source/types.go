package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderjulianmartinez/partwatch/pkg/types"
)

// DefaultPartitionKey is the date partition column used by the lake tables
// (year-month-day, e.g. 20230601).
const DefaultPartitionKey = "anomesdia"

var (
	ErrTableNotFound = errors.New("table not found")
	ErrAccessDenied  = errors.New("access denied")
)

// Partition identifies one partition of a catalog table.
type Partition struct {
	Database string
	Table    string
	Key      string
	Value    string
}

func (p Partition) KeyOrDefault() string {
	if p.Key == "" {
		return DefaultPartitionKey
	}
	return p.Key
}

func (p Partition) String() string {
	return fmt.Sprintf("%s.%s[%s=%s]", p.Database, p.Table, p.KeyOrDefault(), p.Value)
}

// RowCounter counts the rows of one partition. Failures are *QueryError.
type RowCounter interface {
	Count(ctx context.Context, p Partition) (int64, error)
}

// SchemaCatalog returns the declared column names of a table.
// Failures are *CatalogLookupError.
type SchemaCatalog interface {
	Columns(ctx context.Context, database, table string) (types.ColumnSet, error)
}

type QueryError struct {
	Partition Partition
	Err       error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("count query for %s failed: %v", e.Partition, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

type CatalogLookupError struct {
	Database string
	Table    string
	Err      error
}

func (e *CatalogLookupError) Error() string {
	return fmt.Sprintf("catalog lookup for %s.%s failed: %v", e.Database, e.Table, e.Err)
}

func (e *CatalogLookupError) Unwrap() error { return e.Err }

// Package glue reads table schemas from the AWS Glue Data Catalog.
package glue

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"github.com/alexanderjulianmartinez/partwatch/internal/source"
	"github.com/alexanderjulianmartinez/partwatch/pkg/types"
)

type API interface {
	GetTable(ctx context.Context, in *glue.GetTableInput, opts ...func(*glue.Options)) (*glue.GetTableOutput, error)
}

type Catalog struct {
	api       API
	catalogID string
	log       *zap.Logger
}

// NewCatalog wraps api. catalogID selects a non-default account catalog and
// may be empty.
func NewCatalog(api API, catalogID string, log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	return &Catalog{api: api, catalogID: catalogID, log: log}
}

func NewCatalogFromConfig(awsCfg aws.Config, catalogID string, log *zap.Logger) *Catalog {
	return NewCatalog(glue.NewFromConfig(awsCfg), catalogID, log)
}

// Columns returns the storage descriptor columns of database.table.
// Partition keys are not part of the storage descriptor and are not included.
func (c *Catalog) Columns(ctx context.Context, database, table string) (types.ColumnSet, error) {
	in := &glue.GetTableInput{
		DatabaseName: aws.String(database),
		Name:         aws.String(table),
	}
	if c.catalogID != "" {
		in.CatalogId = aws.String(c.catalogID)
	}

	out, err := c.api.GetTable(ctx, in)
	if err != nil {
		return nil, &source.CatalogLookupError{Database: database, Table: table, Err: classify(err)}
	}
	if out.Table == nil || out.Table.StorageDescriptor == nil {
		return nil, &source.CatalogLookupError{Database: database, Table: table, Err: errors.New("table has no storage descriptor")}
	}

	cols := types.ColumnSet{}
	for _, col := range out.Table.StorageDescriptor.Columns {
		if name := aws.ToString(col.Name); name != "" {
			cols.Add(name)
		}
	}
	c.log.Info("schema for table",
		zap.String("database", database),
		zap.String("table", table),
		zap.Strings("columns", cols.Sorted()))
	return cols, nil
}

// classify tags well-known Glue error codes with the source sentinels while
// keeping the original error in the chain.
func classify(err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.ErrorCode() {
	case "EntityNotFoundException":
		return fmt.Errorf("%w: %w", source.ErrTableNotFound, err)
	case "AccessDeniedException":
		return fmt.Errorf("%w: %w", source.ErrAccessDenied, err)
	default:
		return err
	}
}

// Package inspect decides, per partition, between a plain row count and a
// rule column reconciliation, and runs the chosen path.
package inspect

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alexanderjulianmartinez/partwatch/internal/reconcile"
	"github.com/alexanderjulianmartinez/partwatch/internal/rules"
	"github.com/alexanderjulianmartinez/partwatch/internal/source"
	"github.com/alexanderjulianmartinez/partwatch/pkg/types"
)

// Result is tagged by Mode. Extracted, Schema and Valid are only set for
// ModeReconcile.
type Result struct {
	RunID     string
	Partition source.Partition
	RowCount  int64
	Threshold int64
	Mode      Mode
	Extracted types.ColumnSet
	Schema    reconcile.SchemaLookup
	Valid     types.ColumnSet
}

type Inspector struct {
	counter           source.RowCounter
	catalog           source.SchemaCatalog
	threshold         int64
	failOnSchemaError bool
	log               *zap.Logger
}

type Option func(*Inspector)

// WithThreshold sets the row threshold. Values <= 0 keep DefaultThreshold.
func WithThreshold(n int64) Option {
	return func(i *Inspector) {
		if n > 0 {
			i.threshold = n
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(i *Inspector) {
		if log != nil {
			i.log = log
		}
	}
}

// WithFailOnSchemaError makes a failed schema lookup abort the inspection
// instead of producing an empty column set.
func WithFailOnSchemaError(fail bool) Option {
	return func(i *Inspector) {
		i.failOnSchemaError = fail
	}
}

func New(counter source.RowCounter, catalog source.SchemaCatalog, opts ...Option) *Inspector {
	i := &Inspector{
		counter:   counter,
		catalog:   catalog,
		threshold: DefaultThreshold,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Inspector) Threshold() int64 {
	return i.threshold
}

func (i *Inspector) Inspect(ctx context.Context, p source.Partition, rs *rules.RuleSet) (*Result, error) {
	log := i.log.With(
		zap.String("database", p.Database),
		zap.String("table", p.Table),
		zap.String("partition", p.Value))

	log.Info("counting partition rows")
	count, err := i.counter.Count(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("count partition: %w", err)
	}
	log.Info("partition counted", zap.Int64("row_count", count))

	res := &Result{
		RunID:     uuid.NewString(),
		Partition: p,
		RowCount:  count,
		Threshold: i.threshold,
		Mode:      Decide(count, i.threshold, rs),
	}
	if res.Mode == ModeCountOnly {
		log.Info("total items in partition", zap.Int64("row_count", count), zap.Bool("rules_supplied", rs != nil))
		return res, nil
	}

	res.Extracted = rules.ExtractColumns(rs)
	res.Schema = reconcile.Lookup(ctx, i.catalog, p.Database, p.Table, i.log)
	if !res.Schema.OK() && i.failOnSchemaError {
		return nil, fmt.Errorf("schema lookup: %w", res.Schema.Err)
	}
	res.Valid = reconcile.Reconcile(res.Extracted, res.Schema.Columns)

	switch {
	case !res.Schema.OK():
		log.Warn("no valid columns: schema unavailable", zap.Error(res.Schema.Err))
	case res.Valid.Len() == 0:
		log.Warn("no rule columns matched schema", zap.Strings("extracted", res.Extracted.Sorted()))
	default:
		log.Info("valid rule columns", zap.Strings("columns", res.Valid.Sorted()))
	}
	return res, nil
}

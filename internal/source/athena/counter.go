// Package athena counts partition rows with an Athena COUNT query.
package athena

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	athenatypes "github.com/aws/aws-sdk-go-v2/service/athena/types"
	"go.uber.org/zap"

	"github.com/alexanderjulianmartinez/partwatch/internal/source"
)

const defaultPollInterval = time.Second

var (
	ErrQueryFailed   = errors.New("athena query did not succeed")
	ErrUnexpectedRow = errors.New("unexpected athena result shape")
)

// API is the subset of the Athena client used here.
type API interface {
	StartQueryExecution(ctx context.Context, in *athena.StartQueryExecutionInput, opts ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error)
	GetQueryExecution(ctx context.Context, in *athena.GetQueryExecutionInput, opts ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error)
	GetQueryResults(ctx context.Context, in *athena.GetQueryResultsInput, opts ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error)
}

type Config struct {
	WorkGroup      string
	OutputLocation string
	PollInterval   time.Duration
}

type Counter struct {
	api API
	cfg Config
	log *zap.Logger
}

func NewCounter(api API, cfg Config, log *zap.Logger) *Counter {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Counter{api: api, cfg: cfg, log: log}
}

// NewCounterFromConfig builds a Counter on a real Athena client.
func NewCounterFromConfig(awsCfg aws.Config, cfg Config, log *zap.Logger) *Counter {
	return NewCounter(athena.NewFromConfig(awsCfg), cfg, log)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// literal renders a partition value as an execution parameter. Date keys
// such as 20230601 stay numeric, anything else becomes a string literal.
func literal(v string) string {
	if v != "" && strings.Trim(v, "0123456789") == "" {
		return v
	}
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

func countQuery(p source.Partition) string {
	return fmt.Sprintf("SELECT COUNT(1) AS count FROM %s.%s WHERE %s = ?",
		quoteIdent(p.Database), quoteIdent(p.Table), quoteIdent(p.KeyOrDefault()))
}

func (c *Counter) Count(ctx context.Context, p source.Partition) (int64, error) {
	n, err := c.count(ctx, p)
	if err != nil {
		return 0, &source.QueryError{Partition: p, Err: err}
	}
	return n, nil
}

func (c *Counter) count(ctx context.Context, p source.Partition) (int64, error) {
	in := &athena.StartQueryExecutionInput{
		QueryString:           aws.String(countQuery(p)),
		QueryExecutionContext: &athenatypes.QueryExecutionContext{Database: aws.String(p.Database)},
		ExecutionParameters:   []string{literal(p.Value)},
	}
	if c.cfg.WorkGroup != "" {
		in.WorkGroup = aws.String(c.cfg.WorkGroup)
	}
	if c.cfg.OutputLocation != "" {
		in.ResultConfiguration = &athenatypes.ResultConfiguration{OutputLocation: aws.String(c.cfg.OutputLocation)}
	}

	c.log.Info("executing query to count items in partition", zap.Stringer("partition", p))
	started, err := c.api.StartQueryExecution(ctx, in)
	if err != nil {
		return 0, fmt.Errorf("start query: %w", err)
	}
	id := aws.ToString(started.QueryExecutionId)

	if err := c.wait(ctx, id); err != nil {
		return 0, err
	}

	out, err := c.api.GetQueryResults(ctx, &athena.GetQueryResultsInput{
		QueryExecutionId: aws.String(id),
		MaxResults:       aws.Int32(2),
	})
	if err != nil {
		return 0, fmt.Errorf("get query results: %w", err)
	}
	n, err := parseCount(out)
	if err != nil {
		return 0, err
	}
	c.log.Info("count result for partition", zap.Stringer("partition", p), zap.Int64("row_count", n))
	return n, nil
}

func (c *Counter) wait(ctx context.Context, id string) error {
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		out, err := c.api.GetQueryExecution(ctx, &athena.GetQueryExecutionInput{QueryExecutionId: aws.String(id)})
		if err != nil {
			return fmt.Errorf("get query execution %s: %w", id, err)
		}
		if out.QueryExecution == nil || out.QueryExecution.Status == nil {
			return fmt.Errorf("query execution %s: missing status: %w", id, ErrUnexpectedRow)
		}

		status := out.QueryExecution.Status
		switch status.State {
		case athenatypes.QueryExecutionStateSucceeded:
			return nil
		case athenatypes.QueryExecutionStateFailed, athenatypes.QueryExecutionStateCancelled:
			return fmt.Errorf("query execution %s %s: %s: %w",
				id, strings.ToLower(string(status.State)), aws.ToString(status.StateChangeReason), ErrQueryFailed)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// parseCount reads the single value row that follows the header row.
func parseCount(out *athena.GetQueryResultsOutput) (int64, error) {
	if out.ResultSet == nil || len(out.ResultSet.Rows) < 2 {
		return 0, ErrUnexpectedRow
	}
	row := out.ResultSet.Rows[1]
	if len(row.Data) == 0 || row.Data[0].VarCharValue == nil {
		return 0, ErrUnexpectedRow
	}
	n, err := strconv.ParseInt(aws.ToString(row.Data[0].VarCharValue), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return n, nil
}

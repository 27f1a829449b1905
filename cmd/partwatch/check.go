package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alexanderjulianmartinez/partwatch/internal/config"
	"github.com/alexanderjulianmartinez/partwatch/internal/inspect"
	"github.com/alexanderjulianmartinez/partwatch/internal/logging"
	"github.com/alexanderjulianmartinez/partwatch/internal/report"
	"github.com/alexanderjulianmartinez/partwatch/internal/rules"
	"github.com/alexanderjulianmartinez/partwatch/internal/sink/kafka"
	"github.com/alexanderjulianmartinez/partwatch/internal/source"
	"github.com/alexanderjulianmartinez/partwatch/pkg/types"
)

// sourceOpener is replaced in tests.
var sourceOpener = openSources

type checkOptions struct {
	configPath string
	partition  string
	table      string
	rulesPath  string
	threshold  int64
}

func newCheckCmd() *cobra.Command {
	var opts checkOptions

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Inspect a partition of every configured table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", "", "path to config.yaml")
	cmd.Flags().StringVar(&opts.partition, "partition", "", "partition value to inspect, e.g. 20230601")
	cmd.Flags().StringVar(&opts.table, "table", "", "only check this table (database.table)")
	cmd.Flags().StringVar(&opts.rulesPath, "rules", "", "rule document overriding the configured one")
	cmd.Flags().Int64Var(&opts.threshold, "threshold", 0, "override check.threshold; partitions at or below it are only counted")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("partition")
	return cmd
}

func runCheck(cmd *cobra.Command, opts checkOptions) error {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.threshold > 0 {
		cfg.Check.Threshold = opts.threshold
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	tables, err := selectTables(cfg.Tables, opts.table)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	src, err := sourceOpener(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = src.close() }()

	var pub *kafka.Publisher
	if cfg.Sink.Kafka.Enabled() {
		pub, err = kafka.NewPublisher(cfg.Sink.Kafka.Brokers, cfg.Sink.Kafka.Topic, log)
		if err != nil {
			return err
		}
		defer func() { _ = pub.Close() }()
	}

	insp := inspect.New(src.counter, src.catalog,
		inspect.WithThreshold(cfg.Check.Threshold),
		inspect.WithLogger(log),
		inspect.WithFailOnSchemaError(cfg.Check.FailOnSchemaError))

	results := make([]types.CheckResult, 0, len(tables))
	for _, t := range tables {
		res, err := checkTable(ctx, insp, cfg, t, opts, log)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", t.Database, t.Name, err)
		}
		if pub != nil {
			if err := pub.Publish(ctx, res); err != nil {
				return err
			}
		}
		results = append(results, res)
	}

	if getOutputFormat(cmd) == "json" {
		return printJSON(cmd.OutOrStdout(), results)
	}
	renderResults(cmd.OutOrStdout(), results)
	return nil
}

func checkTable(ctx context.Context, insp *inspect.Inspector, cfg *config.Config, t config.TableConfig, opts checkOptions, log *zap.Logger) (types.CheckResult, error) {
	rs, err := loadRules(t, opts.rulesPath, opts.configPath)
	if err != nil {
		return types.CheckResult{}, err
	}

	p := source.Partition{
		Database: t.Database,
		Table:    t.Name,
		Key:      cfg.PartitionKey(t),
		Value:    opts.partition,
	}
	res, err := insp.Inspect(ctx, p, rs)
	if err != nil {
		return types.CheckResult{}, err
	}

	rep := report.Build(res)
	log.Info("partition checked",
		zap.String("run_id", res.RunID),
		zap.String("partition", p.String()),
		zap.String("status", rep.Status()),
		zap.Int("issues", len(rep.Issues)))
	return report.CheckResult(res, rep, time.Now()), nil
}

// loadRules returns nil when the table has no rule document. Relative paths
// in the config file resolve against the config file's directory.
func loadRules(t config.TableConfig, override, configPath string) (*rules.RuleSet, error) {
	path := override
	if path == "" {
		path = t.Rules
		if path != "" && !filepath.IsAbs(path) {
			path = filepath.Join(filepath.Dir(configPath), path)
		}
	}
	if path == "" {
		return nil, nil
	}
	return rules.Load(path)
}

func selectTables(tables []config.TableConfig, only string) ([]config.TableConfig, error) {
	if only == "" {
		return tables, nil
	}
	for _, t := range tables {
		if t.Database+"."+t.Name == only {
			return []config.TableConfig{t}, nil
		}
	}
	return nil, fmt.Errorf("table %s is not configured", only)
}

package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/alexanderjulianmartinez/partwatch/internal/config"
	"github.com/alexanderjulianmartinez/partwatch/internal/logging"
	"github.com/alexanderjulianmartinez/partwatch/internal/source"
	"github.com/alexanderjulianmartinez/partwatch/internal/source/athena"
	"github.com/alexanderjulianmartinez/partwatch/internal/source/awsclient"
	"github.com/alexanderjulianmartinez/partwatch/internal/source/duckdb"
	"github.com/alexanderjulianmartinez/partwatch/internal/source/glue"
	"github.com/alexanderjulianmartinez/partwatch/internal/source/mysql"
)

type sources struct {
	counter source.RowCounter
	catalog source.SchemaCatalog
	close   func() error
}

func awsClientConfig(cfg *config.Config) awsclient.Config {
	return awsclient.Config{
		Region:          cfg.AWS.Region,
		Profile:         cfg.AWS.Profile,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		SessionToken:    cfg.AWS.SessionToken,
		Endpoint:        cfg.AWS.Endpoint,
	}
}

func openSources(ctx context.Context, cfg *config.Config, log *zap.Logger) (*sources, error) {
	switch cfg.Source.Type {
	case config.SourceAthena:
		awsCfg, err := awsclient.Load(ctx, awsClientConfig(cfg))
		if err != nil {
			return nil, err
		}
		log.Info("using athena source",
			zap.String("region", awsCfg.Region),
			zap.String("workgroup", cfg.Athena.WorkGroup))
		return &sources{
			counter: athena.NewCounterFromConfig(awsCfg, athena.Config{
				WorkGroup:      cfg.Athena.WorkGroup,
				OutputLocation: cfg.Athena.OutputLocation,
				PollInterval:   cfg.Athena.PollInterval,
			}, log),
			catalog: glue.NewCatalogFromConfig(awsCfg, cfg.Glue.CatalogID, log),
			close:   func() error { return nil },
		}, nil

	case config.SourceMySQL:
		log.Info("using mysql source", zap.String("dsn", logging.SanitizeDSN(cfg.MySQL.DSN)))
		insp, err := mysql.NewInspector(cfg.MySQL.DSN, cfg.MySQL.Timeout)
		if err != nil {
			return nil, err
		}
		return &sources{counter: insp, catalog: insp, close: insp.Close}, nil

	case config.SourceDuckDB:
		log.Info("using duckdb source", zap.String("path", cfg.DuckDB.Path))
		src, err := duckdb.Open(cfg.DuckDB.Path)
		if err != nil {
			return nil, err
		}
		return &sources{counter: src, catalog: src, close: src.Close}, nil
	}
	return nil, fmt.Errorf("unsupported source type %q", cfg.Source.Type)
}

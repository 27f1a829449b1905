package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is read from a YAML file; environment variables override file
// values. Secrets are only taken from the environment.
type Config struct {
	Source SourceConfig  `yaml:"source"`
	AWS    AWSConfig     `yaml:"aws"`
	Athena AthenaConfig  `yaml:"athena"`
	Glue   GlueConfig    `yaml:"glue"`
	MySQL  MySQLConfig   `yaml:"mysql"`
	DuckDB DuckDBConfig  `yaml:"duckdb"`
	Check  CheckConfig   `yaml:"check"`
	Tables []TableConfig `yaml:"tables"`
	Sink   SinkConfig    `yaml:"sink"`
	Log    LogConfig     `yaml:"log"`
}

const (
	SourceAthena = "athena"
	SourceMySQL  = "mysql"
	SourceDuckDB = "duckdb"
)

type SourceConfig struct {
	// athena counts with Athena and reads schemas from Glue; mysql and duckdb
	// serve both from the same database.
	Type string `yaml:"type" env:"PARTWATCH_SOURCE" env-default:"athena"`
}

type AWSConfig struct {
	Region          string `yaml:"region" env:"AWS_REGION"`
	Profile         string `yaml:"profile" env:"AWS_PROFILE"`
	AccessKeyID     string `yaml:"access_key_id" env:"PARTWATCH_AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"-" env:"PARTWATCH_AWS_SECRET_ACCESS_KEY"`
	SessionToken    string `yaml:"-" env:"PARTWATCH_AWS_SESSION_TOKEN"`
	Endpoint        string `yaml:"endpoint" env:"PARTWATCH_AWS_ENDPOINT"`
}

type AthenaConfig struct {
	WorkGroup      string        `yaml:"workgroup" env:"PARTWATCH_ATHENA_WORKGROUP" env-default:"primary"`
	OutputLocation string        `yaml:"output_location" env:"PARTWATCH_ATHENA_OUTPUT_LOCATION"`
	PollInterval   time.Duration `yaml:"poll_interval" env:"PARTWATCH_ATHENA_POLL_INTERVAL" env-default:"1s"`
}

type GlueConfig struct {
	CatalogID string `yaml:"catalog_id" env:"PARTWATCH_GLUE_CATALOG_ID"`
}

type MySQLConfig struct {
	DSN     string        `yaml:"dsn" env:"PARTWATCH_MYSQL_DSN"`
	Timeout time.Duration `yaml:"timeout" env:"PARTWATCH_MYSQL_TIMEOUT" env-default:"5s"`
}

type DuckDBConfig struct {
	Path string `yaml:"path" env:"PARTWATCH_DUCKDB_PATH"`
}

type CheckConfig struct {
	Threshold         int64  `yaml:"threshold" env:"PARTWATCH_THRESHOLD" env-default:"100000"`
	PartitionKey      string `yaml:"partition_key" env:"PARTWATCH_PARTITION_KEY" env-default:"anomesdia"`
	FailOnSchemaError bool   `yaml:"fail_on_schema_error" env:"PARTWATCH_FAIL_ON_SCHEMA_ERROR"`
}

type TableConfig struct {
	Database     string `yaml:"database"`
	Name         string `yaml:"name"`
	PartitionKey string `yaml:"partition_key"`
	// Rules is a path to a rule document; empty means count only.
	Rules string `yaml:"rules"`
}

type SinkConfig struct {
	Kafka KafkaConfig `yaml:"kafka"`
}

type KafkaConfig struct {
	Brokers string `yaml:"brokers" env:"PARTWATCH_KAFKA_BROKERS"`
	Topic   string `yaml:"topic" env:"PARTWATCH_KAFKA_TOPIC" env-default:"partwatch.results"`
}

func (k KafkaConfig) Enabled() bool {
	return k.Brokers != ""
}

type LogConfig struct {
	Level  string `yaml:"level" env:"PARTWATCH_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"PARTWATCH_LOG_FORMAT" env-default:"json"`
}

func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// PartitionKey returns the table's key, falling back to the check default.
func (c *Config) PartitionKey(t TableConfig) string {
	if t.PartitionKey != "" {
		return t.PartitionKey
	}
	return c.Check.PartitionKey
}

func (c *Config) validate() error {
	switch c.Source.Type {
	case SourceAthena:
		if c.Athena.OutputLocation == "" && c.Athena.WorkGroup == "" {
			return errors.New("athena.output_location or athena.workgroup is required")
		}
	case SourceMySQL:
		if c.MySQL.DSN == "" {
			return errors.New("mysql.dsn is required")
		}
	case SourceDuckDB:
		if c.DuckDB.Path == "" {
			return errors.New("duckdb.path is required")
		}
	default:
		return fmt.Errorf("source.type must be one of athena, mysql, duckdb (got %q)", c.Source.Type)
	}
	if c.Check.Threshold < 0 {
		return errors.New("check.threshold must not be negative")
	}
	if len(c.Tables) == 0 {
		return errors.New("at least one table is required")
	}
	for _, table := range c.Tables {
		if table.Name == "" {
			return errors.New("table.name is required")
		}
		if table.Database == "" {
			return fmt.Errorf("table %s must define database", table.Name)
		}
	}
	return nil
}

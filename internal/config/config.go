package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"item-catalog-service/internal/query"
)

// Config holds the application's configuration values.
// Tags like `envconfig:"APP_ENV"` name the environment variable and
// `default:""` supplies the value used when it is unset.
type Config struct {
	AppEnv     string `envconfig:"APP_ENV" default:"development"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`    // debug, info, warn, error
	LogFormat  string `envconfig:"LOG_FORMAT" default:"console"` // json or console
	ItemLookup string `envconfig:"ITEM_LOOKUP" default:"id"`     // id or position
	HttpServer ServerConfig
	GrpcServer GrpcServerConfig
	Dataset    DatasetConfig
}

// ServerConfig holds HTTP server-specific configurations.
type ServerConfig struct {
	Port         string        `envconfig:"HTTP_SERVER_PORT" default:"8080"`
	TimeoutRead  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_READ" default:"15s"`
	TimeoutWrite time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_WRITE" default:"15s"`
	TimeoutIdle  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_IDLE" default:"60s"`
}

// GrpcServerConfig holds gRPC server-specific configurations.
type GrpcServerConfig struct {
	Enabled bool   `envconfig:"GRPC_SERVER_ENABLED" default:"true"`
	Port    string `envconfig:"GRPC_SERVER_PORT" default:"9090"`
}

// DatasetConfig describes where the item collection lives and how it is
// bootstrapped when missing.
type DatasetConfig struct {
	File         string `envconfig:"DATASET_FILE"` // explicit override, used only if it exists
	LargeFile    string `envconfig:"DATASET_LARGE_FILE" default:"dataset_50000.json"`
	SampleFile   string `envconfig:"DATASET_SAMPLE_FILE" default:"sample_dataset.json"`
	Generate     bool   `envconfig:"DATASET_GENERATE" default:"true"`
	GenerateSize int    `envconfig:"DATASET_GENERATE_SIZE" default:"50000"`
	GenerateSeed int64  `envconfig:"DATASET_GENERATE_SEED" default:"0"`
}

// Lookup returns the parsed item lookup mode.
func (c *Config) Lookup() query.LookupMode {
	m, err := query.ParseLookupMode(c.ItemLookup)
	if err != nil {
		return query.LookupByID
	}
	return m
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}
	if _, err := query.ParseLookupMode(cfg.ItemLookup); err != nil {
		return nil, fmt.Errorf("invalid ITEM_LOOKUP: %w", err)
	}
	if cfg.Dataset.GenerateSize < 0 {
		return nil, fmt.Errorf("invalid DATASET_GENERATE_SIZE: %d", cfg.Dataset.GenerateSize)
	}
	return &cfg, nil
}

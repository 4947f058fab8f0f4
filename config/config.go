package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

const (
	DriverPostgres = "postgres"
	DriverREST     = "rest"
	DriverMemory   = "memory"
)

type Config struct {
	StoreDriver  string        `envconfig:"STORE_DRIVER"  default:"postgres"`
	DatabaseURL  string        `envconfig:"DATABASE_URL"`
	SupabaseURL  string        `envconfig:"SUPABASE_URL"`
	SupabaseKey  string        `envconfig:"SUPABASE_KEY"`
	StoreTimeout time.Duration `envconfig:"STORE_TIMEOUT" default:"5s"`
	EnsureSchema bool          `envconfig:"ENSURE_SCHEMA" default:"false"`

	HTTPPort string `envconfig:"HTTP_PORT" default:":8081"`
	GrpcPort string `envconfig:"GRPC_PORT" default:":50051"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	LowStockThreshold   int           `envconfig:"LOW_STOCK_THRESHOLD"   default:"5"`
	AdjustMaxTries      uint          `envconfig:"ADJUST_MAX_TRIES"      default:"5"`
	AdjustRetryInterval time.Duration `envconfig:"ADJUST_RETRY_INTERVAL" default:"50ms"`

	Export ExportConfig
}

// ExportConfig points CSV archiving at an S3-compatible bucket. Archiving is off when
// Bucket is empty.
type ExportConfig struct {
	Bucket          string `envconfig:"EXPORT_S3_BUCKET"`
	Region          string `envconfig:"EXPORT_S3_REGION" default:"us-east-1"`
	Endpoint        string `envconfig:"EXPORT_S3_ENDPOINT"`
	PathStyle       bool   `envconfig:"EXPORT_S3_PATH_STYLE" default:"false"`
	Prefix          string `envconfig:"EXPORT_S3_PREFIX" default:"exports"`
	AccessKeyID     string `envconfig:"EXPORT_S3_ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"EXPORT_S3_SECRET_ACCESS_KEY"`
}

func (e ExportConfig) Enabled() bool { return e.Bucket != "" }

// Load reads an optional .env file and then the environment.
func Load(logger *logrus.Logger, envFiles ...string) (*Config, error) {
	err := godotenv.Load(envFiles...)
	if err != nil && !os.IsNotExist(err) {
		logger.Warnf("Error loading .env file (but continuing): %v", err)
	} else if err == nil {
		logger.Info("Loaded configuration from .env file")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration from environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Infof("Configuration loaded: Driver=%s, HTTP Port=%s, GRPC Port=%s, LogLevel=%s",
		cfg.StoreDriver, cfg.HTTPPort, cfg.GrpcPort, cfg.LogLevel)
	return &cfg, nil
}

// Validate checks the settings each store driver depends on.
func (c *Config) Validate() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("configuration error: DATABASE_URL is required for the postgres driver")
		}
	case DriverREST:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return errors.New("configuration error: SUPABASE_URL and SUPABASE_KEY are required for the rest driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("configuration error: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.LowStockThreshold < 0 {
		return errors.New("configuration error: LOW_STOCK_THRESHOLD cannot be negative")
	}
	if c.AdjustMaxTries == 0 {
		return errors.New("configuration error: ADJUST_MAX_TRIES must be at least 1")
	}
	if c.StoreTimeout <= 0 {
		return errors.New("configuration error: STORE_TIMEOUT must be positive")
	}
	return nil
}

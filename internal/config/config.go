// Package config loads application configuration and initializes logging.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Ingest IngestConfig `yaml:"ingest" mapstructure:"ingest"`
	Match  MatchConfig  `yaml:"match" mapstructure:"match"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures generation persistence.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// IngestConfig configures the merge/ingestion pipeline.
type IngestConfig struct {
	RegistryPath string `yaml:"registry_path" mapstructure:"registry_path"`
	ContactsPath string `yaml:"contacts_path" mapstructure:"contacts_path"`
	SnapshotPath string `yaml:"snapshot_path" mapstructure:"snapshot_path"`
	CSVPath      string `yaml:"csv_path" mapstructure:"csv_path"`
	Workers      int    `yaml:"workers" mapstructure:"workers"`
}

// MatchConfig configures the matcher.
type MatchConfig struct {
	WeightsPath  string `yaml:"weights_path" mapstructure:"weights_path"`
	SearchLimit  int    `yaml:"search_limit" mapstructure:"search_limit"`
	BatchWorkers int    `yaml:"batch_workers" mapstructure:"batch_workers"`
}

// ServerConfig configures the HTTP shim.
type ServerConfig struct {
	Port       int     `yaml:"port" mapstructure:"port"`
	RatePerSec float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	RateBurst  int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RESOLVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "resolve.db")
	v.SetDefault("ingest.snapshot_path", "corpus.json")
	v.SetDefault("ingest.csv_path", "corpus_flat.csv")
	v.SetDefault("ingest.workers", 4)
	v.SetDefault("match.search_limit", 5)
	v.SetDefault("match.batch_workers", 8)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_per_sec", 50)
	v.SetDefault("server.rate_burst", 100)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

// Package config loads travelrec configuration.
//
// Values are layered, later layers winning:
//
//  1. struct defaults
//  2. an optional YAML file (CONFIG_PATH, config.yaml or config.yml)
//  3. TRAVELREC_ environment variables, e.g. TRAVELREC_DATABASE_PATH -> database.path
//
// A .env file in the working directory is loaded into the environment first.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "TRAVELREC_"

// ConfigPathEnvVar overrides the config file search
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
}

// Config is the complete application configuration
type Config struct {
	Database  DatabaseConfig  `koanf:"database"`
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Recommend RecommendConfig `koanf:"recommend"`
	Sentiment SentimentConfig `koanf:"sentiment"`
	Ingest    IngestConfig    `koanf:"ingest"`
}

// DatabaseConfig locates the SQLite database
type DatabaseConfig struct {
	Path string `koanf:"path"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	CORSOrigins []string      `koanf:"cors_origins"`
}

// Addr returns host:port
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig mirrors logging.Config
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// RecommendConfig holds the hybrid merge quotas and the sampling seed.
// Seed 0 seeds from the clock.
type RecommendConfig struct {
	Seed               int64 `koanf:"seed"`
	QuotaSystem        int   `koanf:"quota_system"`
	QuotaCollaborative int   `koanf:"quota_collaborative"`
	QuotaGraph         int   `koanf:"quota_graph"`
	Neighbors          int   `koanf:"neighbors"`
}

// SentimentConfig sizes the analyzer cache
type SentimentConfig struct {
	CacheSize int `koanf:"cache_size"`
}

// IngestConfig drives the seed command
type IngestConfig struct {
	CSVPath   string `koanf:"csv_path"`
	Users     int    `koanf:"users"`
	MinVisits int    `koanf:"min_visits"`
	MaxVisits int    `koanf:"max_visits"`
	BatchSize int    `koanf:"batch_size"`
	Seed      int64  `koanf:"seed"`
}

// Default returns the built-in defaults
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "wisata.db",
		},
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        5000,
			Timeout:     30 * time.Second,
			CORSOrigins: []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Recommend: RecommendConfig{
			QuotaSystem:        2,
			QuotaCollaborative: 2,
			QuotaGraph:         1,
			Neighbors:          4,
		},
		Sentiment: SentimentConfig{
			CacheSize: 4096,
		},
		Ingest: IngestConfig{
			CSVPath:   "tourism_with_id.csv",
			Users:     300,
			MinVisits: 10,
			MaxVisits: 25,
			BatchSize: 200,
			Seed:      42,
		},
	}
}

// Load reads configuration from defaults, file and environment
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := splitCommaList(k, "server.cors_origins"); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envTransformFunc maps TRAVELREC_SERVER_CORS_ORIGINS to server.cors_origins.
// Section names never contain underscores, so only the first one separates.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	section, rest, found := strings.Cut(key, "_")
	if !found {
		return section
	}
	return section + "." + rest
}

// splitCommaList turns a comma separated env value into a slice
func splitCommaList(k *koanf.Koanf, path string) error {
	s, ok := k.Get(path).(string)
	if !ok || s == "" {
		return nil
	}
	var parts []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if err := k.Set(path, parts); err != nil {
		return fmt.Errorf("failed to set %s: %w", path, err)
	}
	return nil
}

// Validate rejects configurations the application cannot run with
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Database.Path) == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.Timeout < 0 {
		errs = append(errs, errors.New("server.timeout cannot be negative"))
	}
	if c.Recommend.QuotaSystem < 0 || c.Recommend.QuotaCollaborative < 0 || c.Recommend.QuotaGraph < 0 {
		errs = append(errs, errors.New("recommend quotas cannot be negative"))
	}
	if c.Recommend.Neighbors < 1 {
		errs = append(errs, errors.New("recommend.neighbors must be at least 1"))
	}
	if c.Ingest.MinVisits < 0 || c.Ingest.MaxVisits < c.Ingest.MinVisits {
		errs = append(errs, fmt.Errorf("ingest visits range [%d, %d] is invalid", c.Ingest.MinVisits, c.Ingest.MaxVisits))
	}
	if c.Ingest.Users < 0 {
		errs = append(errs, errors.New("ingest.users cannot be negative"))
	}
	if c.Ingest.BatchSize < 1 {
		errs = append(errs, errors.New("ingest.batch_size must be at least 1"))
	}
	return errors.Join(errs...)
}

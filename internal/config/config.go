// Package config loads server settings from an optional YAML file and the
// environment. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"svw.info/tambola/internal/domain"
)

type Config struct {
	Addr       string `yaml:"addr" env:"TAMBOLA_ADDR"`
	LogLevel   string `yaml:"log_level" env:"TAMBOLA_LOG_LEVEL"`
	Generator  string `yaml:"generator" env:"TAMBOLA_GENERATOR"`
	Store      string `yaml:"store" env:"TAMBOLA_STORE"`
	DataDir    string `yaml:"data_dir" env:"TAMBOLA_DATA_DIR"`
	SQLitePath string `yaml:"sqlite_path" env:"TAMBOLA_SQLITE_PATH"`
	MaxBatch   int    `yaml:"max_batch" env:"TAMBOLA_MAX_BATCH"`
}

var ErrInvalid = errors.New("invalid config")

// Load reads a .env file in the working directory into the environment,
// then reads path (skipped when empty) with ${VAR} references expanded,
// then applies environment overrides.
func Load(path string) (*Config, error) {
	// The .env file is optional; it is read first so YAML can reference it.
	_ = godotenv.Load()
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}

// LoadAndValidate loads config, applies defaults, and validates.
func LoadAndValidate(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Generator == "" {
		c.Generator = "joint"
	}
	if c.Store == "" {
		c.Store = "fs"
	}
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
	if c.SQLitePath == "" {
		c.SQLitePath = "./data/tickets.db"
	}
	if c.MaxBatch == 0 {
		c.MaxBatch = 100
	}
}

func (c *Config) Validate() error {
	var errs []error
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseStrategy(c.Generator); err != nil {
		errs = append(errs, err)
	}
	switch c.Store {
	case "fs", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("%w: store %q (want fs|sqlite)", ErrInvalid, c.Store))
	}
	if c.MaxBatch < 1 {
		errs = append(errs, fmt.Errorf("%w: max_batch %d must be positive", ErrInvalid, c.MaxBatch))
	}
	return errors.Join(errs...)
}

func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("%w: log level %q (want debug|info|warn|error)", ErrInvalid, s)
}

func ParseStrategy(s string) (domain.Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "joint", "":
		return domain.StrategyJoint, nil
	case "repair":
		return domain.StrategyRepair, nil
	}
	return domain.StrategyJoint, fmt.Errorf("%w: generator %q (want joint|repair)", ErrInvalid, s)
}

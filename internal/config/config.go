package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrInvalidConfig is returned when config validation fails
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all service configuration
type Config struct {
	Addr     string         `yaml:"addr"`
	LogLevel string         `yaml:"log_level"`
	Database DatabaseConfig `yaml:"database"`
	Export   ExportConfig   `yaml:"export"`
}

// DatabaseConfig selects the gorm driver and its DSN
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	Seed   bool   `yaml:"seed"`
}

// ExportConfig controls file exports written by the CLI
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// Default returns the configuration used when nothing else is set
func Default() Config {
	return Config{
		Addr:     ":8080",
		LogLevel: "info",
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			DSN:    "farm.db",
		},
		Export: ExportConfig{
			Dir: ".",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, a
// .env file in the working directory and finally the process environment.
// A missing file at path is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse %s: %w", path, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
	}

	// .env is optional; existing environment variables win over it
	_ = godotenv.Load()

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("FARMOS_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("FARMOS_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("FARMOS_DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("FARMOS_DB"); v != "" {
		c.Database.DSN = v
	}
	// DATABASE_URL takes precedence and implies postgres unless a driver was chosen
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.DSN = v
		if os.Getenv("FARMOS_DB_DRIVER") == "" && strings.HasPrefix(v, "postgres") {
			c.Database.Driver = DriverPostgres
		}
	}
	if v := os.Getenv("FARMOS_SEED"); v != "" {
		c.Database.Seed = v == "true" || v == "1"
	}
	if v := os.Getenv("FARMOS_EXPORT_DIR"); v != "" {
		c.Export.Dir = v
	}
}

// Validate checks the configuration for unusable values
func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("%w: unknown database driver %q", ErrInvalidConfig, c.Database.Driver)
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("%w: database dsn is empty", ErrInvalidConfig)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Level returns the slog level named by LogLevel
func (c Config) Level() slog.Level {
	lvl, _ := parseLevel(c.LogLevel)
	return lvl
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", s, err)
	}
	return lvl, nil
}

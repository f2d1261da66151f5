// Package config provides configuration management for promptcheck.
//
// Values are resolved in layers, lowest priority first:
//
//  1. built-in defaults (the fixed admin account and sample prompt)
//  2. an optional YAML file (config.yaml, or the path in PROMPTCHECK_CONFIG)
//  3. an optional .env file (never overrides variables already set)
//  4. environment variables named by the env struct tags (PROMPTCHECK_*, HTTP_TIMEOUT)
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage backend types
const (
	StorageSQLite     = "sqlite"
	StoragePostgreSQL = "postgresql"
	StorageMongoDB    = "mongodb"
)

// DefaultConfigPath is read when PROMPTCHECK_CONFIG is not set.
const DefaultConfigPath = "config.yaml"

// Config holds the application configuration
type Config struct {
	// BaseURL is the service API root, without a trailing slash.
	BaseURL string        `yaml:"base_url" env:"PROMPTCHECK_BASE_URL"`
	Admin   AdminConfig   `yaml:"admin"`
	Sample  SampleConfig  `yaml:"sample"`
	Storage StorageConfig `yaml:"storage"`
	HTTP    HTTPConfig    `yaml:"http"`
	Log     LogConfig     `yaml:"log"`
}

// AdminConfig is the account the scenario logs in with
type AdminConfig struct {
	Email    string `yaml:"email" env:"PROMPTCHECK_ADMIN_EMAIL"`
	Password string `yaml:"password" env:"PROMPTCHECK_ADMIN_PASSWORD"`
}

// SampleConfig holds the field values used for the created prompt
type SampleConfig struct {
	Title              string `yaml:"title"`
	Description        string `yaml:"description"`
	Text               string `yaml:"text"`
	Category           string `yaml:"category"`
	UpdatedDescription string `yaml:"updated_description"`
}

// StorageConfig selects where the service persists prompts
type StorageConfig struct {
	// Type is one of "sqlite", "postgresql", "mongodb"
	Type string `yaml:"type" env:"PROMPTCHECK_STORAGE_TYPE"`

	// Table is the table (or MongoDB collection) holding prompt rows
	Table string `yaml:"table" env:"PROMPTCHECK_STORAGE_TABLE"`

	SQLite     SQLiteConfig     `yaml:"sqlite"`
	PostgreSQL PostgreSQLConfig `yaml:"postgresql"`
	MongoDB    MongoDBConfig    `yaml:"mongodb"`
}

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	// Path is the database file path, relative to the working directory
	Path string `yaml:"path" env:"PROMPTCHECK_SQLITE_PATH"`
}

// PostgreSQLConfig holds PostgreSQL-specific configuration
type PostgreSQLConfig struct {
	URL string `yaml:"url" env:"PROMPTCHECK_POSTGRES_URL"`
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URL      string `yaml:"url" env:"PROMPTCHECK_MONGODB_URL"`
	Database string `yaml:"database" env:"PROMPTCHECK_MONGODB_DATABASE"`
}

// HTTPConfig holds HTTP client settings
type HTTPConfig struct {
	// Timeout is the overall request timeout. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT"`
}

// LogConfig holds logger settings
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level" env:"PROMPTCHECK_LOG_LEVEL"`
	// Format is "text" (colored when attached to a terminal) or "json"
	Format string `yaml:"format" env:"PROMPTCHECK_LOG_FORMAT"`
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() Config {
	return Config{
		BaseURL: "http://localhost:3001/api",
		Admin: AdminConfig{
			Email:    "admin@example.com",
			Password: "adminpassword",
		},
		Sample: SampleConfig{
			Title:              "Admin Test Prompt",
			Description:        "This is an admin test prompt.",
			Text:               "Admin test.",
			Category:           "Admin",
			UpdatedDescription: "This is the updated admin description.",
		},
		Storage: StorageConfig{
			Type:  StorageSQLite,
			Table: "prompts",
			SQLite: SQLiteConfig{
				Path: "backend/database.db",
			},
			MongoDB: MongoDBConfig{
				Database: "prompts",
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load resolves the configuration. path may be empty, in which case
// PROMPTCHECK_CONFIG or DefaultConfigPath is tried. A missing file is not an error.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Defaults()

	explicit := path != ""
	if !explicit {
		if p := os.Getenv("PROMPTCHECK_CONFIG"); p != "" {
			path, explicit = p, true
		} else {
			path = DefaultConfigPath
		}
	}

	if err := loadYAML(path, &cfg); err != nil {
		if !errors.Is(err, os.ErrNotExist) || explicit {
			return nil, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	expanded := expandEnvVars(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} placeholders.
// Unset variables without a default expand to an empty string.
func expandEnvVars(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(m string) string {
		parts := envPattern.FindStringSubmatch(m)
		if v, ok := os.LookupEnv(parts[1]); ok && v != "" {
			return v
		}
		return parts[3]
	})
}

// envParsers extends the env library with durations given as whole seconds.
var envParsers = map[reflect.Type]env.ParserFunc{
	reflect.TypeOf(time.Duration(0)): func(v string) (interface{}, error) {
		return parseDuration(v)
	},
}

// applyEnv overlays the variables named in the env struct tags. Unset or
// empty variables leave the current value in place.
func applyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{FuncMap: envParsers}); err != nil {
		return fmt.Errorf("failed to read environment overrides: %w", err)
	}
	return nil
}

// parseDuration accepts plain integers (seconds) or Go duration strings.
func parseDuration(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks the resolved configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base_url is required")
	}
	switch c.Storage.Type {
	case StorageSQLite:
		if c.Storage.SQLite.Path == "" {
			return errors.New("storage.sqlite.path is required")
		}
	case StoragePostgreSQL:
		if c.Storage.PostgreSQL.URL == "" {
			return errors.New("storage.postgresql.url is required")
		}
	case StorageMongoDB:
		if c.Storage.MongoDB.URL == "" {
			return errors.New("storage.mongodb.url is required")
		}
	default:
		return fmt.Errorf("unknown storage type: %s (valid: sqlite, postgresql, mongodb)", c.Storage.Type)
	}
	if !identPattern.MatchString(c.Storage.Table) {
		return fmt.Errorf("invalid storage table name %q", c.Storage.Table)
	}
	return nil
}

// Package config resolves the single configuration value a curioscore run
// is built from. Each setting resolves to its environment variable when set
// and non-empty, else the TOML file value, else the compiled-in default.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/curioscore/pkg/database"
	"github.com/JaimeStill/curioscore/pkg/openrouter"
	"github.com/JaimeStill/curioscore/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"
	DotEnvFile           = ".env"

	EnvCurioscoreEnv     = "CURIOSCORE_ENV"
	EnvLogLevel          = "CURIOSCORE_LOG_LEVEL"
	EnvShutdownTimeout   = "CURIOSCORE_SHUTDOWN_TIMEOUT"
	EnvCurioscoreVersion = "CURIOSCORE_VERSION"
)

var databaseEnv = &database.Env{
	URL:             "CURIOSCORE_DB_URL",
	Host:            "CURIOSCORE_DB_HOST",
	Port:            "CURIOSCORE_DB_PORT",
	Name:            "CURIOSCORE_DB_NAME",
	User:            "CURIOSCORE_DB_USER",
	Password:        "CURIOSCORE_DB_PASSWORD",
	SSLMode:         "CURIOSCORE_DB_SSL_MODE",
	MaxOpenConns:    "CURIOSCORE_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "CURIOSCORE_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "CURIOSCORE_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "CURIOSCORE_DB_CONN_TIMEOUT",
}

var llmEnv = &openrouter.Env{
	APIKey:         "OPENROUTER_API_KEY",
	URL:            "OPENROUTER_URL",
	Model:          "OPENROUTER_MODEL",
	Temperature:    "OPENROUTER_TEMPERATURE",
	TimeoutSeconds: "OPENROUTER_TIMEOUT_S",
	MaxRetries:     "OPENROUTER_MAX_RETRIES",
	WebSearch:      "CURIOSCORE_LLM_WEB_SEARCH",
	WebMaxResults:  "OPENROUTER_WEB_MAX_RESULTS",
}

var storageEnv = &storage.Env{
	ContainerName:    "CURIOSCORE_STORAGE_CONTAINER_NAME",
	ConnectionString: "CURIOSCORE_STORAGE_CONNECTION_STRING",
	ServiceURL:       "CURIOSCORE_STORAGE_SERVICE_URL",
	Prefix:           "CURIOSCORE_STORAGE_PREFIX",
}

// Config is the root configuration for a curioscore process.
type Config struct {
	Store           StoreConfig       `toml:"store"`
	Database        database.Config   `toml:"database"`
	LLM             openrouter.Config `toml:"llm"`
	Storage         storage.Config    `toml:"storage"`
	Batch           BatchConfig       `toml:"batch"`
	LogLevel        string            `toml:"log_level"`
	ShutdownTimeout string            `toml:"shutdown_timeout"`
	Version         string            `toml:"version"`
}

// Env returns the CURIOSCORE_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvCurioscoreEnv); env != "" {
		return env
	}
	return "local"
}

// Level returns LogLevel as a slog.Level.
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load loads a .env file from the working directory (never overriding
// variables already set), reads the TOML file at path, applies the
// config.<CURIOSCORE_ENV>.toml overlay found beside it, and finalizes all
// values. An empty path reads config.toml when present; an explicit path
// must exist. Without any file, defaults and environment variables provide
// all configuration.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	base := path

	if base == "" {
		base = BaseConfigFile
		if _, err := os.Stat(base); err == nil {
			loaded, err := load(base)
			if err != nil {
				return nil, err
			}
			cfg = loaded
		}
	} else {
		loaded, err := load(base)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if overlay := overlayPath(base); overlay != "" {
		o, err := load(overlay)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", overlay, err)
		}
		cfg.Merge(o)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.LogLevel != "" {
		c.LogLevel = overlay.LogLevel
	}
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Store.Merge(&overlay.Store)
	c.Database.Merge(&overlay.Database)
	c.LLM.Merge(&overlay.LLM)
	c.Storage.Merge(&overlay.Storage)
	c.Batch.Merge(&overlay.Batch)
}

// Finalize applies defaults, environment variable overrides, and validation
// to the root config and every sub-config. The database sub-config is only
// finalized, and its mandatory fields only enforced, for the postgres backend.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Store.Finalize(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if c.Store.Backend == BackendPostgres {
		if err := c.Database.Finalize(databaseEnv); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if err := c.LLM.Finalize(llmEnv); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Batch.Finalize(); err != nil {
		return fmt.Errorf("batch: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvCurioscoreVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level: %q", c.LogLevel)
	}
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return &cfg, nil
}

func overlayPath(base string) string {
	if env := os.Getenv(EnvCurioscoreEnv); env != "" {
		path := filepath.Join(filepath.Dir(base), fmt.Sprintf(OverlayConfigPattern, env))
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func loadDotEnv() error {
	if _, err := os.Stat(DotEnvFile); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(DotEnvFile); err != nil {
		return fmt.Errorf("load %s: %w", DotEnvFile, err)
	}
	return nil
}

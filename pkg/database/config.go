package database

import (
	"cmp"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds PostgreSQL connection parameters. A non-empty URL takes
// precedence over the discrete host/port/name/user fields.
type Config struct {
	URL             string `toml:"url"`
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	Name            string `toml:"name"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	SSLMode         string `toml:"ssl_mode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime string `toml:"conn_max_lifetime"`
	ConnTimeout     string `toml:"conn_timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	URL             string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    string
	MaxIdleConns    string
	ConnMaxLifetime string
	ConnTimeout     string
}

// ConnMaxLifetimeDuration returns ConnMaxLifetime as a time.Duration.
func (c *Config) ConnMaxLifetimeDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnMaxLifetime)
	return d
}

// ConnTimeoutDuration returns ConnTimeout as a time.Duration.
func (c *Config) ConnTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnTimeout)
	return d
}

// Dsn returns a PostgreSQL connection string.
func (c *Config) Dsn() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.Host, c.Port, c.Name, c.User, c.Password, c.SSLMode,
	)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	set(&c.URL, overlay.URL)
	set(&c.Host, overlay.Host)
	set(&c.Port, overlay.Port)
	set(&c.Name, overlay.Name)
	set(&c.User, overlay.User)
	set(&c.Password, overlay.Password)
	set(&c.SSLMode, overlay.SSLMode)
	set(&c.MaxOpenConns, overlay.MaxOpenConns)
	set(&c.MaxIdleConns, overlay.MaxIdleConns)
	set(&c.ConnMaxLifetime, overlay.ConnMaxLifetime)
	set(&c.ConnTimeout, overlay.ConnTimeout)
}

// Pool defaults suit a single CLI process: one batch at a time with a
// handful of concurrent classifier workers.
func (c *Config) loadDefaults() {
	c.Host = cmp.Or(c.Host, "localhost")
	c.Port = cmp.Or(c.Port, 5432)
	c.SSLMode = cmp.Or(c.SSLMode, "disable")
	c.MaxOpenConns = cmp.Or(c.MaxOpenConns, 10)
	c.MaxIdleConns = cmp.Or(c.MaxIdleConns, 2)
	c.ConnMaxLifetime = cmp.Or(c.ConnMaxLifetime, "15m")
	c.ConnTimeout = cmp.Or(c.ConnTimeout, "5s")
}

func (c *Config) loadEnv(env *Env) {
	set(&c.URL, lookup(env.URL))
	set(&c.Host, lookup(env.Host))
	set(&c.Port, lookupInt(env.Port))
	set(&c.Name, lookup(env.Name))
	set(&c.User, lookup(env.User))
	set(&c.Password, lookup(env.Password))
	set(&c.SSLMode, lookup(env.SSLMode))
	set(&c.MaxOpenConns, lookupInt(env.MaxOpenConns))
	set(&c.MaxIdleConns, lookupInt(env.MaxIdleConns))
	set(&c.ConnMaxLifetime, lookup(env.ConnMaxLifetime))
	set(&c.ConnTimeout, lookup(env.ConnTimeout))
}

func (c *Config) validate() error {
	if c.URL == "" {
		if c.Name == "" {
			return fmt.Errorf("name required")
		}
		if c.User == "" {
			return fmt.Errorf("user required")
		}
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return fmt.Errorf("max_idle_conns %d exceeds max_open_conns %d", c.MaxIdleConns, c.MaxOpenConns)
	}
	if _, err := time.ParseDuration(c.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid conn_max_lifetime: %w", err)
	}
	if _, err := time.ParseDuration(c.ConnTimeout); err != nil {
		return fmt.Errorf("invalid conn_timeout: %w", err)
	}
	return nil
}

// set assigns v to dst unless v is the zero value.
func set[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}

// lookup reads the variable called name; an empty name reads nothing.
func lookup(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}

// lookupInt is lookup for integer settings. Unparseable values read as 0
// and leave the field alone.
func lookupInt(name string) int {
	n, _ := strconv.Atoi(lookup(name))
	return n
}

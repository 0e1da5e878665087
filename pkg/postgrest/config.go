package postgrest

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

// Config holds connection parameters for a PostgREST endpoint such as a
// Supabase project.
type Config struct {
	URL     string `toml:"url"`
	Key     string `toml:"key"`
	Schema  string `toml:"schema"`
	Timeout string `toml:"timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	URL     string
	Key     string
	Schema  string
	Timeout string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// RestURL returns the REST root for the project (<url>/rest/v1).
func (c *Config) RestURL() string {
	base := strings.TrimRight(c.URL, "/")
	if strings.HasSuffix(base, "/rest/v1") {
		return base
	}
	return base + "/rest/v1"
}

// Finalize applies defaults, environment variable overrides, and validation.
// URL and Key are mandatory.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.URL != "" {
		c.URL = overlay.URL
	}
	if overlay.Key != "" {
		c.Key = overlay.Key
	}
	if overlay.Schema != "" {
		c.Schema = overlay.Schema
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *Config) loadDefaults() {
	if c.Schema == "" {
		c.Schema = "public"
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.URL != "" {
		if v := os.Getenv(env.URL); v != "" {
			c.URL = v
		}
	}
	if env.Key != "" {
		if v := os.Getenv(env.Key); v != "" {
			c.Key = v
		}
	}
	if env.Schema != "" {
		if v := os.Getenv(env.Schema); v != "" {
			c.Schema = v
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
}

func (c *Config) validate() error {
	if c.URL == "" {
		return fmt.Errorf("url required")
	}
	if u, err := url.Parse(c.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid url: %q", c.URL)
	}
	if c.Key == "" {
		return fmt.Errorf("key required")
	}
	if d, err := time.ParseDuration(c.Timeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid timeout: %q", c.Timeout)
	}
	return nil
}

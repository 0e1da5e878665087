// Package pagination provides offset-range paging over remote tables that
// signal exhaustion with a short page.
package pagination

import (
	"fmt"
	"os"
	"strconv"
)

// DefaultPageSize matches the row cap most hosted table stores apply per request.
const DefaultPageSize = 1000

// Config holds the fixed page size used when walking a result set.
type Config struct {
	PageSize int `toml:"page_size"`
}

// ConfigEnv maps environment variable names for pagination configuration.
type ConfigEnv struct {
	PageSize string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *ConfigEnv) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge applies non-zero values from the overlay configuration.
func (c *Config) Merge(overlay *Config) {
	if overlay.PageSize != 0 {
		c.PageSize = overlay.PageSize
	}
}

func (c *Config) loadDefaults() {
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
}

func (c *Config) loadEnv(env *ConfigEnv) {
	if env.PageSize != "" {
		if v := os.Getenv(env.PageSize); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.PageSize = n
			}
		}
	}
}

func (c *Config) validate() error {
	if c.PageSize < 1 {
		return fmt.Errorf("page_size must be positive")
	}
	return nil
}

package openrouter

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Default endpoint and tuning values.
const (
	DefaultURL          = "https://openrouter.ai/api/v1/chat/completions"
	DefaultModel        = "mistralai/devstral-2512:free"
	DefaultTemperature  = 0.3
	DefaultTimeout      = "180s"
	DefaultMaxRetries   = 6
	DefaultRetryWait    = "1s"
	DefaultRetryMaxWait = "30s"
	DefaultWebResults   = 6
)

// Config holds chat-completions gateway parameters.
//
// Temperature uses the zero value as "unset", so a config file cannot pin
// it to exactly 0; the environment override can.
type Config struct {
	APIKey        string  `toml:"api_key"`
	URL           string  `toml:"url"`
	Model         string  `toml:"model"`
	Temperature   float64 `toml:"temperature"`
	Timeout       string  `toml:"timeout"`
	MaxRetries    int     `toml:"max_retries"`
	RetryWait     string  `toml:"retry_wait"`
	RetryMaxWait  string  `toml:"retry_max_wait"`
	WebSearch     bool    `toml:"web_search"`
	WebMaxResults int     `toml:"web_max_results"`
	SiteURL       string  `toml:"site_url"`
	SiteName      string  `toml:"site_name"`
}

// Env maps config fields to environment variable names for override injection.
// TimeoutSeconds is read as a whole number of seconds.
type Env struct {
	APIKey         string
	URL            string
	Model          string
	Temperature    string
	TimeoutSeconds string
	MaxRetries     string
	WebSearch      string
	WebMaxResults  string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// RetryWaitDuration returns RetryWait as a time.Duration.
func (c *Config) RetryWaitDuration() time.Duration {
	d, _ := time.ParseDuration(c.RetryWait)
	return d
}

// RetryMaxWaitDuration returns RetryMaxWait as a time.Duration.
func (c *Config) RetryMaxWaitDuration() time.Duration {
	d, _ := time.ParseDuration(c.RetryMaxWait)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
// APIKey and Model may remain empty; requests then fail at the gateway.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.URL != "" {
		c.URL = overlay.URL
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.Temperature != 0 {
		c.Temperature = overlay.Temperature
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.MaxRetries != 0 {
		c.MaxRetries = overlay.MaxRetries
	}
	if overlay.RetryWait != "" {
		c.RetryWait = overlay.RetryWait
	}
	if overlay.RetryMaxWait != "" {
		c.RetryMaxWait = overlay.RetryMaxWait
	}
	if overlay.WebSearch {
		c.WebSearch = true
	}
	if overlay.WebMaxResults != 0 {
		c.WebMaxResults = overlay.WebMaxResults
	}
	if overlay.SiteURL != "" {
		c.SiteURL = overlay.SiteURL
	}
	if overlay.SiteName != "" {
		c.SiteName = overlay.SiteName
	}
}

func (c *Config) loadDefaults() {
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
	if c.Timeout == "" {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.RetryWait == "" {
		c.RetryWait = DefaultRetryWait
	}
	if c.RetryMaxWait == "" {
		c.RetryMaxWait = DefaultRetryMaxWait
	}
	if c.WebMaxResults == 0 {
		c.WebMaxResults = DefaultWebResults
	}
	if c.SiteName == "" {
		c.SiteName = "curioscore"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.APIKey != "" {
		if v := os.Getenv(env.APIKey); v != "" {
			c.APIKey = v
		}
	}
	if env.URL != "" {
		if v := os.Getenv(env.URL); v != "" {
			c.URL = v
		}
	}
	if env.Model != "" {
		if v := os.Getenv(env.Model); v != "" {
			c.Model = v
		}
	}
	if env.Temperature != "" {
		if v := os.Getenv(env.Temperature); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				c.Temperature = f
			}
		}
	}
	if env.TimeoutSeconds != "" {
		if v := os.Getenv(env.TimeoutSeconds); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.Timeout = fmt.Sprintf("%ds", n)
			}
		}
	}
	if env.MaxRetries != "" {
		if v := os.Getenv(env.MaxRetries); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxRetries = n
			}
		}
	}
	if env.WebSearch != "" {
		if v := os.Getenv(env.WebSearch); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.WebSearch = b
			}
		}
	}
	if env.WebMaxResults != "" {
		if v := os.Getenv(env.WebMaxResults); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.WebMaxResults = n
			}
		}
	}
}

func (c *Config) validate() error {
	if c.URL == "" {
		return fmt.Errorf("url required")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature out of range: %v", c.Temperature)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative")
	}
	if c.WebMaxResults < 1 {
		return fmt.Errorf("web_max_results must be positive")
	}
	if d, err := time.ParseDuration(c.Timeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid timeout: %q", c.Timeout)
	}
	if _, err := time.ParseDuration(c.RetryWait); err != nil {
		return fmt.Errorf("invalid retry_wait: %w", err)
	}
	if _, err := time.ParseDuration(c.RetryMaxWait); err != nil {
		return fmt.Errorf("invalid retry_max_wait: %w", err)
	}
	return nil
}

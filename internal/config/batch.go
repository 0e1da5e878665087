package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	EnvBatchOutputDir         = "CURIOSCORE_OUTPUT_DIR"
	EnvBatchBoxStart          = "CURIOSCORE_BOX_START"
	EnvBatchBoxEnd            = "CURIOSCORE_BOX_END"
	EnvBatchStopOnError       = "CURIOSCORE_STOP_ON_ERROR"
	EnvBatchConcurrency       = "CURIOSCORE_CONCURRENCY"
	EnvBatchLenientCategories = "CURIOSCORE_LENIENT_CATEGORIES"
)

// BatchConfig parameterizes a batch run. The zero value of BoxStart and
// BoxEnd means "unset", so box 0 is only reachable through CLI flags. The
// range is checked once flags are applied, not here.
type BatchConfig struct {
	OutputDir         string `toml:"output_dir"`
	BoxStart          int    `toml:"box_start"`
	BoxEnd            int    `toml:"box_end"`
	StopOnError       bool   `toml:"stop_on_error"`
	Concurrency       int    `toml:"concurrency"`
	LenientCategories bool   `toml:"lenient_categories"`
}

// ContinueOnError reports whether per-record and per-box failures are
// recorded and skipped rather than ending the run.
func (c *BatchConfig) ContinueOnError() bool {
	return !c.StopOnError
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *BatchConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *BatchConfig) Merge(overlay *BatchConfig) {
	if overlay.OutputDir != "" {
		c.OutputDir = overlay.OutputDir
	}
	if overlay.BoxStart != 0 {
		c.BoxStart = overlay.BoxStart
	}
	if overlay.BoxEnd != 0 {
		c.BoxEnd = overlay.BoxEnd
	}
	if overlay.StopOnError {
		c.StopOnError = true
	}
	if overlay.Concurrency != 0 {
		c.Concurrency = overlay.Concurrency
	}
	if overlay.LenientCategories {
		c.LenientCategories = true
	}
}

func (c *BatchConfig) loadDefaults() {
	if c.OutputDir == "" {
		c.OutputDir = "./curio-classifications"
	}
	if c.BoxStart == 0 {
		c.BoxStart = 3501
	}
	if c.BoxEnd == 0 {
		c.BoxEnd = 3999
	}
	if c.Concurrency == 0 {
		c.Concurrency = 1
	}
}

func (c *BatchConfig) loadEnv() {
	if v := os.Getenv(EnvBatchOutputDir); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv(EnvBatchBoxStart); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.BoxStart = n
		}
	}
	if v := os.Getenv(EnvBatchBoxEnd); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.BoxEnd = n
		}
	}
	if v := os.Getenv(EnvBatchStopOnError); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.StopOnError = b
		}
	}
	if v := os.Getenv(EnvBatchConcurrency); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Concurrency = n
		}
	}
	if v := os.Getenv(EnvBatchLenientCategories); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.LenientCategories = b
		}
	}
}

func (c *BatchConfig) validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir required")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be positive")
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/JaimeStill/curioscore/pkg/pagination"
	"github.com/JaimeStill/curioscore/pkg/postgrest"
)

// Record store backends.
const (
	BackendPostgREST = "postgrest"
	BackendPostgres  = "postgres"
)

const (
	EnvStoreBackend   = "CURIOSCORE_STORE_BACKEND"
	EnvStoreTable     = "SUPABASE_TABLE"
	EnvStoreSchema    = "CURIOSCORE_STORE_SCHEMA"
	EnvStoreChunkSize = "CURIOSCORE_STORE_CHUNK_SIZE"
)

var postgrestEnv = &postgrest.Env{
	URL:     "SUPABASE_URL",
	Key:     "SUPABASE_KEY",
	Timeout: "CURIOSCORE_STORE_TIMEOUT",
}

var paginationEnv = &pagination.ConfigEnv{
	PageSize: "SUPABASE_PAGE_SIZE",
}

// StoreConfig selects and parameterizes the record store.
type StoreConfig struct {
	Backend    string            `toml:"backend"`
	Table      string            `toml:"table"`
	Schema     string            `toml:"schema"`
	ChunkSize  int               `toml:"chunk_size"`
	PostgREST  postgrest.Config  `toml:"postgrest"`
	Pagination pagination.Config `toml:"pagination"`
}

// Finalize applies defaults, environment variable overrides, and validation.
// PostgREST credentials are mandatory only for the postgrest backend.
func (c *StoreConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if c.Backend == BackendPostgREST {
		if c.PostgREST.Schema == "" {
			c.PostgREST.Schema = c.Schema
		}
		if err := c.PostgREST.Finalize(postgrestEnv); err != nil {
			return fmt.Errorf("postgrest: %w", err)
		}
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *StoreConfig) Merge(overlay *StoreConfig) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.Table != "" {
		c.Table = overlay.Table
	}
	if overlay.Schema != "" {
		c.Schema = overlay.Schema
	}
	if overlay.ChunkSize != 0 {
		c.ChunkSize = overlay.ChunkSize
	}
	c.PostgREST.Merge(&overlay.PostgREST)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *StoreConfig) loadDefaults() {
	if c.Backend == "" {
		c.Backend = BackendPostgREST
	}
	if c.Table == "" {
		c.Table = "places"
	}
	if c.Schema == "" {
		c.Schema = "public"
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = 200
	}
}

func (c *StoreConfig) loadEnv() {
	if v := os.Getenv(EnvStoreBackend); v != "" {
		c.Backend = v
	}
	if v := os.Getenv(EnvStoreTable); v != "" {
		c.Table = v
	}
	if v := os.Getenv(EnvStoreSchema); v != "" {
		c.Schema = v
	}
	if v := os.Getenv(EnvStoreChunkSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.ChunkSize = n
		}
	}
}

func (c *StoreConfig) validate() error {
	switch c.Backend {
	case BackendPostgREST, BackendPostgres:
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendPostgREST, BackendPostgres)
	}
	if c.Table == "" {
		return fmt.Errorf("table required")
	}
	if c.ChunkSize < 1 {
		return fmt.Errorf("chunk_size must be positive")
	}
	return nil
}

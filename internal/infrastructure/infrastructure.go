// Package infrastructure provides core service initialization for a run.
// It assembles the dependencies the batch runner and publisher require
// (logging, record store, optional database pool and archive, LLM gateway).
package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/curioscore/internal/config"
	"github.com/JaimeStill/curioscore/internal/curios"
	"github.com/JaimeStill/curioscore/pkg/database"
	"github.com/JaimeStill/curioscore/pkg/lifecycle"
	"github.com/JaimeStill/curioscore/pkg/openrouter"
	"github.com/JaimeStill/curioscore/pkg/postgrest"
	"github.com/JaimeStill/curioscore/pkg/storage"
)

// Infrastructure holds the core systems a run depends on. Database is nil
// unless the postgres store backend is selected; Storage is nil unless an
// archive is configured.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Store     curios.Store
	Database  database.System
	Storage   storage.System
	LLM       *openrouter.Client
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(ctx context.Context, cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New(ctx)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Level(),
	}))

	infra := &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		LLM:       openrouter.New(&cfg.LLM),
	}

	opts := curios.Options{
		Table:     cfg.Store.Table,
		Schema:    cfg.Store.Schema,
		PageSize:  cfg.Store.Pagination.PageSize,
		ChunkSize: cfg.Store.ChunkSize,
	}

	switch cfg.Store.Backend {
	case config.BackendPostgres:
		db, err := database.New(&cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		infra.Database = db
		infra.Store = curios.NewPostgres(db.Connection(), opts, logger)
	default:
		infra.Store = curios.NewPostgREST(postgrest.New(&cfg.Store.PostgREST), opts, logger)
	}

	if cfg.Storage.Enabled() {
		archive, err := storage.New(&cfg.Storage, logger)
		if err != nil {
			return nil, fmt.Errorf("storage init failed: %w", err)
		}
		infra.Storage = archive
	}

	logger.Info("infrastructure initialized",
		"backend", cfg.Store.Backend,
		"table", cfg.Store.Table,
		"model", infra.LLM.Model(),
		"archive", infra.Storage != nil,
	)

	return infra, nil
}

// Start registers the configured systems with the lifecycle coordinator,
// waits for their startup hooks, and fails when the database could not be
// reached.
func (i *Infrastructure) Start() error {
	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}
	if i.Storage != nil {
		if err := i.Storage.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("storage start failed: %w", err)
		}
	}

	if err := i.Lifecycle.WaitForStartup(); err != nil {
		return err
	}

	if i.Database != nil {
		if err := i.Database.Ready(); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}
	return nil
}

package main

import (
	"context"

	"github.com/JaimeStill/curioscore/internal/config"
	"github.com/JaimeStill/curioscore/internal/infrastructure"
	"github.com/JaimeStill/curioscore/internal/scoring"
	"github.com/JaimeStill/curioscore/internal/workflow"
)

// App wires infrastructure into the workflow runtime for one invocation.
type App struct {
	cfg     *config.Config
	infra   *infrastructure.Infrastructure
	runtime *workflow.Runtime
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	infra, err := infrastructure.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	classifier := scoring.New(
		infra.LLM,
		scoring.Options{Lenient: cfg.Batch.LenientCategories},
		infra.Logger,
	)

	rt := &workflow.Runtime{
		Store:      infra.Store,
		Classifier: classifier,
		Archive:    infra.Storage,
		Logger:     infra.Logger.With("system", "workflow"),
		Options: workflow.Options{
			OutputDir:       cfg.Batch.OutputDir,
			ContinueOnError: cfg.Batch.ContinueOnError(),
			Concurrency:     cfg.Batch.Concurrency,
		},
	}
	infra.Logger.Info(
		"curioscore initialized",
		"version", cfg.Version,
		"env", cfg.Env(),
	)

	return &App{cfg: cfg, infra: infra, runtime: rt}, nil
}

func (a *App) Start() error {
	a.infra.Logger.Info("starting subsystems")
	if err := a.infra.Start(); err != nil {
		return err
	}
	a.infra.Logger.Info("all subsystems ready")
	return nil
}

func (a *App) Shutdown() {
	a.infra.Logger.Info("initiating shutdown")
	if err := a.infra.Lifecycle.Shutdown(a.cfg.ShutdownTimeoutDuration()); err != nil {
		a.infra.Logger.Error("shutdown incomplete", "error", err)
		return
	}
	a.infra.Logger.Info("curioscore stopped")
}

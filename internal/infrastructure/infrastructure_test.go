package infrastructure_test

import (
	"context"
	"errors"
	"testing"

	"github.com/JaimeStill/curioscore/internal/config"
	"github.com/JaimeStill/curioscore/internal/infrastructure"
	"github.com/JaimeStill/curioscore/pkg/database"
	"github.com/JaimeStill/curioscore/pkg/openrouter"
	"github.com/JaimeStill/curioscore/pkg/postgrest"
	"github.com/JaimeStill/curioscore/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func validConfig() *config.Config {
	return &config.Config{
		Store: config.StoreConfig{
			Backend:   config.BackendPostgREST,
			Table:     "places",
			Schema:    "public",
			ChunkSize: 200,
			PostgREST: postgrest.Config{
				URL:     "https://example.supabase.co",
				Key:     "anon",
				Schema:  "public",
				Timeout: "5s",
			},
		},
		Database: database.Config{
			Host:            "127.0.0.1",
			Port:            1,
			Name:            "curioscore",
			User:            "curioscore",
			Password:        "curioscore",
			SSLMode:         "disable",
			MaxOpenConns:    5,
			MaxIdleConns:    1,
			ConnMaxLifetime: "1m",
			ConnTimeout:     "200ms",
		},
		LLM: openrouter.Config{
			URL:     openrouter.DefaultURL,
			Model:   openrouter.DefaultModel,
			Timeout: "5s",
		},
		LogLevel:        "error",
		ShutdownTimeout: "1s",
		Version:         "0.1.0",
	}
}

func TestNewPostgREST(t *testing.T) {
	infra, err := infrastructure.New(context.Background(), validConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if infra.Lifecycle == nil || infra.Logger == nil || infra.LLM == nil || infra.Store == nil {
		t.Errorf("infrastructure missing a system: %+v", infra)
	}
	if infra.Database != nil {
		t.Error("Database should be nil for the postgrest backend")
	}
	if infra.Storage != nil {
		t.Error("Storage should be nil without an archive")
	}
	if infra.LLM.Model() != openrouter.DefaultModel {
		t.Errorf("model = %q", infra.LLM.Model())
	}

	if err := infra.Start(); err != nil {
		t.Errorf("Start() error = %v", err)
	}
	if err := infra.Lifecycle.Shutdown(validConfig().ShutdownTimeoutDuration()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNewPostgres(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Backend = config.BackendPostgres

	infra, err := infrastructure.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if infra.Database == nil {
		t.Fatal("Database is nil")
	}
	if infra.Database.Connection() == nil {
		t.Fatal("Database.Connection() returned nil")
	}
	if infra.Store == nil {
		t.Error("Store is nil")
	}
}

func TestStartUnreachableDatabase(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Backend = config.BackendPostgres

	infra, err := infrastructure.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration()) })

	err = infra.Start()
	if !errors.Is(err, database.ErrNotReady) {
		t.Fatalf("Start() error = %v, want ErrNotReady", err)
	}
}

func TestNewStorage(t *testing.T) {
	cfg := validConfig()
	cfg.Storage = storage.Config{
		ContainerName:    "curio-classifications",
		ConnectionString: azuriteConnString,
	}

	infra, err := infrastructure.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if infra.Storage == nil {
		t.Fatal("Storage is nil")
	}
	if got := infra.Storage.Key("a.json"); got != "a.json" {
		t.Errorf("Key = %q, want a.json", got)
	}
}

func TestNewInvalidStorageConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Storage = storage.Config{
		ContainerName:    "curio-classifications",
		ConnectionString: "not-a-connection-string",
	}

	if _, err := infrastructure.New(context.Background(), cfg); err == nil {
		t.Fatal("expected error for invalid storage connection string")
	}
}

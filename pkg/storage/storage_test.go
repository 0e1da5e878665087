package storage_test

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/JaimeStill/curioscore/pkg/storage"
)

const azurite = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;" +
	"AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;" +
	"BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func TestFinalizeDisabledByDefault(t *testing.T) {
	var cfg storage.Config
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if cfg.Enabled() {
		t.Error("Enabled() = true, want false without credentials")
	}
	if cfg.ContainerName != "curio-classifications" {
		t.Errorf("container_name: got %s, want curio-classifications", cfg.ContainerName)
	}
}

func TestFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_CONTAINER", "archive")
	t.Setenv("TEST_CONN", azurite)
	t.Setenv("TEST_PREFIX", "runs/")

	env := &storage.Env{
		ContainerName:    "TEST_CONTAINER",
		ConnectionString: "TEST_CONN",
		Prefix:           "TEST_PREFIX",
	}

	var cfg storage.Config
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if !cfg.Enabled() {
		t.Error("Enabled() = false, want true")
	}
	if cfg.ContainerName != "archive" || cfg.Prefix != "runs/" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestFinalizeValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     storage.Config
		wantErr string
	}{
		{"service url over https", storage.Config{ServiceURL: "https://acct.blob.core.windows.net/"}, ""},
		{"service url over http", storage.Config{ServiceURL: "http://acct.blob.core.windows.net/"}, "invalid service_url"},
		{"service url without host", storage.Config{ServiceURL: "https://"}, "invalid service_url"},
		{"connection string", storage.Config{ConnectionString: azurite}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := storage.Config{ContainerName: "a", ConnectionString: "conn"}
	base.Merge(&storage.Config{ContainerName: "b"})

	if base.ContainerName != "b" || base.ConnectionString != "conn" {
		t.Errorf("Merge result = %+v", base)
	}
}

func newSystem(t *testing.T, prefix string) storage.System {
	t.Helper()
	cfg := storage.Config{ContainerName: "curio-classifications", ConnectionString: azurite, Prefix: prefix}
	sys, err := storage.New(&cfg, slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return sys
}

func TestKey(t *testing.T) {
	tests := []struct {
		prefix string
		name   string
		want   string
	}{
		{"", "curio-classification-box-1-2.json", "curio-classification-box-1-2.json"},
		{"runs", "a.json", "runs/a.json"},
		{"/runs/2026/", "a.json", "runs/2026/a.json"},
	}

	for _, tt := range tests {
		if got := newSystem(t, tt.prefix).Key(tt.name); got != tt.want {
			t.Errorf("Key(%q) with prefix %q = %q, want %q", tt.name, tt.prefix, got, tt.want)
		}
	}
}

func TestKeyValidation(t *testing.T) {
	sys := newSystem(t, "")
	ctx := context.Background()

	tests := []struct {
		name string
		key  string
		want error
	}{
		{"empty", "", storage.ErrEmptyKey},
		{"traversal", "../secrets.json", storage.ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := sys.Upload(ctx, tt.key, strings.NewReader("{}"), "application/json"); !errors.Is(err, tt.want) {
				t.Errorf("Upload() = %v, want %v", err, tt.want)
			}
			if _, err := sys.Download(ctx, tt.key); !errors.Is(err, tt.want) {
				t.Errorf("Download() = %v, want %v", err, tt.want)
			}
			if _, err := sys.Exists(ctx, tt.key); !errors.Is(err, tt.want) {
				t.Errorf("Exists() = %v, want %v", err, tt.want)
			}
		})
	}
}

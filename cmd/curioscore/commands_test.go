package main

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/curioscore/internal/config"
	"github.com/JaimeStill/curioscore/internal/workflow"
)

func TestRootCommands(t *testing.T) {
	root := newRootCommand()

	for _, name := range []string{"run", "classify", "publish"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered: %v", name, err)
		}
	}

	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("missing --config flag")
	}
}

func TestPublishRequiresArtifact(t *testing.T) {
	root := newRootCommand()
	root.SetOut(io.Discard)
	var stderr bytes.Buffer
	root.SetErr(&stderr)
	root.SetArgs([]string{"publish"})

	err := root.Execute()
	if err == nil {
		t.Fatal("expected an argument error")
	}
	if !strings.Contains(err.Error(), "accepts 1 arg") {
		t.Errorf("error = %v", err)
	}
}

func TestBatchFlagsApply(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want workflow.Range
		out  string
		conc int
	}{
		{"config defaults", nil, workflow.Range{Start: 3501, End: 3999}, "./curio-classifications", 1},
		{"range override", []string{"--start", "10", "--end", "12"}, workflow.Range{Start: 10, End: 12}, "./curio-classifications", 1},
		{"zero start honoured", []string{"--start", "0"}, workflow.Range{Start: 0, End: 3999}, "./curio-classifications", 1},
		{"output and concurrency", []string{"-o", "/tmp/x", "--concurrency", "4"}, workflow.Range{Start: 3501, End: 3999}, "/tmp/x", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{Use: "test"}
			var flags batchFlags
			flags.register(cmd)
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatalf("ParseFlags error: %v", err)
			}

			cfg := &config.Config{Batch: config.BatchConfig{
				OutputDir:   "./curio-classifications",
				BoxStart:    3501,
				BoxEnd:      3999,
				Concurrency: 1,
			}}

			r := flags.apply(cmd, cfg)
			if r != tt.want {
				t.Errorf("range = %+v, want %+v", r, tt.want)
			}
			if cfg.Batch.OutputDir != tt.out {
				t.Errorf("output dir = %q, want %q", cfg.Batch.OutputDir, tt.out)
			}
			if cfg.Batch.Concurrency != tt.conc {
				t.Errorf("concurrency = %d, want %d", cfg.Batch.Concurrency, tt.conc)
			}
		})
	}
}

func TestClassifyRejectsInvertedRange(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CURIOSCORE_ENV", "")
	t.Setenv("CURIOSCORE_STORE_BACKEND", "")
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_KEY", "anon")
	t.Setenv("CURIOSCORE_BOX_END", "100")

	root := newRootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"classify", "--end", "10", "--start", "20"})

	err := root.Execute()
	if !errors.Is(err, workflow.ErrInvalidRange) {
		t.Fatalf("error = %v, want ErrInvalidRange", err)
	}
}

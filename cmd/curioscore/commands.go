package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/curioscore/internal/config"
	"github.com/JaimeStill/curioscore/internal/workflow"
)

// batchFlags override the [batch] section for one invocation.
type batchFlags struct {
	start       int
	end         int
	outputDir   string
	concurrency int
}

func (f *batchFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.start, "start", 0, "first box id (default from config)")
	cmd.Flags().IntVar(&f.end, "end", 0, "last box id, inclusive (default from config)")
	cmd.Flags().StringVarP(&f.outputDir, "out", "o", "", "artifact directory (default from config)")
	cmd.Flags().IntVar(&f.concurrency, "concurrency", 0, "records classified in parallel per box (default from config)")
}

func (f *batchFlags) apply(cmd *cobra.Command, cfg *config.Config) workflow.Range {
	if cmd.Flags().Changed("start") {
		cfg.Batch.BoxStart = f.start
	}
	if cmd.Flags().Changed("end") {
		cfg.Batch.BoxEnd = f.end
	}
	if f.outputDir != "" {
		cfg.Batch.OutputDir = f.outputDir
	}
	if f.concurrency > 0 {
		cfg.Batch.Concurrency = f.concurrency
	}
	return workflow.Range{Start: cfg.Batch.BoxStart, End: cfg.Batch.BoxEnd}
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "curioscore",
		Short: "Classify and score curio records with an LLM",
		Long: `curioscore pulls curio records box by box from the record store, asks a
chat-completions model to classify and score each one, writes the results to
a reviewable batch file, and upserts accepted results back to the store.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML config file (default config.toml when present)")

	root.AddCommand(
		newRunCommand(&configPath),
		newClassifyCommand(&configPath),
		newPublishCommand(&configPath),
	)
	return root
}

func newRunCommand(configPath *string) *cobra.Command {
	var flags batchFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Classify a box range and publish the results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, *configPath, &flags, func(ctx context.Context, app *App, r workflow.Range) error {
				sum, err := workflow.Execute(ctx, app.runtime, r)
				if err != nil {
					return err
				}

				report, err := workflow.Publish(ctx, app.runtime, sum.Path)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), report)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newClassifyCommand(configPath *string) *cobra.Command {
	var flags batchFlags

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a box range and write the batch file without publishing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, *configPath, &flags, func(ctx context.Context, app *App, r workflow.Range) error {
				sum, err := workflow.Execute(ctx, app.runtime, r)
				if sum != nil {
					if werr := writeJSON(cmd.OutOrStdout(), sum); werr != nil {
						return werr
					}
				}
				return err
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newPublishCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish <artifact.json>",
		Short: "Upsert the accepted results of a reviewed batch file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, *configPath, nil, func(ctx context.Context, app *App, _ workflow.Range) error {
				report, err := workflow.Publish(ctx, app.runtime, args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), report)
			})
		},
	}
	return cmd
}

// withApp loads configuration, starts infrastructure, runs fn and shuts
// everything down again.
func withApp(cmd *cobra.Command, configPath string, flags *batchFlags, fn func(context.Context, *App, workflow.Range) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	var r workflow.Range
	if flags != nil {
		r = flags.apply(cmd, cfg)
		if err := r.Validate(); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	app, err := NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Shutdown()

	if err := app.Start(); err != nil {
		return err
	}

	return fn(ctx, app, r)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

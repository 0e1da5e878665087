package workflow

import (
	"context"
	"log/slog"

	"github.com/JaimeStill/curioscore/internal/curios"
	"github.com/JaimeStill/curioscore/internal/scoring"
	"github.com/JaimeStill/curioscore/pkg/storage"
)

// Classifier scores a single record. *scoring.Classifier satisfies it.
type Classifier interface {
	Classify(ctx context.Context, c *curios.Curio) (scoring.Outcome, scoring.Usage)
}

// Options controls how a run walks its range.
type Options struct {
	// OutputDir receives the artifact file; it is created when missing.
	OutputDir string
	// ContinueOnError records fetch and listing failures and moves on.
	// When false the first such failure stops the run.
	ContinueOnError bool
	// Concurrency bounds how many records of one box are in flight.
	// Values below 1 mean 1.
	Concurrency int
}

// Runtime bundles the dependencies the batch runner and publisher require.
// It is constructed by the command layer from Infrastructure.
type Runtime struct {
	Store      curios.Store
	Classifier Classifier
	// Archive, when non-nil, receives a copy of every artifact and serves
	// as a fallback source for Publish.
	Archive storage.System
	Logger  *slog.Logger
	Options Options
}

func (rt *Runtime) workers() int {
	return max(rt.Options.Concurrency, 1)
}

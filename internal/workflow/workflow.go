// Package workflow runs curio classification batches over a box range and
// publishes reviewed batch artifacts back to the record store.
package workflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/curioscore/internal/curios"
	"github.com/JaimeStill/curioscore/internal/scoring"
)

// slot holds the outcome of one record so concurrent workers can write
// without coordination and results merge in list order.
type slot struct {
	done    bool
	result  *Result
	failure *Failure
	outcome scoring.Outcome
	usage   scoring.Usage
}

// Execute classifies every record in boxes r.Start through r.End and
// writes the batch artifact. The artifact is written even when the run
// stops early; the returned Summary then carries its path alongside an
// error wrapping ErrAborted.
func Execute(ctx context.Context, rt *Runtime, r Range) (*Summary, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	started := time.Now()
	sum := &Summary{RunID: uuid.New(), Range: r}
	logger := rt.Logger.With("run_id", sum.RunID)

	logger.InfoContext(ctx, "batch run started",
		"start", r.Start,
		"end", r.End,
		"concurrency", rt.workers(),
		"continue_on_error", rt.Options.ContinueOnError,
	)

	art := &Artifact{Range: r, Results: []Result{}, Failed: []Failure{}}
	runErr := walk(ctx, rt, logger, r, art, sum)
	if runErr != nil {
		sum.Aborted = true
		logger.ErrorContext(ctx, "batch run stopped early", "error", runErr)
	}

	path, err := WriteArtifact(rt.Options.OutputDir, art)
	if err != nil {
		return nil, errors.Join(runErr, err)
	}
	sum.Path = path

	archive(ctx, rt, logger, path, art)

	sum.Duration = time.Since(started)
	logger.InfoContext(ctx, "batch run complete",
		"path", sum.Path,
		"boxes", sum.Boxes,
		"results", sum.Results,
		"scored", sum.Scored,
		"skipped", sum.Skipped,
		"errors", sum.Errors,
		"failed", sum.Failed,
		"total_tokens", sum.Usage.TotalTokens,
		"cost", sum.Usage.Cost,
		"duration", sum.Duration,
		"aborted", sum.Aborted,
	)

	return sum, runErr
}

func walk(ctx context.Context, rt *Runtime, logger *slog.Logger, r Range, art *Artifact, sum *Summary) error {
	for box := r.Start; box <= r.End; box++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: before box %d: %w", ErrAborted, box, err)
		}

		ids, err := rt.Store.ListIDs(ctx, box)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("%w: box %d: %w", ErrAborted, box, ctx.Err())
			}
			logger.ErrorContext(ctx, "list ids failed", "box", box, "error", err)
			if !rt.Options.ContinueOnError {
				return fmt.Errorf("%w: list box %d: %w", ErrAborted, box, err)
			}
			continue
		}

		if len(ids) == 0 {
			logger.InfoContext(ctx, "box empty", "box", box)
			continue
		}

		sum.Boxes++
		logger.InfoContext(ctx, "processing box", "box", box, "records", len(ids))

		slots, err := processBox(ctx, rt, logger, box, ids)
		for _, s := range slots {
			if !s.done {
				continue
			}
			if s.failure != nil {
				art.Failed = append(art.Failed, *s.failure)
				sum.Failed++
				continue
			}
			art.Results = append(art.Results, *s.result)
			sum.count(s.outcome)
			sum.Usage.Add(s.usage)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func processBox(ctx context.Context, rt *Runtime, logger *slog.Logger, box int, ids []string) ([]slot, error) {
	slots := make([]slot, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rt.workers())

	for i, id := range ids {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			c, err := rt.Store.Fetch(gctx, id)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				logger.WarnContext(gctx, "fetch failed", "box", box, "curio_id", id, "error", err)
				slots[i] = slot{done: true, failure: &Failure{CurioID: id, Error: err.Error()}}
				if !rt.Options.ContinueOnError {
					return fmt.Errorf("%w: fetch %s: %w", ErrAborted, id, err)
				}
				return nil
			}

			out, usage := rt.Classifier.Classify(gctx, c)
			if gctx.Err() != nil {
				return gctx.Err()
			}

			res := newResult(box, id, out)
			slots[i] = slot{done: true, result: &res, outcome: out, usage: usage}

			logger.InfoContext(gctx, "classified",
				"box", box,
				"curio_id", id,
				"name", progressName(c),
				"type", out.Type,
				"score", out.Score,
				"reason", out.Reason,
				"outcome", out.Kind,
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, ErrAborted) {
			return slots, err
		}
		return slots, fmt.Errorf("%w: box %d: %w", ErrAborted, box, err)
	}
	return slots, nil
}

func progressName(c *curios.Curio) string {
	if c.Name == nil || *c.Name == "" {
		return "Unknown Name"
	}
	return *c.Name
}

// archive uploads the artifact when an archive is configured. Failures are
// logged; the local file remains the record of the run. The upload is
// detached from ctx so aborted runs are archived too.
func archive(ctx context.Context, rt *Runtime, logger *slog.Logger, path string, art *Artifact) {
	if rt.Archive == nil {
		return
	}

	actx := context.WithoutCancel(ctx)
	key := rt.Archive.Key(filepath.Base(path))

	exists, err := rt.Archive.Exists(actx, key)
	if err != nil {
		logger.WarnContext(ctx, "archive lookup failed", "key", key, "error", err)
	} else if exists {
		logger.InfoContext(ctx, "replacing archived artifact", "key", key)
	}

	data, err := art.Encode()
	if err != nil {
		logger.ErrorContext(ctx, "archive encode failed", "error", err)
		return
	}

	if err := rt.Archive.Upload(actx, key, bytes.NewReader(data), "application/json"); err != nil {
		logger.ErrorContext(ctx, "archive upload failed", "key", key, "error", err)
		return
	}
	logger.InfoContext(ctx, "artifact archived", "key", key)
}

package curios

import (
	"context"
	"errors"
	"log/slog"
)

// ErrNotFound indicates no record exists for the requested curio-id.
var ErrNotFound = errors.New("curio not found")

// Column names of the record table.
const (
	ColumnID          = "curio-id"
	ColumnBox         = "box-id"
	ColumnName        = "name"
	ColumnInscription = "inscription"
	ColumnOverview    = "detail-overview"
	ColumnType        = "curio-type"
	ColumnScore       = "curio-score"
	ColumnReason      = "score-reason"
)

// Store reads curio records and writes classification triples back.
type Store interface {
	// ListIDs returns every non-empty curio-id in the box, deduplicated in
	// first-seen order. A box with no records yields an empty slice.
	ListIDs(ctx context.Context, boxID int) ([]string, error)
	// Fetch returns the record for id, or an error wrapping ErrNotFound.
	Fetch(ctx context.Context, id string) (*Curio, error)
	// Upsert writes updates in fixed-size chunks keyed on curio-id and
	// returns how many rows the store confirmed. A failing chunk is logged
	// and skipped; only context cancellation ends the call early.
	Upsert(ctx context.Context, updates []Update) (int, error)
}

// Options parameterizes a Store backend.
type Options struct {
	Table     string
	Schema    string
	PageSize  int
	ChunkSize int
}

func (o Options) withDefaults() Options {
	if o.Table == "" {
		o.Table = "places"
	}
	if o.Schema == "" {
		o.Schema = "public"
	}
	if o.PageSize < 1 {
		o.PageSize = 1000
	}
	if o.ChunkSize < 1 {
		o.ChunkSize = 200
	}
	return o
}

// Dedupe drops empty ids and repeats, keeping first-seen order.
func Dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Chunk splits items into consecutive slices of at most size elements.
func Chunk[T any](items []T, size int) [][]T {
	if size < 1 || len(items) == 0 {
		return nil
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

type chunkWriter func(ctx context.Context, chunk []Update) (int, error)

// upsertChunks runs write over each chunk, logging and skipping failures.
func upsertChunks(ctx context.Context, logger *slog.Logger, updates []Update, size int, write chunkWriter) (int, error) {
	total := 0
	chunks := Chunk(updates, size)

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		n, err := write(ctx, chunk)
		if err != nil {
			if ctx.Err() != nil {
				return total, ctx.Err()
			}
			logger.Error("upsert chunk failed",
				"chunk", i+1,
				"chunks", len(chunks),
				"rows", len(chunk),
				"error", err,
			)
			continue
		}

		total += n
		logger.Info("upsert chunk complete",
			"chunk", i+1,
			"chunks", len(chunks),
			"rows", len(chunk),
			"confirmed", n,
		)
	}

	return total, nil
}

package curios

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/curioscore/pkg/pagination"
	"github.com/JaimeStill/curioscore/pkg/postgrest"
)

type restStore struct {
	client *postgrest.Client
	opts   Options
	logger *slog.Logger
}

// NewPostgREST creates a Store backed by a PostgREST table endpoint.
func NewPostgREST(client *postgrest.Client, opts Options, logger *slog.Logger) Store {
	return &restStore{
		client: client,
		opts:   opts.withDefaults(),
		logger: logger.With("store", "postgrest"),
	}
}

type idRow struct {
	ID *string `json:"curio-id"`
}

func (s *restStore) ListIDs(ctx context.Context, boxID int) ([]string, error) {
	rows, err := pagination.Collect(ctx, s.opts.PageSize, func(ctx context.Context, r pagination.Range) ([]idRow, error) {
		q := postgrest.NewQuery(s.opts.Table).
			Select(ColumnID).
			Eq(ColumnBox, boxID).
			Order(ColumnID, false).
			Range(r.Offset, r.Limit)

		var page []idRow
		if err := s.client.Select(ctx, q, &page); err != nil {
			return nil, err
		}
		return page, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list ids for box %d: %w", boxID, err)
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.ID != nil {
			ids = append(ids, *row.ID)
		}
	}
	return Dedupe(ids), nil
}

func (s *restStore) Fetch(ctx context.Context, id string) (*Curio, error) {
	q := postgrest.NewQuery(s.opts.Table).
		Select(ColumnID, ColumnName, ColumnInscription, ColumnOverview).
		Eq(ColumnID, id).
		Limit(1)

	var rows []Curio
	if err := s.client.Select(ctx, q, &rows); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no match for %s", ErrNotFound, id)
	}
	return &rows[0], nil
}

func (s *restStore) Upsert(ctx context.Context, updates []Update) (int, error) {
	return upsertChunks(ctx, s.logger, updates, s.opts.ChunkSize, func(ctx context.Context, chunk []Update) (int, error) {
		var written []Update
		if err := s.client.Upsert(ctx, s.opts.Table, chunk, ColumnID, &written); err != nil {
			return 0, err
		}
		return len(written), nil
	})
}

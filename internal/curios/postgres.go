package curios

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/curioscore/pkg/pagination"
	"github.com/JaimeStill/curioscore/pkg/query"
	"github.com/JaimeStill/curioscore/pkg/repository"
)

type sqlStore struct {
	db     *sql.DB
	opts   Options
	logger *slog.Logger

	ids    *query.ProjectionMap
	record *query.ProjectionMap
	upsert *query.Upsert
}

// NewPostgres creates a Store that talks to the record table directly over
// SQL. Each upsert chunk runs in its own transaction.
func NewPostgres(db *sql.DB, opts Options, logger *slog.Logger) Store {
	opts = opts.withDefaults()

	return &sqlStore{
		db:     db,
		opts:   opts,
		logger: logger.With("store", "postgres"),
		ids: query.NewProjectionMap(opts.Schema, opts.Table, "p").
			Project(ColumnID, "id").
			Project(ColumnBox, "box"),
		record: query.NewProjectionMap(opts.Schema, opts.Table, "p").
			Project(ColumnID, "id").
			Project(ColumnName, "name").
			Project(ColumnInscription, "inscription").
			Project(ColumnOverview, "overview"),
		upsert: query.NewUpsert(opts.Schema, opts.Table, ColumnID, ColumnType, ColumnScore, ColumnReason),
	}
}

func scanID(s repository.Scanner) (string, error) {
	var id sql.NullString
	var box sql.NullInt64
	if err := s.Scan(&id, &box); err != nil {
		return "", err
	}
	return id.String, nil
}

func scanCurio(s repository.Scanner) (*Curio, error) {
	var (
		id                          string
		name, inscription, overview sql.NullString
	)
	if err := s.Scan(&id, &name, &inscription, &overview); err != nil {
		return nil, err
	}
	return &Curio{
		ID:          id,
		Name:        nullable(name),
		Inscription: nullable(inscription),
		Overview:    nullable(overview),
	}, nil
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func (s *sqlStore) ListIDs(ctx context.Context, boxID int) ([]string, error) {
	ids, err := pagination.Collect(ctx, s.opts.PageSize, func(ctx context.Context, r pagination.Range) ([]string, error) {
		q, args := query.NewBuilder(s.ids, query.SortField{Field: "id"}).
			WhereEquals("box", boxID).
			WhereNotEmpty("id").
			BuildRange(r.Offset, r.Limit)

		rows, err := repository.QueryMany(ctx, s.db, q, args, scanID)
		if err != nil {
			return nil, repository.MapError(err, ErrNotFound)
		}
		return rows, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list ids for box %d: %w", boxID, err)
	}
	return Dedupe(ids), nil
}

func (s *sqlStore) Fetch(ctx context.Context, id string) (*Curio, error) {
	q, args := query.NewBuilder(s.record).
		WhereEquals("id", id).
		BuildSingleOrNull()

	c, err := repository.QueryOne(ctx, s.db, q, args, scanCurio)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", id, repository.MapError(err, ErrNotFound))
	}
	return c, nil
}

func (s *sqlStore) Upsert(ctx context.Context, updates []Update) (int, error) {
	return upsertChunks(ctx, s.logger, updates, s.opts.ChunkSize, func(ctx context.Context, chunk []Update) (int, error) {
		rows := make([][]any, len(chunk))
		for i, u := range chunk {
			rows[i] = []any{u.ID, u.Type, u.Score, u.Reason}
		}

		stmt, args, err := s.upsert.Build(rows)
		if err != nil {
			return 0, err
		}

		return repository.WithTx(ctx, s.db, func(tx *sql.Tx) (int, error) {
			written, err := repository.QueryMany(ctx, tx, stmt, args, func(sc repository.Scanner) (string, error) {
				var id string
				err := sc.Scan(&id)
				return id, err
			})
			if err != nil {
				return 0, repository.MapError(err, ErrNotFound)
			}
			return len(written), nil
		})
	})
}

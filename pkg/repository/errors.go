package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// MapError translates database errors to domain errors.
// It maps sql.ErrNoRows to notFoundErr and annotates PostgreSQL errors
// with their SQLSTATE code and table. Other errors are returned unchanged.
func MapError(err error, notFoundErr error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.TableName != "" {
			return fmt.Errorf("postgres %s on %s: %w", pgErr.Code, pgErr.TableName, err)
		}
		return fmt.Errorf("postgres %s: %w", pgErr.Code, err)
	}

	return err
}

package repository_test

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JaimeStill/curioscore/pkg/repository"
)

var errNotFound = errors.New("not found")

func TestMapError(t *testing.T) {
	other := errors.New("some other error")

	tests := []struct {
		name       string
		err        error
		wantIs     error
		wantSubstr string
	}{
		{"nil", nil, nil, ""},
		{"no rows", sql.ErrNoRows, errNotFound, ""},
		{"wrapped no rows", fmt.Errorf("scan: %w", sql.ErrNoRows), errNotFound, ""},
		{"passthrough", other, other, ""},
		{
			"pg error with table",
			&pgconn.PgError{Code: "42703", TableName: "places", Message: "column does not exist"},
			nil,
			"postgres 42703 on places",
		},
		{
			"pg error without table",
			&pgconn.PgError{Code: "57014", Message: "canceling statement"},
			nil,
			"postgres 57014",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repository.MapError(tt.err, errNotFound)

			if tt.err == nil {
				if got != nil {
					t.Errorf("MapError(nil) = %v, want nil", got)
				}
				return
			}

			if tt.wantIs != nil && !errors.Is(got, tt.wantIs) {
				t.Errorf("MapError() = %v, want %v", got, tt.wantIs)
			}
			if tt.wantSubstr != "" {
				if !strings.Contains(got.Error(), tt.wantSubstr) {
					t.Errorf("MapError() = %q, want substring %q", got.Error(), tt.wantSubstr)
				}
				var pgErr *pgconn.PgError
				if !errors.As(got, &pgErr) {
					t.Error("MapError() lost the underlying *pgconn.PgError")
				}
			}
		})
	}
}
